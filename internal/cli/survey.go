package cli

import (
	"fmt"
	"strings"

	do "github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/nextreadapp/nextread-client/internal/services"
)

func newSurveyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Inspect the stored survey answers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored pace and genre selections",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector := container()
			defer func() { _ = injector.Shutdown() }()

			if _, err := sessionFor(cmd.Context(), injector); err != nil {
				return err
			}
			surveys, err := do.Invoke[*services.SurveyService](injector)
			if err != nil {
				return err
			}

			state, err := surveys.GetSurvey(cmd.Context())
			if err != nil {
				return err
			}

			pace := string(state.Pace)
			if pace == "" {
				pace = "not set"
			}
			fmt.Printf("pace: %s\n", pace)

			if len(state.SelectedGenres) == 0 {
				fmt.Println("genres: none selected")
				return nil
			}
			ids := make([]string, len(state.SelectedGenres))
			for i, id := range state.SelectedGenres {
				ids[i] = fmt.Sprintf("%d", id)
			}
			fmt.Printf("genres: %s\n", strings.Join(ids, ", "))
			return nil
		},
	})

	return cmd
}
