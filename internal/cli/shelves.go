package cli

import (
	"fmt"

	do "github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/nextreadapp/nextread-client/internal/domain"
	"github.com/nextreadapp/nextread-client/internal/services"
)

func newShelvesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shelves",
		Short: "List the library grouped by shelf",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector := container()
			defer func() { _ = injector.Shutdown() }()

			if _, err := sessionFor(cmd.Context(), injector); err != nil {
				return err
			}
			books, err := do.Invoke[*services.UserBookService](injector)
			if err != nil {
				return err
			}

			entries, err := books.ListBooks(cmd.Context())
			if err != nil {
				return err
			}

			library := domain.Library{Entries: entries}
			for _, status := range domain.Statuses {
				shelf := library.ByStatus(status)
				fmt.Printf("%s (%d)\n", status.Label(), len(shelf))
				for _, e := range shelf {
					line := "  " + e.Book.Title
					if by := e.Book.AuthorLine(); by != "" {
						line += " by " + by
					}
					if e.Rating > 0 {
						line += fmt.Sprintf(" [%d/5]", e.Rating)
					}
					fmt.Println(line)
				}
			}
			return nil
		},
	}
}

func newRecommendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Show the current recommendation pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector := container()
			defer func() { _ = injector.Shutdown() }()

			if _, err := sessionFor(cmd.Context(), injector); err != nil {
				return err
			}
			catalog, err := do.Invoke[*services.CatalogService](injector)
			if err != nil {
				return err
			}

			recs, err := catalog.Recommendations(cmd.Context())
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("nothing new to recommend")
				return nil
			}
			for _, rec := range recs {
				line := rec.Book.Title
				if by := rec.Book.AuthorLine(); by != "" {
					line += " by " + by
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}
