package domain

// Genre is a selectable catalog genre, fetched for the survey's preferences step.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
