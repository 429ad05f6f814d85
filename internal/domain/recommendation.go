package domain

import "slices"

// Recommendation is a book candidate not yet part of the user's library.
// Recommendations are ephemeral: sourced fresh per session and consumed
// (removed from the pool) once accepted onto a shelf.
type Recommendation struct {
	ID   string `json:"id"`
	Book Book   `json:"book"`
}

// RecommendationPool is the current candidate set.
type RecommendationPool struct {
	Items []Recommendation
}

// Consume removes a recommendation from the pool once it has been accepted
// into the library. Returns false if it was not present.
func (p *RecommendationPool) Consume(recID string) bool {
	for i := range p.Items {
		if p.Items[i].ID == recID {
			p.Items = slices.Delete(p.Items, i, i+1)
			return true
		}
	}
	return false
}

// Find returns the recommendation with the given ID, or nil.
func (p *RecommendationPool) Find(recID string) *Recommendation {
	for i := range p.Items {
		if p.Items[i].ID == recID {
			return &p.Items[i]
		}
	}
	return nil
}
