package domain

import "math"

// SourceID identifies one configured editorial source.
type SourceID string

// Mention is a raw, unstructured result from a Source Collaborator. It
// carries no contract beyond "some text that may describe restaurants".
type Mention struct {
	Source  SourceID `json:"source"`
	URL     string   `json:"url,omitempty"`
	Content string   `json:"content"`
}

// Candidate is a discovered restaurant before acceptance. Name is the unique
// key, compared case-insensitively (see NormalizeName). Candidates are
// created by the extraction step, immutable once evaluated within a run, and
// never mutated after acceptance except through a user-confirmed edit.
type Candidate struct {
	Name        string `json:"name"`
	BookingURL  string `json:"booking_url,omitempty"`
	Description string `json:"description,omitempty"`
	Cuisine     string `json:"cuisine,omitempty"`

	Price PriceTier `json:"price,omitempty"`

	// Scores maps source to a rank in [1.0, 5.0]. A source absent from the
	// map is silent, never zero.
	Scores map[SourceID]float64 `json:"scores,omitempty"`

	Justification string `json:"justification,omitempty"`
}

// OverallScore is the arithmetic mean of the present source scores, rounded
// to one decimal. ok is false when no source has scored the candidate: the
// overall score is undefined, not 0.0.
func (c *Candidate) OverallScore() (float64, bool) {
	if len(c.Scores) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range c.Scores {
		sum += s
	}
	mean := sum / float64(len(c.Scores))
	return math.Round(mean*10) / 10, true
}

// SetScore records one source's rank, allocating the map on first use.
func (c *Candidate) SetScore(source SourceID, score float64) {
	if c.Scores == nil {
		c.Scores = make(map[SourceID]float64, 1)
	}
	c.Scores[source] = score
}

// Merge folds a duplicate of the same restaurant into c. Field values prefer
// non-empty over empty and longer descriptions over shorter; the score map
// keeps the union of both sides, with c winning when both scored the same
// source.
func (c *Candidate) Merge(dup *Candidate) {
	if dup == nil {
		return
	}
	if dup.Description != "" && len(dup.Description) > len(c.Description) {
		c.Description = dup.Description
	}
	if c.Cuisine == "" {
		c.Cuisine = dup.Cuisine
	}
	if c.BookingURL == "" {
		c.BookingURL = dup.BookingURL
	}
	if c.Justification == "" {
		c.Justification = dup.Justification
	}
	if c.Price == PriceUnknown {
		c.Price = dup.Price
	}
	for source, score := range dup.Scores {
		if _, ok := c.Scores[source]; !ok {
			c.SetScore(source, score)
		}
	}
}

// Clone returns a deep copy. RunState snapshots must not alias candidate
// score maps across save/load boundaries.
func (c *Candidate) Clone() Candidate {
	out := *c
	if c.Scores != nil {
		out.Scores = make(map[SourceID]float64, len(c.Scores))
		for k, v := range c.Scores {
			out.Scores[k] = v
		}
	}
	return out
}
