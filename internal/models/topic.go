package models

// Topic is a pending article idea tracked for one-time consumption.
// Topics are created in batches by the generator or pre-seeded by hand
// in the themes file.
type Topic struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Keywords   []string `json:"keywords"`
	TargetPain string   `json:"target_pain"`
	Approach   string   `json:"approach"`
	Used       bool     `json:"used"`
}
