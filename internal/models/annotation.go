package models

// Annotation action values. NONE marks a bubble with no trade direction.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
	ActionTP   = "TP"
	ActionSL   = "SL"
	ActionNone = "NONE"
)

// Annotation is a chart bubble owned by the remote annotation store.
// The ledger never persists these; they exist here as the wire shape
// shared by the store client, the synchronizer, and the overlay pass.
type Annotation struct {
	ID         string   `json:"id,omitempty"`
	Symbol     string   `json:"symbol"`
	Timeframe  string   `json:"timeframe"`
	Timestamp  int64    `json:"ts"` // epoch millis
	Price      float64  `json:"price"`
	Note       string   `json:"note,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Action     string   `json:"action,omitempty"`
	AssetClass string   `json:"asset_class,omitempty"`
	Venue      string   `json:"venue,omitempty"`
	CreatedAt  int64    `json:"created_at,omitempty"`
	UpdatedAt  int64    `json:"updated_at,omitempty"`
}

// AnnotationPatch is a merge patch for an existing annotation. Only
// populated fields are sent; the store must not clear omitted ones.
type AnnotationPatch struct {
	Note       string   `json:"note,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	AssetClass string   `json:"asset_class,omitempty"`
	Venue      string   `json:"venue,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p AnnotationPatch) IsEmpty() bool {
	return p.Note == "" && len(p.Tags) == 0 && p.AssetClass == "" && p.Venue == ""
}
