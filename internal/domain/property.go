package domain

import "time"

// Classification is the eligibility verdict for a consolidated property.
type Classification string

const (
	ClassUsable    Classification = "usable"
	ClassFlagged   Classification = "flagged"
	ClassDiscarded Classification = "discarded"
)

// Discard reasons.
const (
	ReasonMissingCriticalFields = "missing_critical_fields"
	ReasonOutsideMandate        = "outside_investment_mandate"
)

// Discard reason categories carried in DiscardDetails.
const (
	CategoryIncompleteData     = "incomplete_data"
	CategoryPriceOutOfRange    = "price_out_of_range"
	CategoryAssetClassMismatch = "asset_class_mismatch"
)

// Property is the merged, classified record for one physical property.
// PropertyID is assigned from the group's position in the input scan and is
// stable only within one processing run. DiscardReason is set iff
// Classification == ClassDiscarded.
type Property struct {
	PropertyID     string          `json:"property_id"`
	Data           map[string]any  `json:"consolidated_data"`
	Sources        []SourceRef     `json:"source_listings"`
	Conflicts      []Conflict      `json:"conflicts"`
	Classification Classification  `json:"classification"`
	DiscardReason  string          `json:"discard_reason,omitempty"`
	DiscardDetails *DiscardDetails `json:"discard_details,omitempty"`
	LastUpdated    time.Time       `json:"last_updated"`
}

// SourceRef summarizes one contributing raw listing, in group order.
type SourceRef struct {
	Platform    string    `json:"platform"`
	ListingID   string    `json:"listing_id"`
	ExtractedAt time.Time `json:"extracted"`
}

// Conflict is a detected cross-source disagreement on one field.
// VariancePercent is set for numeric fields and nil for string fields.
type Conflict struct {
	Field           string        `json:"field"`
	Values          []Observation `json:"values"`
	VariancePercent *float64      `json:"variance_percent"`
}

// Observation is one source's value for a conflicted field.
type Observation struct {
	Source string `json:"source"`
	Value  any    `json:"value"`
}

// DiscardDetails is the structured explanation attached to discards.
type DiscardDetails struct {
	ReasonCategory string    `json:"reason_category"`
	Explanation    string    `json:"explanation"`
	MissingFields  []string  `json:"missing_fields,omitempty"`
	DiscardedAt    time.Time `json:"discarded_date"`
}
