package domain

import "time"

// RawListing is one platform's unprocessed observation of a property, as
// written by a collector. Fields carries platform-native keys verbatim plus
// the collectors' normalized subset (address_full, address_street,
// address_city, address_state, address_zip and the numeric price/size keys).
// NativeID is unique only within SourcePlatform, never globally.
type RawListing struct {
	SourcePlatform string         `json:"source_platform"`
	ExtractedAt    time.Time      `json:"extraction_timestamp"`
	NativeID       string         `json:"listing_id_native"`
	Fields         map[string]any `json:"raw_fields"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}
