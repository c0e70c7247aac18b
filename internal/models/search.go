package models

// StationStatus is a station joined with its open malfunction report, if any.
type StationStatus struct {
	Station
	Broken bool   `json:"broken"`
	Reason string `json:"reason,omitempty"`
}

// SearchResult is what the dashboard renders for one postal code query.
type SearchResult struct {
	PostalCode  string          `json:"postal_code"`
	Count       int             `json:"count"`
	BrokenCount int             `json:"broken_count"`
	Stations    []StationStatus `json:"stations"`
	Warning     string          `json:"warning,omitempty"`
}
