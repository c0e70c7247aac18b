package models

import "time"

// MalfunctionReport is the single open report held for a station. Resolving a station
// deletes its report outright.
type MalfunctionReport struct {
	StationID  string    `json:"station_id"`
	Reason     string    `json:"reason"`
	ReportedAt time.Time `json:"reported_at"`
}

// Issue types offered by the report form.
const (
	IssueScreenBroken   = "Screen Broken"
	IssueCableDamaged   = "Cable Damaged"
	IssueCardReaderFail = "Card Reader Fail"
	IssueNoPower        = "No Power"
	IssueOther          = "Other"
)

// IssueTypes lists the predefined reasons in display order. Reports may also carry
// free text.
func IssueTypes() []string {
	return []string{IssueScreenBroken, IssueCableDamaged, IssueCardReaderFail, IssueNoPower, IssueOther}
}
