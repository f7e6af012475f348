// Package types contains the wire types shared by the collector API and its
// clients.
package types

import "github.com/carboncost/carboncost/internal/domain/emission"

// Shields.io endpoint badge constants.
const (
	BadgeSchemaVersion = 1
	BadgeLabel         = "CO2"
	BadgeNoData        = "No Data"
)

// Stats is the aggregate view returned by GET /stats.
type Stats struct {
	TotalCO2    float64           `json:"total_co2"`
	AverageCO2  float64           `json:"average_co2"`
	BadgeCounts map[string]int    `json:"badge_counts"`
	Emissions   []emission.Record `json:"emissions"`
}

// Badge is the shields.io endpoint payload for GET /latest_co2_badge.
type Badge struct {
	SchemaVersion int    `json:"schemaVersion"`
	Label         string `json:"label"`
	Message       string `json:"message"`
	Color         string `json:"color"`
}

// NewBadge builds the badge for tier t.
func NewBadge(t emission.Tier) Badge {
	return Badge{
		SchemaVersion: BadgeSchemaVersion,
		Label:         BadgeLabel,
		Message:       string(t),
		Color:         t.Color(),
	}
}

// NoDataBadge is served while no record exists.
func NoDataBadge() Badge {
	return Badge{
		SchemaVersion: BadgeSchemaVersion,
		Label:         BadgeLabel,
		Message:       BadgeNoData,
		Color:         emission.ColorUnknown,
	}
}

// AckResponse is the body of a successful POST /record.
type AckResponse struct {
	Status string `json:"status"`
	ID     uint   `json:"id"`
}

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
