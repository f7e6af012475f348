package emission

import "fmt"

// Tier is the qualitative badge level derived from a CO2 value.
type Tier string

// Badge tiers, lowest emissions first.
const (
	Green  Tier = "Green"
	Yellow Tier = "Yellow"
	Red    Tier = "Red"
)

// Classification thresholds in kg CO2.
const (
	greenBelow  = 0.5
	yellowBelow = 1.5
)

// Colors understood by shields.io.
const (
	colorGreen  = "brightgreen"
	colorYellow = "yellow"
	colorRed    = "red"
	// ColorUnknown is used for missing or unrecognized tiers.
	ColorUnknown = "lightgrey"
)

// Tiers returns all tiers in display order.
func Tiers() []Tier {
	return []Tier{Green, Yellow, Red}
}

// Classify maps a CO2 value to its tier.
func Classify(co2 float64) Tier {
	switch {
	case co2 < greenBelow:
		return Green
	case co2 < yellowBelow:
		return Yellow
	default:
		return Red
	}
}

// ParseTier validates a tier name. Matching is exact, as stored.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(s); t {
	case Green, Yellow, Red:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// Color returns the shields.io color name for the tier.
func (t Tier) Color() string {
	switch t {
	case Green:
		return colorGreen
	case Yellow:
		return colorYellow
	case Red:
		return colorRed
	default:
		return ColorUnknown
	}
}

func (t Tier) String() string { return string(t) }
