package dashboard

import (
	"sort"
	"time"

	"github.com/carboncost/carboncost/internal/domain/emission"
	"github.com/carboncost/carboncost/internal/domain/types"
)

// RecentLimit is the number of builds listed in the recent table.
const RecentLimit = 10

// Metrics are the headline numbers reported by the collector.
type Metrics struct {
	TotalCO2    float64 `json:"total_co2"`
	AverageCO2  float64 `json:"average_co2"`
	TotalBuilds int     `json:"total_builds"`
	GreenBuilds int     `json:"green_builds"`
}

// TierCount is one slice of the badge breakdown.
type TierCount struct {
	Tier  emission.Tier `json:"tier"`
	Count int           `json:"count"`
}

// Point is one labelled CO2 sum.
type Point struct {
	Label string  `json:"label"`
	CO2   float64 `json:"co2"`
}

// View is the dashboard model for one date range.
type View struct {
	Metrics        Metrics           `json:"metrics"`
	BadgeBreakdown []TierCount       `json:"badge_breakdown"`
	Daily          []Point           `json:"daily"`
	ByMachine      []Point           `json:"by_machine"`
	Recent         []emission.Record `json:"recent"`
	From           string            `json:"from,omitempty"`
	To             string            `json:"to,omitempty"`
	MinDate        string            `json:"min_date,omitempty"`
	MaxDate        string            `json:"max_date,omitempty"`
	Filtered       int               `json:"filtered"`
}

// BuildView computes the dashboard model. Headline metrics and the badge
// breakdown come from the collector unchanged; the charts and the recent
// table use the records within r. Open bounds of r default to the data's
// own min and max dates.
func BuildView(stats types.Stats, r DateRange) View {
	v := View{
		Metrics: Metrics{
			TotalCO2:    stats.TotalCO2,
			AverageCO2:  stats.AverageCO2,
			TotalBuilds: len(stats.Emissions),
			GreenBuilds: stats.BadgeCounts[string(emission.Green)],
		},
	}
	for _, t := range emission.Tiers() {
		v.BadgeBreakdown = append(v.BadgeBreakdown, TierCount{Tier: t, Count: stats.BadgeCounts[string(t)]})
	}

	if minDate, maxDate, ok := Bounds(stats.Emissions); ok {
		v.MinDate = minDate.Format(DateLayout)
		v.MaxDate = maxDate.Format(DateLayout)
		if r.From.IsZero() {
			r.From = minDate
		}
		if r.To.IsZero() {
			r.To = maxDate
		}
	}
	if !r.From.IsZero() {
		v.From = r.From.Format(DateLayout)
	}
	if !r.To.IsZero() {
		v.To = r.To.Format(DateLayout)
	}

	filtered := Filter(stats.Emissions, r)
	v.Filtered = len(filtered)
	v.Daily = dailySums(filtered)
	v.ByMachine = machineSums(filtered)
	v.Recent = mostRecent(filtered, RecentLimit)
	return v
}

func dailySums(records []emission.Record) []Point {
	sums := make(map[string]float64)
	for _, rec := range records {
		if d, ok := recordDate(rec); ok {
			sums[d.Format(DateLayout)] += rec.CO2
		}
	}
	return sortedPoints(sums)
}

func machineSums(records []emission.Record) []Point {
	sums := make(map[string]float64)
	for _, rec := range records {
		sums[rec.MachineType] += rec.CO2
	}
	return sortedPoints(sums)
}

func sortedPoints(sums map[string]float64) []Point {
	out := make([]Point, 0, len(sums))
	for label, co2 := range sums {
		out = append(out, Point{Label: label, CO2: co2})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// mostRecent returns up to n records ordered by timestamp, newest first.
// Equal timestamps keep the later-inserted record first.
func mostRecent(records []emission.Record, n int) []emission.Record {
	type timed struct {
		rec emission.Record
		at  time.Time
		idx int
	}
	all := make([]timed, 0, len(records))
	for i, rec := range records {
		at, _ := rec.Time()
		all = append(all, timed{rec: rec, at: at, idx: i})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].at.Equal(all[j].at) {
			return all[i].at.After(all[j].at)
		}
		return all[i].idx > all[j].idx
	})
	if len(all) > n {
		all = all[:n]
	}
	out := make([]emission.Record, len(all))
	for i, t := range all {
		out[i] = t.rec
	}
	return out
}
