package dashboard

import (
	"github.com/carboncost/carboncost/internal/domain/emission"
	"github.com/carboncost/carboncost/internal/domain/types"
	"github.com/carboncost/carboncost/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func rec(repo, machine string, co2 float64, ts string) emission.Record {
	return emission.Record{
		Repo:        repo,
		Owner:       "carbon-cost-team",
		RunID:       repo + ts,
		CO2:         co2,
		Duration:    300,
		MachineType: machine,
		Badge:       emission.Classify(co2),
		Timestamp:   ts,
	}
}

// sampleStats spans three days with one record per tier.
func sampleStats() types.Stats {
	recs := []emission.Record{
		rec("frontend-app", "ubuntu-latest", 0.25, "2025-07-01T10:00:00Z"),
		rec("backend-api", "windows-latest", 1.0, "2025-07-02T09:00:00Z"),
		rec("ml-service", "macos-latest", 2.0, "2025-07-03T23:30:00Z"),
		rec("backend-api", "ubuntu-latest", 0.5, "2025-07-02T18:00:00Z"),
	}
	return types.Stats{
		TotalCO2:    3.75,
		AverageCO2:  0.9375,
		BadgeCounts: map[string]int{"Green": 1, "Yellow": 2, "Red": 1},
		Emissions:   recs,
	}
}
