package emission

import "strings"

// Default factor table in kg CO2 per second of job runtime.
const (
	FactorUbuntu  = 0.0002
	FactorWindows = 0.0003
	FactorMacOS   = 0.00025

	// DefaultFactor applies to platforms missing from the table.
	DefaultFactor = 0.0002
)

// Platform keys of the factor table.
const (
	PlatformUbuntu  = "ubuntu"
	PlatformWindows = "windows"
	PlatformMacOS   = "macos"
)

// runnerOSAliases maps runner OS names (RUNNER_OS) onto factor table keys.
var runnerOSAliases = map[string]string{
	"linux":   PlatformUbuntu,
	"osx":     PlatformMacOS,
	"darwin":  PlatformMacOS,
	"win":     PlatformWindows,
	"windows": PlatformWindows,
	"macos":   PlatformMacOS,
}

// DefaultFactors returns a fresh copy of the built-in factor table.
func DefaultFactors() map[string]float64 {
	return map[string]float64{
		PlatformUbuntu:  FactorUbuntu,
		PlatformWindows: FactorWindows,
		PlatformMacOS:   FactorMacOS,
	}
}

// Platform normalizes a machine type or runner OS name to a factor table key:
// "ubuntu-latest" -> "ubuntu", "macOS" -> "macos", "Linux" -> "ubuntu".
func Platform(machineType string) string {
	p := strings.ToLower(strings.TrimSpace(machineType))
	if i := strings.IndexByte(p, '-'); i >= 0 {
		p = p[:i]
	}
	if alias, ok := runnerOSAliases[p]; ok {
		return alias
	}
	return p
}

// MachineType returns the hosted runner label for a platform, e.g. "ubuntu-latest".
func MachineType(platform string) string {
	return Platform(platform) + "-latest"
}

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithFactors replaces the factor table. Negative factors are ignored.
func WithFactors(factors map[string]float64) Option {
	return func(e *Estimator) {
		if len(factors) == 0 {
			return
		}
		// Copy to avoid external modifications
		e.factors = make(map[string]float64, len(factors))
		for platform, factor := range factors {
			if factor >= 0 {
				e.factors[Platform(platform)] = factor
			}
		}
	}
}

// WithDefaultFactor sets the factor for unknown platforms. Negative factors
// are ignored; zero is accepted like a zero entry in WithFactors.
func WithDefaultFactor(factor float64) Option {
	return func(e *Estimator) {
		if factor >= 0 {
			e.defaultFactor = factor
		}
	}
}

// Estimator turns a job duration into a CO2 estimate using a constant
// per-platform factor.
type Estimator struct {
	factors       map[string]float64
	defaultFactor float64
}

// NewEstimator creates an Estimator with the built-in factor table.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		factors:       DefaultFactors(),
		defaultFactor: DefaultFactor,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Factor returns the factor for a platform or machine type.
func (e *Estimator) Factor(platform string) float64 {
	if f, ok := e.factors[Platform(platform)]; ok {
		return f
	}
	return e.defaultFactor
}

// Estimate returns durationSeconds * factor(platform) in kg CO2.
func (e *Estimator) Estimate(durationSeconds int, platform string) float64 {
	return float64(durationSeconds) * e.Factor(platform)
}

var defaultEstimator = NewEstimator()

// Estimate uses the built-in factor table.
func Estimate(durationSeconds int, platform string) float64 {
	return defaultEstimator.Estimate(durationSeconds, platform)
}
