package recorder

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

const (
	shieldsEndpoint = "https://img.shields.io/endpoint?url="
	recordPath      = "/record"
	badgePath       = "/latest_co2_badge"

	outputFilePermission = 0o644
)

// Outputs are the step outputs of a successful run.
type Outputs struct {
	CO2      string // kg, three decimals
	BadgeURL string
}

// FormatCO2 renders a CO2 value the way it is exposed as an output.
func FormatCO2(co2 float64) string {
	return fmt.Sprintf("%.3f", co2)
}

// CollectorBase strips a trailing /record from the backend URL.
func CollectorBase(backendURL string) string {
	base := strings.TrimRight(backendURL, "/")
	return strings.TrimSuffix(base, recordPath)
}

// BadgeURL returns the shields.io URL rendering the collector's latest badge.
func BadgeURL(backendURL string) string {
	return shieldsEndpoint + url.QueryEscape(CollectorBase(backendURL)+badgePath)
}

// lines returns the outputs as name=value lines.
func (o Outputs) lines() string {
	return "co2=" + o.CO2 + "\n" + "badge_url=" + o.BadgeURL + "\n"
}

// Write prints the outputs to w and appends them to the file named by
// outputPath when it is non-empty.
func (o Outputs) Write(w io.Writer, outputPath string) error {
	if outputPath != "" {
		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, outputFilePermission)
		if err != nil {
			return fmt.Errorf("open %s: %w", EnvGitHubOutput, err)
		}
		if _, err := io.WriteString(f, o.lines()); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", EnvGitHubOutput, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", EnvGitHubOutput, err)
		}
	}
	_, err := io.WriteString(w, o.lines())
	return err
}

// Annotate prints err as a GitHub Actions error annotation.
func Annotate(w io.Writer, err error) {
	msg := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(err.Error())
	_, _ = fmt.Fprintf(w, "::error::%s\n", msg)
}
