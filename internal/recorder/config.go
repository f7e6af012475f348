// Package recorder estimates the CO2 of a CI job, submits it to the collector
// and exposes the result as GitHub Actions step outputs.
package recorder

import (
	"fmt"
	"strings"
	"time"

	"github.com/carboncost/carboncost/internal/domain/emission"
)

// Environment variable names read by the recorder.
const (
	EnvInputBackendURL = "INPUT_BACKEND_URL"
	EnvBackendURL      = "CARBON_BACKEND_URL"
	EnvRunnerOS        = "RUNNER_OS"
	EnvRepository      = "GITHUB_REPOSITORY"
	EnvRepositoryOwner = "GITHUB_REPOSITORY_OWNER"
	EnvRunID           = "GITHUB_RUN_ID"
	EnvGitHubOutput    = "GITHUB_OUTPUT"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Config holds the resolved inputs of one recorder invocation.
type Config struct {
	BackendURL string        // full record endpoint, e.g. http://host:5000/record
	Timeout    time.Duration // zero means no client timeout
	Env        Environment
}

// Environment is the CI context the record is attributed to.
type Environment struct {
	Platform   string // factor table key derived from RUNNER_OS
	Repository string // owner/repo
	Owner      string
	RunID      string
}

// MachineType returns the hosted runner label, e.g. "ubuntu-latest".
func (e Environment) MachineType() string {
	return emission.MachineType(e.Platform)
}

// ResolveBackendURL picks the backend URL from the flag value, then the
// action input, then the CARBON_ variable.
func ResolveBackendURL(flag string, lookup LookupFunc) (string, error) {
	if v := strings.TrimSpace(flag); v != "" {
		return v, nil
	}
	for _, key := range []string{EnvInputBackendURL, EnvBackendURL} {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), nil
		}
	}
	return "", fmt.Errorf("%w: backend_url", ErrMissingInput)
}

// LoadEnvironment reads the runner and repository variables.
func LoadEnvironment(lookup LookupFunc) (Environment, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	env := Environment{
		Platform:   emission.PlatformUbuntu,
		Repository: get(EnvRepository),
		Owner:      get(EnvRepositoryOwner),
		RunID:      get(EnvRunID),
	}
	if runnerOS := get(EnvRunnerOS); runnerOS != "" {
		env.Platform = emission.Platform(runnerOS)
	}
	if env.Owner == "" {
		if i := strings.IndexByte(env.Repository, '/'); i > 0 {
			env.Owner = env.Repository[:i]
		}
	}

	switch {
	case env.Repository == "":
		return Environment{}, fmt.Errorf("%w: %s", ErrMissingEnv, EnvRepository)
	case env.Owner == "":
		return Environment{}, fmt.Errorf("%w: %s", ErrMissingEnv, EnvRepositoryOwner)
	case env.RunID == "":
		return Environment{}, fmt.Errorf("%w: %s", ErrMissingEnv, EnvRunID)
	}
	return env, nil
}
