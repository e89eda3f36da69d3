// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ContainerEngineAuto picks Docker first, then Podman.
	ContainerEngineAuto ContainerEngine = "auto"
	// ContainerEngineDocker uses Docker as the container runtime.
	ContainerEngineDocker ContainerEngine = "docker"
	// ContainerEnginePodman uses Podman as the container runtime.
	ContainerEnginePodman ContainerEngine = "podman"
)

var (
	// ErrInvalidContainerEngine is returned when a ContainerEngine value is not recognized.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidEndpointURL is returned when an EndpointURL value is whitespace-only.
	ErrInvalidEndpointURL = errors.New("invalid endpoint URL")
	// ErrInvalidBuildConfig is the sentinel error wrapped by InvalidBuildConfigError.
	ErrInvalidBuildConfig = errors.New("invalid build config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ContainerEngine specifies which container runtime to use.
	ContainerEngine string

	// InvalidContainerEngineError is returned when a ContainerEngine value is not recognized.
	// It wraps ErrInvalidContainerEngine for errors.Is() compatibility.
	InvalidContainerEngineError struct {
		Value ContainerEngine
	}

	// EndpointURL is a base URL for an HTTP endpoint (wheel index or image registry).
	// The zero value ("") is valid and means "use the built-in default".
	// Non-zero values must not be whitespace-only.
	EndpointURL string

	// InvalidEndpointURLError is returned when an EndpointURL value is non-empty
	// but whitespace-only. It wraps ErrInvalidEndpointURL for errors.Is().
	InvalidEndpointURLError struct {
		Value EndpointURL
	}

	// InvalidBuildConfigError is returned when a BuildConfig has invalid fields.
	// It wraps ErrInvalidBuildConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidBuildConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// ContainerEngine specifies whether to use "docker", "podman", or "auto"
		ContainerEngine ContainerEngine `json:"container_engine" mapstructure:"container_engine"`
		// IndexURL overrides the wheel index base URL
		IndexURL EndpointURL `json:"index_url" mapstructure:"index_url"`
		// RegistryURL overrides the image registry base URL
		RegistryURL EndpointURL `json:"registry_url" mapstructure:"registry_url"`
		// Build configures the image build behavior
		Build BuildConfig `json:"build" mapstructure:"build"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// BuildConfig configures the image build behavior.
	BuildConfig struct {
		// ContainerName names the transient build container
		ContainerName string `json:"container_name" mapstructure:"container_name"`
		// ImageRepo is the repository part of committed image references
		ImageRepo string `json:"image_repo" mapstructure:"image_repo"`
		// KeepContainer leaves the build container alive after the run
		KeepContainer bool `json:"keep_container" mapstructure:"keep_container"`
		// RemoveBaseImage removes the pulled base image after a successful commit
		RemoveBaseImage bool `json:"remove_base_image" mapstructure:"remove_base_image"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidContainerEngineError.
func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: auto, docker, podman)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidContainerEngineError) Unwrap() error {
	return ErrInvalidContainerEngine
}

// String returns the string representation of the ContainerEngine.
func (ce ContainerEngine) String() string { return string(ce) }

// IsValid returns whether the ContainerEngine is one of the defined engine types,
// and a list of validation errors if it is not.
func (ce ContainerEngine) IsValid() (bool, []error) {
	switch ce {
	case ContainerEngineAuto, ContainerEngineDocker, ContainerEnginePodman:
		return true, nil
	default:
		return false, []error{&InvalidContainerEngineError{Value: ce}}
	}
}

// String returns the string representation of the EndpointURL.
func (u EndpointURL) String() string { return string(u) }

// IsValid returns whether the EndpointURL is valid.
// The zero value ("") is valid (means "use the built-in default").
// Non-zero values must not be whitespace-only.
func (u EndpointURL) IsValid() (bool, []error) {
	if u == "" {
		return true, nil
	}
	if strings.TrimSpace(string(u)) == "" {
		return false, []error{&InvalidEndpointURLError{Value: u}}
	}
	return true, nil
}

// Error implements the error interface for InvalidEndpointURLError.
func (e *InvalidEndpointURLError) Error() string {
	return fmt.Sprintf("invalid endpoint URL %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidEndpointURL for errors.Is() compatibility.
func (e *InvalidEndpointURLError) Unwrap() error { return ErrInvalidEndpointURL }

// IsValid returns whether the BuildConfig has valid fields.
// ContainerName and ImageRepo may be empty (built-in defaults apply) but
// must not be whitespace-only. Bool fields need no validation.
func (c BuildConfig) IsValid() (bool, []error) {
	var errs []error
	if c.ContainerName != "" && strings.TrimSpace(c.ContainerName) == "" {
		errs = append(errs, fmt.Errorf("container_name must not be whitespace-only"))
	}
	if c.ImageRepo != "" && strings.TrimSpace(c.ImageRepo) == "" {
		errs = append(errs, fmt.Errorf("image_repo must not be whitespace-only"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidBuildConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidBuildConfigError.
func (e *InvalidBuildConfigError) Error() string {
	return fmt.Sprintf("invalid build config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidBuildConfig for errors.Is() compatibility.
func (e *InvalidBuildConfigError) Unwrap() error { return ErrInvalidBuildConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to ContainerEngine.IsValid(), both EndpointURL fields, and
// Build.IsValid(). UI has only bool fields and needs no validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ContainerEngine.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.IndexURL.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.RegistryURL.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Build.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ContainerEngine: ContainerEngineAuto,
		IndexURL:        "", // built-in index default applies
		RegistryURL:     "", // built-in registry default applies
		Build: BuildConfig{
			ContainerName:   "torchkiln-build",
			ImageRepo:       "torchkiln",
			KeepContainer:   false,
			RemoveBaseImage: true,
		},
		UI: UIConfig{
			Verbose: false,
		},
	}
}
