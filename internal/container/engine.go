// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Engine defines the container runtime operations the build pipeline needs.
type Engine interface {
	// Name returns the engine name (docker or podman).
	Name() string
	// Available checks if the engine is usable on this system.
	Available() bool
	// Version returns the engine version.
	Version(ctx context.Context) (string, error)

	// Pull pulls an image, streaming progress to output when non-nil.
	Pull(ctx context.Context, image string, output io.Writer) error
	// RunDetached creates and starts a long-lived container with a TTY.
	RunDetached(ctx context.Context, name, image string) error
	// Exec runs a shell script inside a running container.
	Exec(ctx context.Context, containerName, script string, opts ExecOptions) (*ExecResult, error)
	// Commit commits a container's filesystem to a new image.
	Commit(ctx context.Context, containerName, image string) error
	// Remove removes a container and its anonymous volumes.
	Remove(ctx context.Context, containerName string, force bool) error
	// ImageExists checks if an image is present locally.
	ImageExists(ctx context.Context, image string) (bool, error)
	// RemoveImage removes a local image.
	RemoveImage(ctx context.Context, image string, force bool) error
	// ContainersByImage lists IDs of containers created from an image.
	ContainersByImage(ctx context.Context, image string) ([]string, error)
}

// ExecOptions configures script execution inside a container.
type ExecOptions struct {
	// Env contains extra environment variables for the script.
	Env map[string]string
	// Stdout is where to stream standard output (nil discards it).
	Stdout io.Writer
	// Stderr is where to stream standard error (nil discards it).
	Stderr io.Writer
}

// ExecResult reports the outcome of an Exec call. A non-zero ExitCode is not
// an error at this layer; the caller decides whether it is fatal.
type ExecResult struct {
	ExitCode int
	Error    error
}

// EngineType identifies the container engine type.
type EngineType string

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypePodman EngineType = "podman"
)

// ErrNoEngineAvailable is the sentinel wrapped by EngineNotAvailableError.
var ErrNoEngineAvailable = errors.New("no container engine available")

// EngineNotAvailableError is returned when the requested container engine
// (and any fallback) cannot be used.
type EngineNotAvailableError struct {
	Engine string
	Reason string
}

func (e *EngineNotAvailableError) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

func (e *EngineNotAvailableError) Unwrap() error {
	return ErrNoEngineAvailable
}

// NewEngine creates a container engine of the preferred type, falling back
// to the other CLI engine when the preferred one is not available.
func NewEngine(preferredType EngineType) (Engine, error) {
	switch preferredType {
	case EngineTypeDocker:
		docker := NewDockerEngine()
		if docker.Available() {
			return docker, nil
		}
		podman := NewPodmanEngine()
		if podman.Available() {
			return podman, nil
		}
		return nil, &EngineNotAvailableError{
			Engine: "docker",
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	case EngineTypePodman:
		podman := NewPodmanEngine()
		if podman.Available() {
			return podman, nil
		}
		docker := NewDockerEngine()
		if docker.Available() {
			return docker, nil
		}
		return nil, &EngineNotAvailableError{
			Engine: "podman",
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}
}

// AutoDetectEngine returns the first available container engine.
func AutoDetectEngine() (Engine, error) {
	docker := NewDockerEngine()
	if docker.Available() {
		return docker, nil
	}

	podman := NewPodmanEngine()
	if podman.Available() {
		return podman, nil
	}

	return nil, &EngineNotAvailableError{
		Engine: "any",
		Reason: "no container engine (docker or podman) is available on this system",
	}
}
