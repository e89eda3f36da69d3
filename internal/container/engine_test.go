// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"testing"
)

func TestEngineNotAvailableError_Error(t *testing.T) {
	t.Parallel()

	err := &EngineNotAvailableError{
		Engine: "podman",
		Reason: "not installed",
	}

	expected := "container engine 'podman' is not available: not installed"
	if err.Error() != expected {
		t.Errorf("EngineNotAvailableError.Error() = %s, want %s", err.Error(), expected)
	}
}

func TestEngineNotAvailableError_UnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := &EngineNotAvailableError{
		Engine: "docker",
		Reason: "not installed",
	}

	if !errors.Is(err, ErrNoEngineAvailable) {
		t.Error("EngineNotAvailableError should unwrap to ErrNoEngineAvailable")
	}
}

func TestDockerEngine_AvailableWithNoPath(t *testing.T) {
	t.Parallel()

	engine := &DockerEngine{BaseCLIEngine: NewBaseCLIEngine("")}
	if engine.Available() {
		t.Error("DockerEngine with empty path should not be available")
	}
}

func TestPodmanEngine_AvailableWithNoPath(t *testing.T) {
	t.Parallel()

	engine := &PodmanEngine{BaseCLIEngine: NewBaseCLIEngine("")}
	if engine.Available() {
		t.Error("PodmanEngine with empty path should not be available")
	}
}

func TestNewEngine_UnknownType(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine("unknown"); err == nil {
		t.Error("NewEngine with unknown type should return error")
	}
}

func TestEngineNames(t *testing.T) {
	t.Parallel()

	if got := NewDockerEngine().Name(); got != "docker" {
		t.Errorf("DockerEngine.Name() = %q, want %q", got, "docker")
	}
	if got := NewPodmanEngine().Name(); got != "podman" {
		t.Errorf("PodmanEngine.Name() = %q, want %q", got, "podman")
	}
}
