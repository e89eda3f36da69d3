// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"torchkiln-cli/internal/container"
	"torchkiln-cli/internal/wheel"
)

const (
	// pullAttempts and pullBackoff bound the base image pull retry loop.
	// Registry pulls are the flakiest part of the pipeline.
	pullAttempts = 3
	pullBackoff  = 2 * time.Second
)

// Config controls how the provisioner builds the image.
type Config struct {
	// ContainerName is the name of the transient build container.
	ContainerName string
	// ImageRepo is the repository part of the committed image reference.
	ImageRepo string
	// ChannelURL is the wheel channel base URL pip installs from.
	ChannelURL string
	// KeepContainer leaves the build container in place after the run,
	// useful for debugging failed steps.
	KeepContainer bool
	// RemoveBaseImage removes the pulled base image after a successful
	// commit.
	RemoveBaseImage bool
	// Stdout and Stderr receive streamed output from the container runtime.
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns the provisioning defaults.
func DefaultConfig() Config {
	return Config{
		ContainerName:   "torchkiln-build",
		ImageRepo:       "torchkiln",
		ChannelURL:      "https://download.pytorch.org/whl",
		RemoveBaseImage: true,
	}
}

// StepFailedError reports a provisioning step that exited non-zero inside
// the build container.
type StepFailedError struct {
	Step     string
	ExitCode int
}

func (e *StepFailedError) Error() string {
	return fmt.Sprintf("provisioning step %q failed with exit code %d", e.Step, e.ExitCode)
}

// PullFailedError reports that the base image pull failed after all retries.
type PullFailedError struct {
	Image string
	Cause error
}

func (e *PullFailedError) Error() string {
	return fmt.Sprintf("pulling base image %q: %v", e.Image, e.Cause)
}

func (e *PullFailedError) Unwrap() error {
	return e.Cause
}

// Provisioner drives a container engine through the image build pipeline.
type Provisioner struct {
	engine  container.Engine
	cfg     Config
	backoff time.Duration
}

// NewProvisioner creates a Provisioner using the given engine.
func NewProvisioner(engine container.Engine, cfg Config) *Provisioner {
	return &Provisioner{engine: engine, cfg: cfg, backoff: pullBackoff}
}

// ImageName returns the committed image reference for an artifact, e.g.
// "torchkiln:py3.10-torch1.13.1-11.7".
func (p *Provisioner) ImageName(artifact wheel.Artifact) string {
	return fmt.Sprintf("%s:py%s-torch%s-%s",
		p.cfg.ImageRepo, artifact.PythonVersion(), artifact.Version, artifact.AcceleratorVersion())
}

// Provision builds and commits the image for the resolved artifact on top of
// baseImage, returning the committed image reference. The build container is
// removed afterwards unless KeepContainer is set; the base image is removed
// after a successful commit when RemoveBaseImage is set.
func (p *Provisioner) Provision(ctx context.Context, artifact wheel.Artifact, baseImage string) (string, error) {
	steps := Steps(artifact, p.cfg.ChannelURL)
	if err := ValidateSteps(steps); err != nil {
		return "", err
	}

	if err := p.pullBaseImage(ctx, baseImage); err != nil {
		return "", err
	}

	if err := p.removeStaleContainers(ctx, baseImage); err != nil {
		return "", err
	}

	slog.Info("creating build container", "name", p.cfg.ContainerName, "image", baseImage)
	if err := p.engine.RunDetached(ctx, p.cfg.ContainerName, baseImage); err != nil {
		return "", err
	}

	if !p.cfg.KeepContainer {
		defer func() {
			if err := p.engine.Remove(context.WithoutCancel(ctx), p.cfg.ContainerName, true); err != nil {
				slog.Warn("build container cleanup failed", "name", p.cfg.ContainerName, "error", err)
			}
		}()
	}

	for _, step := range steps {
		if err := p.runStep(ctx, step); err != nil {
			return "", err
		}
	}

	image := p.ImageName(artifact)
	slog.Info("committing image", "image", image)
	if err := p.engine.Commit(ctx, p.cfg.ContainerName, image); err != nil {
		return "", err
	}

	if p.cfg.RemoveBaseImage {
		if err := p.engine.RemoveImage(ctx, baseImage, false); err != nil {
			slog.Warn("base image removal failed", "image", baseImage, "error", err)
		}
	}

	return image, nil
}

// pullBaseImage pulls with bounded retries; every pull failure is treated as
// transient since the engine CLI does not distinguish causes.
func (p *Provisioner) pullBaseImage(ctx context.Context, baseImage string) error {
	slog.Info("pulling base image", "image", baseImage)
	err := container.RetryWithBackoff(ctx, pullAttempts, p.backoff, func(attempt int) (bool, error) {
		if attempt > 0 {
			slog.Debug("retrying base image pull", "image", baseImage, "attempt", attempt+1)
		}
		if err := p.engine.Pull(ctx, baseImage, p.cfg.Stdout); err != nil {
			return true, err
		}
		return false, nil
	})
	if err != nil {
		return &PullFailedError{Image: baseImage, Cause: err}
	}
	return nil
}

// removeStaleContainers force-removes leftover containers created from the
// base image (including a previous build container with our name) so the new
// build starts clean.
func (p *Provisioner) removeStaleContainers(ctx context.Context, baseImage string) error {
	ids, err := p.engine.ContainersByImage(ctx, baseImage)
	if err != nil {
		return err
	}

	for _, id := range ids {
		slog.Info("removing stale container", "id", id, "image", baseImage)
		if err := p.engine.Remove(ctx, id, true); err != nil {
			return fmt.Errorf("removing stale container %s: %w", id, err)
		}
	}
	return nil
}

// runStep executes one provisioning step and translates a non-zero exit
// status into a StepFailedError.
func (p *Provisioner) runStep(ctx context.Context, step Step) error {
	slog.Info("running provisioning step", "step", step.Name)

	result, err := p.engine.Exec(ctx, p.cfg.ContainerName, step.Script, container.ExecOptions{
		Env:    map[string]string{"DEBIAN_FRONTEND": "noninteractive"},
		Stdout: p.cfg.Stdout,
		Stderr: p.cfg.Stderr,
	})
	if err != nil {
		return fmt.Errorf("step %q: %w", step.Name, err)
	}
	if result.Error != nil {
		return fmt.Errorf("step %q: %w", step.Name, result.Error)
	}
	if result.ExitCode != 0 {
		return &StepFailedError{Step: step.Name, ExitCode: result.ExitCode}
	}
	return nil
}
