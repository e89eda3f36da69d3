// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides the shared implementation for CLI-based
	// container engines. Docker and Podman embed this struct; only
	// Available and Version differ between them.
	BaseCLIEngine struct {
		binaryPath  string
		execCommand ExecCommandFunc
	}
)

// WithExecCommand injects a custom command constructor, used by tests to
// intercept CLI invocations.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// NewBaseCLIEngine creates a BaseCLIEngine for the given binary path.
func NewBaseCLIEngine(binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:  binaryPath,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BinaryPath returns the resolved CLI binary path (empty if not found).
func (e *BaseCLIEngine) BinaryPath() string {
	return e.binaryPath
}

// --- Argument Builders ---

// PullArgs builds the argument slice for pulling an image.
func (e *BaseCLIEngine) PullArgs(image string) []string {
	return []string{"pull", image}
}

// RunDetachedArgs builds the argument slice for starting a detached build
// container. The TTY keeps the default shell alive so steps can exec into it.
func (e *BaseCLIEngine) RunDetachedArgs(name, image string) []string {
	return []string{"run", "--detach", "--tty", "--name", name, image}
}

// ExecArgs builds the argument slice for running a script via bash -c.
// Env vars are emitted in sorted order so the command line is deterministic.
func (e *BaseCLIEngine) ExecArgs(containerName, script string, opts ExecOptions) []string {
	args := []string{"exec"}

	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--env", k+"="+opts.Env[k])
	}

	return append(args, containerName, "bash", "-c", script)
}

// CommitArgs builds the argument slice for committing a container.
func (e *BaseCLIEngine) CommitArgs(containerName, image string) []string {
	return []string{"commit", containerName, image}
}

// RemoveArgs builds the argument slice for removing a container together
// with its anonymous volumes.
func (e *BaseCLIEngine) RemoveArgs(containerName string, force bool) []string {
	args := []string{"rm", "--volumes"}
	if force {
		args = append(args, "--force")
	}
	return append(args, containerName)
}

// RemoveImageArgs builds the argument slice for removing an image.
func (e *BaseCLIEngine) RemoveImageArgs(image string, force bool) []string {
	args := []string{"image", "rm"}
	if force {
		args = append(args, "--force")
	}
	return append(args, image)
}

// ContainersByImageArgs builds the argument slice for listing container IDs
// created from an image.
func (e *BaseCLIEngine) ContainersByImageArgs(image string) []string {
	return []string{"ps", "--all", "--filter", "ancestor=" + image, "--format", "{{.ID}}"}
}

// --- Engine Operations ---

// Pull pulls an image, streaming CLI output to opts writers when set.
func (e *BaseCLIEngine) Pull(ctx context.Context, image string, output io.Writer) error {
	cmd := e.CreateCommand(ctx, e.PullArgs(image)...)
	cmd.Stdout = output
	cmd.Stderr = output
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pulling image %s: %w", image, err)
	}
	return nil
}

// RunDetached creates and starts a long-lived container.
func (e *BaseCLIEngine) RunDetached(ctx context.Context, name, image string) error {
	if err := e.RunCommandStatus(ctx, e.RunDetachedArgs(name, image)...); err != nil {
		return fmt.Errorf("starting container %s from %s: %w", name, image, err)
	}
	return nil
}

// Exec runs a shell script inside a running container. A non-zero script
// exit status is reported via ExecResult.ExitCode, not as an error.
func (e *BaseCLIEngine) Exec(ctx context.Context, containerName, script string, opts ExecOptions) (*ExecResult, error) {
	cmd := e.CreateCommand(ctx, e.ExecArgs(containerName, script, opts)...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	err := cmd.Run()

	result := &ExecResult{}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
			result.Error = err
		}
	}

	return result, nil
}

// Commit commits a container's filesystem to a new image.
func (e *BaseCLIEngine) Commit(ctx context.Context, containerName, image string) error {
	if err := e.RunCommandStatus(ctx, e.CommitArgs(containerName, image)...); err != nil {
		return fmt.Errorf("committing container %s to %s: %w", containerName, image, err)
	}
	return nil
}

// Remove removes a container.
func (e *BaseCLIEngine) Remove(ctx context.Context, containerName string, force bool) error {
	return e.RunCommandStatus(ctx, e.RemoveArgs(containerName, force)...)
}

// ImageExists checks if an image is present locally.
func (e *BaseCLIEngine) ImageExists(ctx context.Context, image string) (bool, error) {
	err := e.RunCommandStatus(ctx, "image", "inspect", image)
	return err == nil, nil
}

// RemoveImage removes a local image.
func (e *BaseCLIEngine) RemoveImage(ctx context.Context, image string, force bool) error {
	return e.RunCommandStatus(ctx, e.RemoveImageArgs(image, force)...)
}

// ContainersByImage lists IDs of containers created from an image.
func (e *BaseCLIEngine) ContainersByImage(ctx context.Context, image string) ([]string, error) {
	out, err := e.RunCommandWithOutput(ctx, e.ContainersByImageArgs(image)...)
	if err != nil {
		return nil, fmt.Errorf("listing containers for image %s: %w", image, err)
	}

	var ids []string
	for line := range strings.SplitSeq(out, "\n") {
		if id := strings.TrimSpace(line); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// --- Command Execution ---

// RunCommandStatus executes a CLI command and returns only the error status.
func (e *BaseCLIEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	cmd := e.CreateCommand(ctx, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return nil
}

// RunCommandWithOutput executes a CLI command with stdout captured.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}

	return out.String(), nil
}

// CreateCommand creates an exec.Cmd for the given arguments. Useful when the
// caller needs to customize stdin/stdout/stderr.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	return e.execCommand(ctx, e.binaryPath, args...)
}
