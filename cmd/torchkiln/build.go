// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"torchkiln-cli/internal/config"
	"torchkiln-cli/internal/container"
	"torchkiln-cli/internal/index"
	"torchkiln-cli/internal/issue"
	"torchkiln-cli/internal/provision"
	"torchkiln-cli/internal/registry"
	"torchkiln-cli/internal/resolve"

	"github.com/spf13/cobra"
)

// newBuildCommand creates the `torchkiln build` command: the full
// resolve-then-provision pipeline.
func newBuildCommand(app *App) *cobra.Command {
	flags := &constraintFlags{}
	var (
		engine        string
		keepContainer bool
		keepBaseImage bool
	)

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Resolve constraints and bake a PyTorch container image",
		Long: `Resolve python/torch/cuda version constraints, pull the matching base
image, provision python and torch inside a build container, and commit
the result as a local image (torchkiln:py<python>-torch<torch>-<compute>).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			resolution, err := app.Resolver.Resolve(ctx, flags.request())
			if err != nil {
				return wrapResolveError(app, err)
			}
			printResolution(app, resolution)

			result, err := app.Builder.Build(ctx, BuildRequest{
				Resolution:    resolution,
				Engine:        config.ContainerEngine(engine),
				KeepContainer: keepContainer,
				KeepBaseImage: keepBaseImage,
			})
			if err != nil {
				return wrapBuildError(app, err)
			}

			fmt.Fprintln(app.stdout)
			fmt.Fprintln(app.stdout, SuccessStyle.Render("Image ready: ")+ValueStyle.Render(result.Image))
			return nil
		},
	}

	flags.register(buildCmd)
	buildCmd.Flags().StringVar(&engine, "engine", "", `container engine override ("docker" or "podman")`)
	buildCmd.Flags().BoolVar(&keepContainer, "keep-container", false, "keep the build container after the run")
	buildCmd.Flags().BoolVar(&keepBaseImage, "keep-base-image", false, "do not remove the pulled base image after the commit")

	return buildCmd
}

// wrapResolveError attaches the matching issue catalog entry to a resolution
// failure and renders it before returning.
func wrapResolveError(app *App, err error) error {
	svcErr := newServiceError(err, resolveIssueID(err), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose)+"\n")
	renderServiceError(app.stderr, svcErr)
	return &ExitError{Code: 1, Err: err}
}

// wrapBuildError attaches the matching issue catalog entry to a build failure
// and renders it before returning.
func wrapBuildError(app *App, err error) error {
	svcErr := newServiceError(err, buildIssueID(err), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose)+"\n")
	renderServiceError(app.stderr, svcErr)

	var stepErr *provision.StepFailedError
	if errors.As(err, &stepErr) {
		return &ExitError{Code: stepErr.ExitCode, Err: err}
	}
	return &ExitError{Code: 1, Err: err}
}

// resolveIssueID maps a resolution failure to its issue catalog entry.
func resolveIssueID(err error) issue.Id {
	var indexErr *index.FetchError
	if errors.As(err, &indexErr) {
		return issue.IndexFetchFailedId
	}
	var registryErr *registry.FetchError
	if errors.As(err, &registryErr) {
		return issue.RegistryFetchFailedId
	}
	switch {
	case errors.Is(err, resolve.ErrNoCandidates):
		return issue.NoMatchingWheelId
	case errors.Is(err, resolve.ErrNoImageTag):
		return issue.NoBaseImageTagId
	}
	return 0
}

// buildIssueID maps a build failure to its issue catalog entry.
func buildIssueID(err error) issue.Id {
	var (
		stepErr *provision.StepFailedError
		pullErr *provision.PullFailedError
	)
	switch {
	case errors.Is(err, container.ErrNoEngineAvailable):
		return issue.ContainerEngineNotFoundId
	case errors.As(err, &pullErr):
		return issue.BaseImagePullFailedId
	case errors.As(err, &stepErr):
		return issue.ProvisionStepFailedId
	}
	return 0
}
