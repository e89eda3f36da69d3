// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"runtime"

	"torchkiln-cli/internal/wheel"

	"github.com/spf13/cobra"
)

// constraintFlags holds the version constraint flags shared by the resolve
// and build commands.
type constraintFlags struct {
	python      string
	torch       string
	accelerator string
	pkg         string
}

// register binds the constraint flags to cmd.
func (f *constraintFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.python, "python", "p", "", `python version constraint (e.g. "3.10"; empty = latest)`)
	cmd.Flags().StringVarP(&f.torch, "torch", "t", "", `torch version constraint, matched by substring (e.g. "1.13"; empty = latest)`)
	cmd.Flags().StringVarP(&f.accelerator, "cuda", "c", "", `cuda version constraint or "cpu" (empty = latest)`)
	cmd.Flags().StringVar(&f.pkg, "package", "", `wheel package name (default "torch")`)
}

// request converts the flags into a ResolveRequest. On macOS the accelerator
// defaults to cpu since no CUDA wheels exist for that platform.
func (f *constraintFlags) request() ResolveRequest {
	accelerator := f.accelerator
	if accelerator == "" && runtime.GOOS == "darwin" {
		accelerator = wheel.AcceleratorCPU
	}
	return ResolveRequest{
		Python:      f.python,
		Torch:       f.torch,
		Accelerator: accelerator,
		Package:     f.pkg,
	}
}

// newResolveCommand creates the `torchkiln resolve` command: a dry run that
// resolves constraints and prints the outcome without touching a container
// engine.
func newResolveCommand(app *App) *cobra.Command {
	flags := &constraintFlags{}

	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve version constraints without building",
		Long: `Resolve python/torch/cuda version constraints against the wheel index
and print the winning wheel and base container image.

This is a dry run: no container engine is required and nothing is pulled
or built.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Resolver.Resolve(cmd.Context(), flags.request())
			if err != nil {
				return wrapResolveError(app, err)
			}

			printResolution(app, result)
			return nil
		},
	}

	flags.register(resolveCmd)
	return resolveCmd
}

// printResolution prints the resolved artifact and base image.
func printResolution(app *App, result ResolveResult) {
	artifact := result.Artifact

	fmt.Fprintln(app.stdout, TitleStyle.Render("Resolved"))
	fmt.Fprintf(app.stdout, "  %s:  %s\n", SubtitleStyle.Render("package"), ValueStyle.Render(artifact.Name))
	fmt.Fprintf(app.stdout, "  %s:  %s\n", SubtitleStyle.Render("version"), ValueStyle.Render(artifact.Version))
	fmt.Fprintf(app.stdout, "  %s:   %s\n", SubtitleStyle.Render("python"), ValueStyle.Render(artifact.PythonVersion()))
	fmt.Fprintf(app.stdout, "  %s: %s\n", SubtitleStyle.Render("platform"), ValueStyle.Render(artifact.OS))
	fmt.Fprintf(app.stdout, "  %s:  %s\n", SubtitleStyle.Render("compute"), ValueStyle.Render(artifact.AcceleratorVersion()))
	fmt.Fprintf(app.stdout, "  %s:     %s\n", SubtitleStyle.Render("base"), ValueStyle.Render(result.BaseImage))
}
