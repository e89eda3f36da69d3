// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"torchkiln-cli/internal/config"
	"torchkiln-cli/internal/container"
	"torchkiln-cli/internal/index"
	"torchkiln-cli/internal/provision"
	"torchkiln-cli/internal/registry"
	"torchkiln-cli/internal/resolve"
	"torchkiln-cli/internal/wheel"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer — all Cobra command handlers receive an App reference and delegate
	// business logic through its service interfaces (Config, Resolver, Builder).
	App struct {
		Config   ConfigProvider
		Resolver ResolveService
		Builder  BuildService
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp. Tests can supply mock implementations
	// to isolate specific service behavior.
	Dependencies struct {
		Config   ConfigProvider
		Resolver ResolveService
		Builder  BuildService
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// ResolveRequest captures the user-facing version constraints. Values use the
	// dotted form typed on the command line ("3.10", "1.13.1", "11.7" or "cpu");
	// an empty value means "latest".
	ResolveRequest struct {
		// Python constrains the interpreter version (e.g., "3.10").
		Python string
		// Torch constrains the library version by substring (e.g., "1.13").
		Torch string
		// Accelerator constrains the compute platform ("cpu" or a CUDA version).
		Accelerator string
		// Package overrides the wheel package name (default "torch").
		Package string
	}

	// ResolveResult contains the resolved wheel artifact and its base container image.
	ResolveResult struct {
		Artifact  wheel.Artifact
		BaseImage string
	}

	// ResolveService resolves user constraints against the wheel index and the
	// image registry.
	ResolveService interface {
		Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error)
	}

	// BuildRequest carries a completed resolution plus build overrides.
	BuildRequest struct {
		Resolution ResolveResult
		// Engine overrides the configured container engine when non-empty.
		Engine config.ContainerEngine
		// KeepContainer leaves the build container alive after the run.
		KeepContainer bool
		// KeepBaseImage suppresses base image removal after the commit.
		KeepBaseImage bool
	}

	// BuildResult contains build outcomes.
	BuildResult struct {
		Image string
	}

	// BuildService drives a container engine through the provisioning pipeline.
	// Implementations must not write diagnostics directly to stdout/stderr beyond
	// streamed container output; errors are returned for the CLI layer to render.
	BuildService interface {
		Build(ctx context.Context, req BuildRequest) (BuildResult, error)
	}

	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources or mock implementations.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// appResolveService implements ResolveService against the real wheel index
	// and Docker Hub clients, honoring endpoint overrides from configuration.
	appResolveService struct {
		config ConfigProvider
	}

	// appBuildService implements BuildService with a detected container engine.
	appBuildService struct {
		config ConfigProvider
		stdout io.Writer
		stderr io.Writer
	}
)

// httpTimeout bounds each index/registry request.
const httpTimeout = 30 * time.Second

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Resolver == nil {
		deps.Resolver = &appResolveService{config: deps.Config}
	}
	if deps.Builder == nil {
		deps.Builder = &appBuildService{config: deps.Config, stdout: deps.Stdout, stderr: deps.Stderr}
	}

	return &App{
		Config:   deps.Config,
		Resolver: deps.Resolver,
		Builder:  deps.Builder,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
}

// constraintsFromRequest converts user-facing dotted versions into the tag
// vocabulary the index uses: "3.10" becomes "cp310", "11.7" becomes "cu117",
// and "cpu" passes through. Empty values stay empty ("latest").
func constraintsFromRequest(req ResolveRequest) resolve.Constraints {
	c := resolve.Constraints{Library: req.Torch}
	if req.Python != "" {
		c.Python = wheel.PythonTagFromVersion(req.Python)
	}
	if req.Accelerator != "" {
		c.Accelerator = wheel.AcceleratorTagFromVersion(req.Accelerator)
	}
	return c
}

// Resolve loads configuration, queries the wheel index, and resolves the base
// container image for the winning artifact.
func (s *appResolveService) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	cfg, err := s.config.Load(ctx, config.LoadOptions{})
	if err != nil {
		return ResolveResult{}, err
	}

	httpClient := &http.Client{Timeout: httpTimeout}

	indexOpts := []index.Option{index.WithHTTPClient(httpClient)}
	if cfg.IndexURL != "" {
		indexOpts = append(indexOpts, index.WithBaseURL(cfg.IndexURL.String()))
	}

	registryOpts := []registry.Option{registry.WithHTTPClient(httpClient)}
	if cfg.RegistryURL != "" {
		registryOpts = append(registryOpts, registry.WithBaseURL(cfg.RegistryURL.String()))
	}

	resolverOpts := []resolve.Option{}
	if req.Package != "" {
		resolverOpts = append(resolverOpts, resolve.WithPackage(req.Package))
	}

	resolver := resolve.NewResolver(
		index.NewClient(indexOpts...),
		registry.NewClient(registryOpts...),
		resolverOpts...,
	)

	artifact, err := resolver.Resolve(ctx, constraintsFromRequest(req))
	if err != nil {
		return ResolveResult{}, err
	}

	baseImage, err := resolver.ResolveBaseImage(ctx, artifact)
	if err != nil {
		return ResolveResult{}, err
	}

	return ResolveResult{Artifact: artifact, BaseImage: baseImage}, nil
}

// Build selects a container engine and runs the provisioning pipeline.
func (s *appBuildService) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	cfg, err := s.config.Load(ctx, config.LoadOptions{})
	if err != nil {
		return BuildResult{}, err
	}

	engineChoice := cfg.ContainerEngine
	if req.Engine != "" {
		engineChoice = req.Engine
	}

	engine, err := engineFor(engineChoice)
	if err != nil {
		return BuildResult{}, err
	}

	provisionCfg := provision.DefaultConfig()
	if cfg.Build.ContainerName != "" {
		provisionCfg.ContainerName = cfg.Build.ContainerName
	}
	if cfg.Build.ImageRepo != "" {
		provisionCfg.ImageRepo = cfg.Build.ImageRepo
	}
	provisionCfg.KeepContainer = cfg.Build.KeepContainer || req.KeepContainer
	provisionCfg.RemoveBaseImage = cfg.Build.RemoveBaseImage && !req.KeepBaseImage
	provisionCfg.Stdout = s.stdout
	provisionCfg.Stderr = s.stderr

	provisioner := provision.NewProvisioner(engine, provisionCfg)

	image, err := provisioner.Provision(ctx, req.Resolution.Artifact, req.Resolution.BaseImage)
	if err != nil {
		return BuildResult{}, err
	}

	return BuildResult{Image: image}, nil
}

// engineFor maps a configured engine choice to a live container engine.
func engineFor(choice config.ContainerEngine) (container.Engine, error) {
	switch choice {
	case config.ContainerEngineDocker:
		return container.NewEngine(container.EngineTypeDocker)
	case config.ContainerEnginePodman:
		return container.NewEngine(container.EngineTypePodman)
	default:
		return container.AutoDetectEngine()
	}
}
