// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"torchkiln-cli/internal/registry"
	"torchkiln-cli/internal/wheel"
)

// defaultPackage is the package name artifacts must carry to be considered.
const defaultPackage = "torch"

type (
	// IndexFetcher retrieves the raw wheel index listing document.
	IndexFetcher interface {
		FetchIndex(ctx context.Context) (string, error)
	}

	// TagFetcher retrieves registry tags whose names match a prefix.
	TagFetcher interface {
		FetchTags(ctx context.Context, prefix string) ([]registry.Tag, error)
	}

	// Constraints are the caller's optional version filters. An empty field
	// means "latest": the dimension is pinned to its lexicographically
	// maximum value among the surviving candidates. A non-empty field keeps
	// candidates whose tag contains it as a substring, so a partial version
	// like "1.13" matches the more specific "1.13.1".
	Constraints struct {
		// Python is an interpreter ABI tag fragment, e.g. "cp310".
		Python string
		// Library is a library version fragment, e.g. "1.13.1".
		Library string
		// Accelerator is an accelerator tag fragment, e.g. "cu117" or "cpu".
		Accelerator string
	}

	// Resolver narrows the wheel index to a single artifact and resolves its
	// container base image. It holds no mutable state; concurrent Resolve
	// calls are independent.
	Resolver struct {
		index IndexFetcher
		tags  TagFetcher
		pkg   string
		os    string
		arch  string
	}

	// Option configures a Resolver during construction.
	Option func(*Resolver)
)

// WithPackage overrides the target package name.
func WithPackage(name string) Option {
	return func(r *Resolver) {
		r.pkg = name
	}
}

// WithPlatform overrides the host OS and architecture used by the platform
// filter, primarily for tests and cross-resolution.
func WithPlatform(os, arch string) Option {
	return func(r *Resolver) {
		r.os = os
		r.arch = arch
	}
}

// NewResolver creates a Resolver fetching from the given collaborators.
// The platform defaults to the running host, normalized to the index's
// vocabulary.
func NewResolver(index IndexFetcher, tags TagFetcher, opts ...Option) *Resolver {
	hostOS, hostArch := wheel.HostPlatform()
	r := &Resolver{
		index: index,
		tags:  tags,
		pkg:   defaultPackage,
		os:    hostOS,
		arch:  hostArch,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches the index listing and runs the filter pipeline. It returns
// the single best artifact, or a NoCandidatesError when the chain empties
// the candidate set.
func (r *Resolver) Resolve(ctx context.Context, c Constraints) (wheel.Artifact, error) {
	slog.Info("resolving versions",
		"python", orLatest(c.Python),
		"torch", orLatest(c.Library),
		"cuda", orLatest(c.Accelerator))

	doc, err := r.index.FetchIndex(ctx)
	if err != nil {
		return wheel.Artifact{}, fmt.Errorf("resolving versions: %w", err)
	}

	candidates := r.parseListing(doc)
	slog.Debug("parsed index listing", "candidates", len(candidates))

	candidates = filterPlatform(candidates, r.os, r.arch)
	slog.Debug("filtered by platform", "os", r.os, "arch", r.arch, "candidates", len(candidates))

	candidates = filterDimension(candidates, c.Python, func(a wheel.Artifact) string { return a.PythonTag })
	slog.Debug("filtered by python version", "candidates", len(candidates))

	candidates = filterDimension(candidates, c.Library, func(a wheel.Artifact) string { return a.Version })
	slog.Debug("filtered by torch version", "candidates", len(candidates))

	candidates = filterDimension(candidates, c.Accelerator, func(a wheel.Artifact) string { return a.Accelerator })
	slog.Debug("filtered by cuda version", "candidates", len(candidates))

	if len(candidates) == 0 {
		return wheel.Artifact{}, &NoCandidatesError{Constraints: c}
	}

	slices.SortFunc(candidates, func(a, b wheel.Artifact) int {
		return strings.Compare(a.Version, b.Version)
	})

	resolved := candidates[len(candidates)-1]
	slog.Info("resolved version",
		"python", resolved.PythonVersion(),
		"torch", resolved.Version,
		"cuda", resolved.AcceleratorVersion())
	return resolved, nil
}

// parseListing maps every listing line through the artifact parser and keeps
// records for the target package. Unparseable lines are expected noise and
// dropped silently.
func (r *Resolver) parseListing(doc string) []wheel.Artifact {
	var artifacts []wheel.Artifact
	for line := range strings.SplitSeq(doc, "\n") {
		artifact, ok := wheel.ParseLine(line)
		if !ok || artifact.Name != r.pkg {
			continue
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts
}

// filterPlatform keeps artifacts whose OS tag contains both the host OS and
// architecture. The tag encodes both in one token ("linux_x86_64"), so this
// is a conjunctive substring test, not equality.
func filterPlatform(artifacts []wheel.Artifact, os, arch string) []wheel.Artifact {
	var kept []wheel.Artifact
	for _, a := range artifacts {
		if strings.Contains(a.OS, os) && strings.Contains(a.OS, arch) {
			kept = append(kept, a)
		}
	}
	return kept
}

// filterDimension applies the shared per-dimension policy: keep candidates
// whose tag contains the constraint, or — when unconstrained — pin the
// dimension to its lexicographically maximum value so later stages operate
// on a value-homogeneous set. An empty input stays empty.
func filterDimension(artifacts []wheel.Artifact, constraint string, tag func(wheel.Artifact) string) []wheel.Artifact {
	if len(artifacts) == 0 {
		return artifacts
	}

	want := constraint
	if want == "" {
		want = tag(slices.MaxFunc(artifacts, func(a, b wheel.Artifact) int {
			return strings.Compare(tag(a), tag(b))
		}))
	}

	var kept []wheel.Artifact
	for _, a := range artifacts {
		if strings.Contains(tag(a), want) {
			kept = append(kept, a)
		}
	}
	return kept
}
