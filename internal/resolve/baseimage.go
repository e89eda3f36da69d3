// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"torchkiln-cli/internal/wheel"
)

const (
	// cpuBaseImage is the fixed base image for CPU-only builds. No registry
	// lookup is needed.
	cpuBaseImage = "ubuntu:22.04"

	// cudaImageRepo prefixes resolved CUDA tags to form a pullable reference.
	cudaImageRepo = "nvidia/cuda"

	// Development base images carry both markers in their tag name.
	// Runtime-only images lack the toolchain the provisioning steps need.
	ubuntuMarker = "ubuntu"
	develMarker  = "devel"
)

// ResolveBaseImage maps a resolved artifact to a container base image
// reference. CPU-only artifacts use a fixed Ubuntu image; CUDA artifacts are
// matched against registry tags starting with the accelerator's dotted
// version, restricted to Ubuntu devel images, taking the lexicographically
// maximum tag. A NoImageTagError is returned when nothing survives.
func (r *Resolver) ResolveBaseImage(ctx context.Context, artifact wheel.Artifact) (string, error) {
	if artifact.Accelerator == wheel.AcceleratorCPU {
		return cpuBaseImage, nil
	}

	version := artifact.AcceleratorVersion()
	slog.Info("resolving base image", "cuda", version)

	tags, err := r.tags.FetchTags(ctx, version)
	if err != nil {
		return "", fmt.Errorf("resolving base image: %w", err)
	}
	slog.Debug("fetched registry tags", "tags", len(tags))

	best := ""
	matched := 0
	for _, tag := range tags {
		if !strings.HasPrefix(tag.Name, version) ||
			!strings.Contains(tag.Name, ubuntuMarker) ||
			!strings.Contains(tag.Name, develMarker) {
			continue
		}
		matched++
		if tag.Name > best {
			best = tag.Name
		}
	}
	slog.Debug("filtered registry tags", "cuda", version, "tags", matched)

	if best == "" {
		return "", &NoImageTagError{AcceleratorVersion: version}
	}

	return cudaImageRepo + ":" + best, nil
}
