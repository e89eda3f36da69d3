// SPDX-License-Identifier: MPL-2.0

package wheel

import (
	"runtime"
	"strings"
)

const (
	// AcceleratorCPU is the accelerator tag for CPU-only wheels.
	AcceleratorCPU = "cpu"

	// acceleratorPrefix marks CUDA wheel directories (e.g. "cu117").
	acceleratorPrefix = "cu"

	// cudnnSuffix is the vendor suffix on cuDNN-specific wheel directories.
	// Stripping it folds those wheels into the same accelerator tag as their
	// plain counterparts.
	cudnnSuffix = "_pypi_cudnn"

	// localVersionSep is the URL-escaped "+" separating the wheel version
	// from its local build metadata (e.g. "1.13.1%2Bcu117").
	localVersionSep = "%2B"
)

// Artifact is one wheel entry parsed from the index listing. It is an
// immutable value; all fields are set at parse time.
type Artifact struct {
	// Name is the package name, e.g. "torch".
	Name string
	// Version is the library version with local build metadata stripped,
	// e.g. "1.13.1".
	Version string
	// PythonTag is the interpreter ABI tag, e.g. "cp310".
	PythonTag string
	// OS is the normalized platform tag, e.g. "linux_x86_64".
	OS string
	// Accelerator is the accelerator runtime tag, e.g. "cu117", or
	// AcceleratorCPU for CPU-only wheels.
	Accelerator string
	// Href is the original relative link, retained for diagnostics.
	Href string
}

// ParseLine extracts an Artifact from one line of the index listing.
// The second return value is false for lines that do not describe a wheel
// under an accepted accelerator directory; such lines are routine noise in
// the listing, not errors.
func ParseLine(line string) (Artifact, bool) {
	parts := strings.Split(line, `"`)
	if len(parts) < 2 {
		return Artifact{}, false
	}
	href := parts[1]

	if !strings.HasPrefix(href, AcceleratorCPU) && !strings.HasPrefix(href, acceleratorPrefix) {
		return Artifact{}, false
	}

	segments := strings.Split(href, "/")
	if len(segments) < 2 {
		return Artifact{}, false
	}
	accelerator := strings.ReplaceAll(segments[0], cudnnSuffix, "")

	fields := strings.Split(segments[1], "-")
	if len(fields) < 5 {
		return Artifact{}, false
	}

	version, _, _ := strings.Cut(fields[1], localVersionSep)

	return Artifact{
		Name:        fields[0],
		Version:     version,
		PythonTag:   fields[2],
		OS:          normalizePlatform(fields[4]),
		Accelerator: accelerator,
		Href:        href,
	}, true
}

// normalizePlatform maps raw wheel filename platform tokens to the canonical
// OS and architecture vocabulary used for host matching. The replacements are
// cumulative substring substitutions; the ".whl" suffix is dropped last.
func normalizePlatform(platform string) string {
	platform = strings.ReplaceAll(platform, "win", "windows")
	platform = strings.ReplaceAll(platform, "macosx", "macos")
	platform = strings.ReplaceAll(platform, "manylinux", "linux")
	platform = strings.ReplaceAll(platform, "amd64", "x86_64")
	platform = strings.ReplaceAll(platform, "arm64", "aarch64")
	platform = strings.ReplaceAll(platform, ".whl", "")
	return platform
}

// PythonVersion returns the dotted interpreter version encoded in the cp tag:
// a single-digit major followed by the minor ("cp310" -> "3.10"). The slicing
// is fixed-width on purpose; the tag format is not self-describing and the
// index has never used a multi-digit major.
func (a Artifact) PythonVersion() string {
	v := strings.ReplaceAll(a.PythonTag, "cp", "")
	if len(v) < 2 {
		return v
	}
	return v[:1] + "." + v[1:]
}

// AcceleratorVersion returns the dotted CUDA version encoded in the cu tag:
// a two-digit major followed by the minor ("cu117" -> "11.7"). CPU-only
// artifacts return AcceleratorCPU. Like PythonVersion, the slicing assumes
// the index's current fixed-width tag convention.
func (a Artifact) AcceleratorVersion() string {
	if a.Accelerator == AcceleratorCPU {
		return AcceleratorCPU
	}
	v := strings.ReplaceAll(a.Accelerator, acceleratorPrefix, "")
	if len(v) < 3 {
		return v
	}
	return v[:2] + "." + v[2:]
}

// PythonTagFromVersion converts a user-supplied dotted interpreter version
// into the index's cp tag form ("3.10" -> "cp310"). Inputs without a dot are
// assumed to already be tags and pass through unchanged.
func PythonTagFromVersion(version string) string {
	major, minor, ok := strings.Cut(version, ".")
	if !ok {
		return version
	}
	return "cp" + major + minor
}

// AcceleratorTagFromVersion converts a user-supplied dotted CUDA version into
// the index's cu tag form ("11.7" -> "cu117"). "cpu" and inputs without a dot
// pass through unchanged.
func AcceleratorTagFromVersion(version string) string {
	if version == AcceleratorCPU {
		return AcceleratorCPU
	}
	major, minor, ok := strings.Cut(version, ".")
	if !ok {
		return version
	}
	return acceleratorPrefix + major + minor
}

// HostPlatform returns the running OS and architecture in the vocabulary the
// normalized artifact OS tags use ("linux"/"macos"/"windows" and
// "x86_64"/"aarch64").
func HostPlatform() (os, arch string) {
	os = runtime.GOOS
	if os == "darwin" {
		os = "macos"
	}
	switch runtime.GOARCH {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	default:
		arch = runtime.GOARCH
	}
	return os, arch
}
