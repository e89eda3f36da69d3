// SPDX-License-Identifier: MPL-2.0

package wheel

import "testing"

func TestParseLine_CPUWheel(t *testing.T) {
	t.Parallel()

	line := `<a href="cpu/torch-1.13.1-cp310-cp310-linux_x86_64.whl">torch-1.13.1</a>`
	got, ok := ParseLine(line)
	if !ok {
		t.Fatal("expected line to parse")
	}

	want := Artifact{
		Name:        "torch",
		Version:     "1.13.1",
		PythonTag:   "cp310",
		OS:          "linux_x86_64",
		Accelerator: "cpu",
		Href:        "cpu/torch-1.13.1-cp310-cp310-linux_x86_64.whl",
	}
	if got != want {
		t.Errorf("ParseLine() = %+v, want %+v", got, want)
	}
}

func TestParseLine_CUDAWheelWithLocalVersion(t *testing.T) {
	t.Parallel()

	line := `<a href="cu117/torch-1.13.1%2Bcu117-cp39-cp39-manylinux1_x86_64.whl">link</a>`
	got, ok := ParseLine(line)
	if !ok {
		t.Fatal("expected line to parse")
	}

	if got.Version != "1.13.1" {
		t.Errorf("Version = %q, want %q (local build metadata must be stripped)", got.Version, "1.13.1")
	}
	if got.Accelerator != "cu117" {
		t.Errorf("Accelerator = %q, want %q", got.Accelerator, "cu117")
	}
	if got.OS != "linux1_x86_64" {
		t.Errorf("OS = %q, want %q", got.OS, "linux1_x86_64")
	}
}

func TestParseLine_CudnnVariantFoldsIntoPlainTag(t *testing.T) {
	t.Parallel()

	line := `<a href="cu117_pypi_cudnn/torch-2.0.0%2Bcu117.with.pypi.cudnn-cp310-cp310-linux_x86_64.whl">x</a>`
	got, ok := ParseLine(line)
	if !ok {
		t.Fatal("expected line to parse")
	}
	if got.Accelerator != "cu117" {
		t.Errorf("Accelerator = %q, want %q", got.Accelerator, "cu117")
	}
}

func TestParseLine_PlatformNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want string
	}{
		{"windows", `<a href="cpu/torch-2.0.0-cp311-cp311-win_amd64.whl">x</a>`, "windows_x86_64"},
		{"macos arm", `<a href="cpu/torch-2.0.0-cp311-none-macosx_11_0_arm64.whl">x</a>`, "macos_11_0_aarch64"},
		{"manylinux", `<a href="cpu/torch-2.0.0-cp311-cp311-manylinux2014_aarch64.whl">x</a>`, "linux2014_aarch64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseLine(tt.line)
			if !ok {
				t.Fatal("expected line to parse")
			}
			if got.OS != tt.want {
				t.Errorf("OS = %q, want %q", got.OS, tt.want)
			}
		})
	}
}

func TestParseLine_RejectsMalformedLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"no quotes", "<br/>"},
		{"one quote", `<a href="`},
		{"wrong prefix", `<a href="gpu/torch-1.13.1-cp310-cp310-linux_x86_64.whl">x</a>`},
		{"rocm prefix", `<a href="rocm5.2/torch-1.13.1-cp310-cp310-linux_x86_64.whl">x</a>`},
		{"no slash", `<a href="cpu_torch-1.13.1-cp310-cp310-linux_x86_64.whl">x</a>`},
		{"too few dash fields", `<a href="cpu/torch-1.13.1-cp310.whl">x</a>`},
		{"bare directory", `<a href="cpu/">x</a>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got, ok := ParseLine(tt.line); ok {
				t.Errorf("ParseLine(%q) = %+v, want rejection", tt.line, got)
			}
		})
	}
}

func TestParseLine_Deterministic(t *testing.T) {
	t.Parallel()

	line := `<a href="cu118/torch-2.0.1%2Bcu118-cp310-cp310-linux_x86_64.whl">x</a>`
	first, ok := ParseLine(line)
	if !ok {
		t.Fatal("expected line to parse")
	}
	second, _ := ParseLine(line)
	if first != second {
		t.Errorf("ParseLine not deterministic: %+v != %+v", first, second)
	}
}

func TestPythonVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  string
		want string
	}{
		{"cp39", "3.9"},
		{"cp310", "3.10"},
		{"cp27", "2.7"},
	}

	for _, tt := range tests {
		a := Artifact{PythonTag: tt.tag}
		if got := a.PythonVersion(); got != tt.want {
			t.Errorf("PythonVersion(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestAcceleratorVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  string
		want string
	}{
		{"cu117", "11.7"},
		{"cu118", "11.8"},
		{"cu1110", "11.10"},
		{"cpu", "cpu"},
	}

	for _, tt := range tests {
		a := Artifact{Accelerator: tt.tag}
		if got := a.AcceleratorVersion(); got != tt.want {
			t.Errorf("AcceleratorVersion(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestPythonTagFromVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"3.10", "cp310"},
		{"3.9", "cp39"},
		{"cp310", "cp310"},
	}

	for _, tt := range tests {
		if got := PythonTagFromVersion(tt.in); got != tt.want {
			t.Errorf("PythonTagFromVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAcceleratorTagFromVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"11.7", "cu117"},
		{"11.8", "cu118"},
		{"cpu", "cpu"},
		{"cu117", "cu117"},
	}

	for _, tt := range tests {
		if got := AcceleratorTagFromVersion(tt.in); got != tt.want {
			t.Errorf("AcceleratorTagFromVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHostPlatform_UsesIndexVocabulary(t *testing.T) {
	t.Parallel()

	os, arch := HostPlatform()
	if os == "darwin" {
		t.Errorf("HostPlatform os = %q, want index vocabulary (macos)", os)
	}
	if arch == "amd64" || arch == "arm64" {
		t.Errorf("HostPlatform arch = %q, want index vocabulary (x86_64/aarch64)", arch)
	}
}
