// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"strings"
	"testing"

	"torchkiln-cli/internal/wheel"
)

func testArtifact() wheel.Artifact {
	return wheel.Artifact{
		Name:        "torch",
		Version:     "1.13.1",
		PythonTag:   "cp310",
		OS:          "linux_x86_64",
		Accelerator: "cu117",
	}
}

func TestSteps_OrderAndContent(t *testing.T) {
	t.Parallel()

	steps := Steps(testArtifact(), "https://download.pytorch.org/whl")
	if len(steps) != 4 {
		t.Fatalf("got %d steps, want 4", len(steps))
	}

	wantOrder := []string{
		"install build dependencies",
		"install pyenv",
		"install python",
		"install torch",
	}
	for i, want := range wantOrder {
		if steps[i].Name != want {
			t.Errorf("steps[%d].Name = %q, want %q", i, steps[i].Name, want)
		}
	}

	if !strings.Contains(steps[2].Script, "pyenv install 3.10") {
		t.Errorf("python step = %q, want pyenv install 3.10", steps[2].Script)
	}
	if !strings.Contains(steps[3].Script, "torch==1.13.1") {
		t.Errorf("torch step = %q, want torch==1.13.1", steps[3].Script)
	}
	if !strings.Contains(steps[3].Script, "-f https://download.pytorch.org/whl/cu117") {
		t.Errorf("torch step = %q, want accelerator channel URL", steps[3].Script)
	}
}

func TestSteps_CPUArtifactUsesCPUChannel(t *testing.T) {
	t.Parallel()

	artifact := testArtifact()
	artifact.Accelerator = "cpu"

	steps := Steps(artifact, "https://download.pytorch.org/whl/")
	if !strings.Contains(steps[3].Script, "https://download.pytorch.org/whl/cpu") {
		t.Errorf("torch step = %q, want cpu channel", steps[3].Script)
	}
}

func TestValidateSteps_AcceptsGeneratedSteps(t *testing.T) {
	t.Parallel()

	if err := ValidateSteps(Steps(testArtifact(), "https://download.pytorch.org/whl")); err != nil {
		t.Errorf("generated steps failed validation: %v", err)
	}
}

func TestValidateSteps_RejectsBrokenScript(t *testing.T) {
	t.Parallel()

	err := ValidateSteps([]Step{{Name: "broken", Script: "if [ missing; then"}})
	if err == nil {
		t.Fatal("expected error for unparseable script")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error = %v, want step name in message", err)
	}
}
