// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"torchkiln-cli/internal/wheel"
)

// aptPackages are the build dependencies pyenv needs to compile Python from
// source, plus git for pip VCS installs.
const aptPackages = "curl build-essential libffi-dev libssl-dev zlib1g-dev " +
	"liblzma-dev libbz2-dev libreadline-dev libsqlite3-dev tk-dev git"

// Step is one named shell provisioning command run inside the build
// container.
type Step struct {
	// Name is a short human-readable label used in logs and errors.
	Name string
	// Script is the bash command line executed via `bash -c`.
	Script string
}

// Steps returns the ordered provisioning commands for the given artifact.
// channelURL is the wheel channel base (without the accelerator directory);
// pip resolves the accelerator-specific wheel from
// <channelURL>/<accelerator>.
func Steps(artifact wheel.Artifact, channelURL string) []Step {
	python := artifact.PythonVersion()
	channel := strings.TrimRight(channelURL, "/") + "/" + artifact.Accelerator

	return []Step{
		{
			Name:   "install build dependencies",
			Script: "apt-get update && apt-get install -y " + aptPackages,
		},
		{
			Name:   "install pyenv",
			Script: `curl https://pyenv.run | bash && echo 'export PATH="$HOME/.pyenv/bin:$PATH"' >> ~/.bashrc`,
		},
		{
			Name:   "install python",
			Script: fmt.Sprintf("~/.pyenv/bin/pyenv install %s && ~/.pyenv/bin/pyenv global %s", python, python),
		},
		{
			Name:   "install torch",
			Script: fmt.Sprintf("~/.pyenv/shims/pip install torch==%s -f %s", artifact.Version, channel),
		},
	}
}

// ValidateSteps parses every step script with a shell parser so a malformed
// step is caught before any container work starts.
func ValidateSteps(steps []Step) error {
	parser := syntax.NewParser()
	for _, step := range steps {
		if _, err := parser.Parse(strings.NewReader(step.Script), step.Name); err != nil {
			return fmt.Errorf("step %q: script syntax error: %w", step.Name, err)
		}
	}
	return nil
}
