// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	IndexFetchFailedId Id = iota + 1
	NoMatchingWheelId
	RegistryFetchFailedId
	NoBaseImageTagId
	ContainerEngineNotFoundId
	BaseImagePullFailedId
	ProvisionStepFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	indexFetchFailedIssue = &Issue{
		id: IndexFetchFailedId,
		mdMsg: `
# Failed to fetch the wheel index!

We could not download the torch wheel listing from the package index.

## Common causes:
- No network connectivity
- A proxy or firewall blocking the request
- The index endpoint being temporarily down

## Things you can try:
- Check your network connection
- Retry in a few minutes
- Point torchkiln at a mirror:
~~~
$ torchkiln build --index-url https://my-mirror.example/whl/torch_stable.html
~~~`,
		extLinks: []HttpLink{"https://download.pytorch.org/whl/torch_stable.html"},
	}

	noMatchingWheelIssue = &Issue{
		id: NoMatchingWheelId,
		mdMsg: `
# No matching torch wheel!

No wheel in the index satisfies your python/torch/cuda constraints on this
platform.

## Things you can try:
- Loosen a constraint (drop ` + "`--cuda`" + ` or ` + "`--python`" + ` to pick the latest)
- Check the combination actually exists:
~~~
$ torchkiln resolve --torch 1.13 --python 3.10
~~~

- Remember constraints match by substring, so ` + "`--torch 1.13`" + ` covers
  1.13.0 and 1.13.1`,
	}

	registryFetchFailedIssue = &Issue{
		id: RegistryFetchFailedId,
		mdMsg: `
# Failed to query Docker Hub!

We could not list the nvidia/cuda image tags from the registry.

## Things you can try:
- Check your network connection
- Check Docker Hub status
- Retry in a few minutes`,
		extLinks: []HttpLink{"https://hub.docker.com/r/nvidia/cuda/tags"},
	}

	noBaseImageTagIssue = &Issue{
		id: NoBaseImageTagId,
		mdMsg: `
# No matching CUDA base image!

The resolved wheel needs a CUDA toolkit version that has no matching
` + "`nvidia/cuda`" + ` devel image on Ubuntu.

## Things you can try:
- Pick a different cuda constraint:
~~~
$ torchkiln build --cuda 11.8
~~~

- Build a CPU-only image instead:
~~~
$ torchkiln build --cuda cpu
~~~`,
		extLinks: []HttpLink{"https://hub.docker.com/r/nvidia/cuda/tags"},
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

torchkiln needs Docker or Podman to build the image, but neither is available.

## Things you can try:
- Install Podman:
  - Linux: ` + "`sudo apt install podman`" + ` or ` + "`sudo dnf install podman`" + `
  - macOS: ` + "`brew install podman`" + `

- Install Docker:
  - https://docs.docker.com/get-docker/

- Make sure the engine daemon is running:
~~~
$ docker version
~~~

- Configure your preferred engine in ~/.config/torchkiln/config.cue:
~~~cue
container_engine: "podman"  // or "docker"
~~~`,
	}

	baseImagePullFailedIssue = &Issue{
		id: BaseImagePullFailedId,
		mdMsg: `
# Failed to pull the base image!

The container engine could not pull the resolved base image, even after
retrying.

## Common causes:
- No network connectivity
- Docker Hub rate limiting
- Not enough disk space for the image

## Things you can try:
- Check your network connection and disk space
- Authenticate to Docker Hub to raise the pull rate limit:
~~~
$ docker login
~~~

- Retry in a few minutes`,
	}

	provisionStepFailedIssue = &Issue{
		id: ProvisionStepFailedId,
		mdMsg: `
# Provisioning step failed!

A setup script exited with a non-zero status inside the build container.

## Things you can try:
- Re-run with verbose mode to see the full step output:
~~~
$ torchkiln --verbose build ...
~~~

- Keep the build container around and inspect it:
~~~
$ torchkiln build --keep-container ...
$ docker exec -it torchkiln-build bash
~~~

- Check the step output above for the failing command`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the torchkiln configuration file.

## Configuration file locations:
- Linux: ~/.config/torchkiln/config.cue
- macOS: ~/Library/Application Support/torchkiln/config.cue
- Windows: %APPDATA%\torchkiln\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ torchkiln config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/torchkiln/config.cue
~~~

## Example configuration:
~~~cue
container_engine: "docker"

build: {
  keep_container:    false
  remove_base_image: true
}

ui: {
  verbose: false
}
~~~`,
	}

	issues = map[Id]*Issue{
		indexFetchFailedIssue.Id():        indexFetchFailedIssue,
		noMatchingWheelIssue.Id():         noMatchingWheelIssue,
		registryFetchFailedIssue.Id():     registryFetchFailedIssue,
		noBaseImageTagIssue.Id():          noBaseImageTagIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		baseImagePullFailedIssue.Id():     baseImagePullFailedIssue,
		provisionStepFailedIssue.Id():     provisionStepFailedIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
