// SPDX-License-Identifier: MPL-2.0

// Package container abstracts the container runtimes (Docker/Podman) that
// carry out the image build pipeline. Engines shell out to the runtime CLI;
// argument building and command execution are centralized in BaseCLIEngine
// so Docker and Podman share all common plumbing.
package container
