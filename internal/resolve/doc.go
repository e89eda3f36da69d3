// SPDX-License-Identifier: MPL-2.0

// Package resolve narrows the wheel index down to a single compatible
// (Python, PyTorch, CUDA) triple and maps it to a container base image.
//
// Resolution is a pure pipeline over immutable candidate slices: platform
// filter, then one filter per version dimension. A constrained dimension
// keeps candidates whose tag contains the constraint; an unconstrained
// dimension pins the lexicographically latest tag value before the next
// stage runs. Ordering is plain string comparison throughout — the index's
// tag formats are not guaranteed to sort semantically, and changing the
// policy would change which version wins.
package resolve
