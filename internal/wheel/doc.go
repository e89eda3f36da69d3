// SPDX-License-Identifier: MPL-2.0

// Package wheel parses PyTorch wheel index listing lines into structured
// artifact records and normalizes platform and version tags.
package wheel
