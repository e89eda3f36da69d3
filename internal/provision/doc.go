// SPDX-License-Identifier: MPL-2.0

// Package provision turns a resolved version triple into a committed
// container image: pull the base image, run the provisioning steps inside a
// build container, commit the result, and clean up.
package provision
