// SPDX-License-Identifier: MPL-2.0

// torchkiln resolves PyTorch version constraints and bakes ready-to-use
// container images.
package main

import cmd "torchkiln-cli/cmd/torchkiln"

func main() {
	cmd.Execute()
}
