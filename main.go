// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/pipestore/pipectl/cmd/pipectl"

func main() {
	cmd.Execute()
}
