//go:build linux && cufile
// +build linux,cufile

package main

import (
	"fmt"
	"os"
)

// The self-check drives the compat engine's device-memory arena;
// under the cufile tag allocation belongs to the CUDA layer.
func main() {
	fmt.Fprintln(os.Stderr, "gdscheck exercises the built-in compat engine; rebuild without the cufile tag")
	os.Exit(1)
}
