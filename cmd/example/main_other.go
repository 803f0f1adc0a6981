//go:build !windows

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "example: DXGI presentation requires Windows")
	os.Exit(1)
}
