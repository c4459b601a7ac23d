// Command viewer runs the remote-driven 2D or 3D geometry viewer and a small client for it.
package main

import (
	"os"
	"runtime"
)

func init() {
	// GLFW and the surface must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		newPrinter(os.Stderr).failure(err)
		os.Exit(1)
	}
}
