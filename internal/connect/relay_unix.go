// internal/connect/relay_unix.go
//go:build !windows
// +build !windows

package connect

import (
	"os"
	"syscall"
)

// resizeSignals zwraca sygnały zmiany rozmiaru terminala.
func resizeSignals() []os.Signal {
	return []os.Signal{syscall.SIGWINCH}
}

func isResizeSignal(sig os.Signal) bool {
	return sig == syscall.SIGWINCH
}
