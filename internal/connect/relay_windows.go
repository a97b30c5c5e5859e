// internal/connect/relay_windows.go
//go:build windows
// +build windows

package connect

import "os"

// Windows nie dostarcza SIGWINCH - rozmiar terminala nie jest śledzony.
func resizeSignals() []os.Signal {
	return nil
}

func isResizeSignal(os.Signal) bool {
	return false
}
