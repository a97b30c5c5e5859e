// internal/ui/notifier.go

package ui

import (
	"fmt"
	"io"
	"os"
)

// ConsoleNotifier wypisuje zdarzenia połączeń na konsolę operatora,
// kolorując je według klasy komunikatu.
type ConsoleNotifier struct {
	out io.Writer
}

// NewConsoleNotifier tworzy notifier piszący na stdout.
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{out: os.Stdout}
}

// NewConsoleNotifierTo tworzy notifier piszący do wskazanego strumienia.
func NewConsoleNotifierTo(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

func (n *ConsoleNotifier) Info(format string, args ...interface{}) {
	fmt.Fprintln(n.out, InfoStyle.Render(fmt.Sprintf(format, args...)))
}

func (n *ConsoleNotifier) Attempt(format string, args ...interface{}) {
	fmt.Fprintln(n.out, AttemptStyle.Render(fmt.Sprintf(format, args...)))
}

func (n *ConsoleNotifier) Success(format string, args ...interface{}) {
	fmt.Fprintln(n.out, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func (n *ConsoleNotifier) Warning(format string, args ...interface{}) {
	fmt.Fprintln(n.out, WarningStyle.Render(fmt.Sprintf(format, args...)))
}

func (n *ConsoleNotifier) Error(format string, args ...interface{}) {
	fmt.Fprintln(n.out, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}
