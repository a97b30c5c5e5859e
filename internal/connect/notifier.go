// internal/connect/notifier.go

package connect

// Notifier odbiera zdarzenia widoczne dla operatora: próby połączenia,
// sukcesy, ostrzeżenia i błędy. Prezentacja (kolory, format) należy do
// implementacji - pakiet connect nigdy nie pisze bezpośrednio na konsolę.
type Notifier interface {
	Info(format string, args ...interface{})
	Attempt(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// NopNotifier pomija wszystkie zdarzenia. Przydatny w testach
// i jako wartość domyślna.
type NopNotifier struct{}

func (NopNotifier) Info(string, ...interface{})    {}
func (NopNotifier) Attempt(string, ...interface{}) {}
func (NopNotifier) Success(string, ...interface{}) {}
func (NopNotifier) Warning(string, ...interface{}) {}
func (NopNotifier) Error(string, ...interface{})   {}
