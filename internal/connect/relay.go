// internal/connect/relay.go

package connect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"jess/internal/models"
)

// resizableSession pozwala pętli przekazywać zmiany rozmiaru terminala.
// Implementuje ją sesja SSH; Telnet nie ma kanału negocjacji rozmiaru.
type resizableSession interface {
	Resize(width, height int) error
}

// exitStatusSession udostępnia status zakończenia zdalnej powłoki.
type exitStatusSession interface {
	ExitError() error
}

// Resize przekazuje nowy rozmiar terminala do zdalnego pseudoterminala.
func (s *SSHSession) Resize(width, height int) error {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == nil {
		return fmt.Errorf("session not started")
	}
	return session.WindowChange(height, width)
}

// TransferToSession przekazuje sterowanie aktywnej sesji: przekierowuje
// klawiaturę operatora do urządzenia i wyjście urządzenia na ekran, aż do
// zakończenia sesji. Sesja jest zamykana dokładnie raz na każdej ścieżce
// wyjścia, także po błędzie lub przerwaniu.
func (m *Manager) TransferToSession(session Session, protocol string) error {
	switch protocol {
	case models.ProtocolSSHModern, models.ProtocolSSHLegacy:
		m.notifier.Info("Entering SSH session. Type 'exit' to close the connection.")
	case models.ProtocolTelnet:
		m.notifier.Info("Entering Telnet session. Type 'exit' to close the connection.")
	default:
		m.notifier.Error("Unknown protocol '%s' - cannot transfer to session", protocol)
		return fmt.Errorf("unknown protocol %q: cannot transfer to session", protocol)
	}

	defer func() {
		if err := session.Close(); err != nil {
			m.notifier.Warning("Error closing session: %v", err)
		}
	}()

	if err := m.relay(session); err != nil {
		m.notifier.Error("Error in %s session: %v", protocol, err)
		return err
	}

	// Status wyjścia zdalnej powłoki trafia tylko do diagnostyki.
	if s, ok := session.(exitStatusSession); ok {
		if err := s.ExitError(); err != nil {
			m.log.Debugf("remote shell exited with error: %v", err)
		}
	}
	return nil
}

// relay uruchamia pętlę interaktywną na wystartowanej sesji.
func (m *Manager) relay(session Session) error {
	width, height := 80, 24
	stdinFd := int(os.Stdin.Fd())
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}
	}

	if err := session.Start(width, height); err != nil {
		return err
	}

	// Tryb raw na czas sesji; stan terminala wraca na każdej ścieżce wyjścia.
	if term.IsTerminal(stdinFd) {
		oldState, err := term.MakeRaw(stdinFd)
		if err != nil {
			return fmt.Errorf("failed to set raw terminal: %w", err)
		}
		defer func() {
			if err := term.Restore(stdinFd, oldState); err != nil {
				fmt.Fprintf(os.Stderr, "failed to restore terminal state: %v\n", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, append([]os.Signal{syscall.SIGINT, syscall.SIGTERM}, resizeSignals()...)...)
	defer signal.Stop(sigChan)

	// Dwie pompy danych; żaden kierunek nie blokuje drugiego, a pętla
	// czeka wyłącznie na kanałach, nigdy na pojedynczym strumieniu.
	outErr := make(chan error, 1)
	inErr := make(chan error, 1)
	go func() {
		_, err := io.Copy(os.Stdout, session)
		outErr <- err
	}()
	go func() {
		_, err := io.Copy(session, os.Stdin)
		inErr <- err
	}()

	for {
		select {
		case <-session.Done():
			// Zdalna strona zgłosiła koniec sesji.
			return nil

		case err := <-outErr:
			if err != nil && !isClosedStream(err) {
				return fmt.Errorf("session read error: %w", err)
			}
			// Wyjście urządzenia się skończyło - sesja dobiegła końca.
			return nil

		case err := <-inErr:
			if err != nil && !isClosedStream(err) {
				return fmt.Errorf("session write error: %w", err)
			}
			// Lokalne stdin się skończyło; czekamy na zakończenie po
			// stronie urządzenia.
			inErr = nil

		case sig := <-sigChan:
			if isResizeSignal(sig) {
				if rs, ok := session.(resizableSession); ok {
					if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
						if err := rs.Resize(w, h); err != nil {
							m.log.Debugf("failed to update window size: %v", err)
						}
					}
				}
				continue
			}
			// Przerwanie: wyjście przez defer gwarantuje zamknięcie sesji.
			return nil
		}
	}
}

// isClosedStream rozpoznaje błędy oznaczające zwyczajne zamknięcie strumienia.
func isClosedStream(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed)
}
