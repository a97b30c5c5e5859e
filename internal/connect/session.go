// internal/connect/session.go

package connect

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ziutek/telnet"
	"golang.org/x/crypto/ssh"
)

// Session reprezentuje aktywną sesję z urządzeniem, niezależnie od protokołu.
// Read zwraca dane wysyłane przez urządzenie, Write przekazuje dane operatora.
// Done jest zamykany gdy zdalna strona zakończy sesję. Close jest idempotentny
// i gwarantuje jednokrotne zamknięcie połączenia.
type Session interface {
	Start(width, height int) error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Done() <-chan struct{}
	Close() error
}

// SSHSession reprezentuje aktywną sesję SSH
type SSHSession struct {
	client    *ssh.Client
	session   *ssh.Session
	stdin     io.WriteCloser
	stdout    *io.PipeReader
	done      chan struct{}
	keepAlive time.Duration
	waitErr   error
	closeOnce sync.Once
	closeErr  error
	mu        sync.Mutex
}

// NewSSHSession tworzy sesję na nawiązanym połączeniu SSH.
// Kanał interaktywny jest otwierany dopiero w Start.
func NewSSHSession(client *ssh.Client) *SSHSession {
	return &SSHSession{
		client:    client,
		done:      make(chan struct{}),
		keepAlive: 30 * time.Second,
	}
}

// Start otwiera kanał powłoki interaktywnej z pseudoterminalem
// o podanym rozmiarze.
func (s *SSHSession) Start(width, height int) error {
	session, err := s.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
		ssh.VINTR:         3,  // Ctrl+C
		ssh.VQUIT:         28, // Ctrl+\
		ssh.VERASE:        127,
		ssh.VKILL:         21, // Ctrl+U
		ssh.VEOF:          4,  // Ctrl+D
		ssh.VWERASE:       23, // Ctrl+W
		ssh.VLNEXT:        22, // Ctrl+V
		ssh.VSUSP:         26, // Ctrl+Z
	}

	if err := session.RequestPty("xterm-256color", height, width, modes); err != nil {
		session.Close()
		return fmt.Errorf("failed to request PTY: %w", err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return fmt.Errorf("failed to open stdin pipe: %w", err)
	}

	// Przy aktywnym PTY zdalna powłoka i tak scala strumienie,
	// więc stdout i stderr trafiają do jednego pipe'a.
	pr, pw := io.Pipe()
	session.Stdout = pw
	session.Stderr = pw

	if err := session.Shell(); err != nil {
		session.Close()
		return fmt.Errorf("failed to start shell: %w", err)
	}

	s.mu.Lock()
	s.session = session
	s.stdin = stdin
	s.stdout = pr
	s.mu.Unlock()

	// Wait kończy się gdy zdalna strona zgłosi status wyjścia
	// lub kanał zostanie zerwany.
	go func() {
		err := session.Wait()
		s.mu.Lock()
		s.waitErr = err
		s.mu.Unlock()
		pw.Close()
		close(s.done)
	}()

	if s.keepAlive > 0 {
		go s.keepAliveLoop()
	}

	return nil
}

// keepAliveLoop wysyła pakiety keepalive
func (s *SSHSession) keepAliveLoop() {
	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, _, err := s.client.SendRequest("keepalive@openssh.com", true, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *SSHSession) Read(p []byte) (int, error) {
	s.mu.Lock()
	r := s.stdout
	s.mu.Unlock()
	if r == nil {
		return 0, fmt.Errorf("session not started")
	}
	return r.Read(p)
}

func (s *SSHSession) Write(p []byte) (int, error) {
	s.mu.Lock()
	w := s.stdin
	s.mu.Unlock()
	if w == nil {
		return 0, fmt.Errorf("session not started")
	}
	return w.Write(p)
}

func (s *SSHSession) Done() <-chan struct{} {
	return s.done
}

// ExitError zwraca błąd zakończenia zdalnej powłoki, jeśli wystąpił.
func (s *SSHSession) ExitError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitErr
}

// Client zwraca natywnego klienta SSH (wykorzystywane przez transfer plików).
func (s *SSHSession) Client() *ssh.Client {
	return s.client
}

// Close zamyka sesję i połączenie dokładnie jeden raz.
func (s *SSHSession) Close() error {
	s.closeOnce.Do(func() {
		var errs []string

		s.mu.Lock()
		session := s.session
		stdout := s.stdout
		s.mu.Unlock()

		if session != nil {
			if err := session.Close(); err != nil && err != io.EOF {
				errs = append(errs, fmt.Sprintf("session close error: %v", err))
			}
		}
		if stdout != nil {
			stdout.Close()
		}
		if s.client != nil {
			if err := s.client.Close(); err != nil {
				errs = append(errs, fmt.Sprintf("client close error: %v", err))
			}
		}

		// Gdy Start nigdy się nie wykonał, done zamyka dopiero Close.
		select {
		case <-s.done:
		default:
			if session == nil {
				close(s.done)
			}
		}

		if len(errs) > 0 {
			s.closeErr = fmt.Errorf("close errors: %s", strings.Join(errs, "; "))
		}
	})
	return s.closeErr
}

// TelnetSession reprezentuje aktywną sesję Telnet
type TelnetSession struct {
	conn      *telnet.Conn
	done      chan struct{}
	doneOnce  sync.Once
	closeOnce sync.Once
	closeErr  error
}

// NewTelnetSession opakowuje nawiązane połączenie Telnet.
func NewTelnetSession(conn *telnet.Conn) *TelnetSession {
	return &TelnetSession{
		conn: conn,
		done: make(chan struct{}),
	}
}

// Start nie wymaga przygotowania - Telnet nie negocjuje kanału powłoki.
func (t *TelnetSession) Start(width, height int) error {
	return nil
}

func (t *TelnetSession) Read(p []byte) (int, error) {
	n, err := t.conn.Read(p)
	if err == io.EOF {
		t.signalDone()
	}
	return n, err
}

func (t *TelnetSession) Write(p []byte) (int, error) {
	return t.conn.Write(p)
}

func (t *TelnetSession) Done() <-chan struct{} {
	return t.done
}

func (t *TelnetSession) signalDone() {
	t.doneOnce.Do(func() {
		close(t.done)
	})
}

// Close zamyka połączenie dokładnie jeden raz.
func (t *TelnetSession) Close() error {
	t.closeOnce.Do(func() {
		if err := t.conn.Close(); err != nil {
			t.closeErr = fmt.Errorf("telnet close error: %w", err)
		}
		t.signalDone()
	})
	return t.closeErr
}
