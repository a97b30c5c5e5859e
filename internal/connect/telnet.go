// internal/connect/telnet.go

package connect

import (
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ziutek/telnet"
)

// shellProbeTimeout to krótkie okno na odpowiedź powłoki po zalogowaniu.
const shellProbeTimeout = time.Second

// TelnetHandler obsługuje połączenia Telnet ze skryptowanym logowaniem.
//
// Logowanie jest heurystyczne: Telnet nie ma strukturalnego sygnału błędu
// uwierzytelniania, więc sekwencja zakończona bez błędu transportowego jest
// raportowana jako sukces. Końcowe sprawdzenie znaku zachęty jest wyłącznie
// poglądowe.
type TelnetHandler struct {
	timeout  time.Duration
	notifier Notifier
	log      *logrus.Entry

	// Prekompilowane wzorce typowych promptów urządzeń.
	reLogin    *regexp.Regexp
	rePassword *regexp.Regexp
	reShell    *regexp.Regexp
}

// NewTelnetHandler tworzy handler Telnet z domyślnym limitem czasu.
func NewTelnetHandler(notifier Notifier, log *logrus.Entry) *TelnetHandler {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &TelnetHandler{
		timeout:  DefaultTimeout,
		notifier: notifier,
		log:      log,

		// login:, Login:, Username:, User Name:, user:
		reLogin: regexp.MustCompile(`(?i)(login|user\s*name|username|user)[\s:]*$`),
		// Password:, password:, Pass:
		rePassword: regexp.MustCompile(`(?i)(password|pass)[\s:]*$`),
		// #, $, >, % na końcu strumienia
		reShell: regexp.MustCompile(`[#$>%]\s*$`),
	}
}

// SetTimeout zmienia limit czasu próby połączenia.
func (h *TelnetHandler) SetTimeout(d time.Duration) {
	if d > 0 {
		h.timeout = d
	}
}

// Connect nawiązuje połączenie Telnet i wykonuje skryptowane logowanie.
func (h *TelnetHandler) Connect(host, username, password string, port int) (Session, error) {
	h.notifier.Warning("Note: Telnet is an insecure protocol. Use SSH when possible.")

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := telnet.DialTimeout("tcp", addr, h.timeout)
	if err != nil {
		return nil, h.classify(host, port, err)
	}

	if err := h.login(conn, username, password); err != nil {
		conn.Close()
		return nil, h.classify(host, port, err)
	}

	h.notifier.Success("Successfully connected to %s via Telnet", host)
	return NewTelnetSession(conn), nil
}

// login wykonuje sekwencję: prompt użytkownika, nazwa, prompt hasła, hasło,
// pusta linia. Brak spodziewanego promptu nie przerywa sekwencji - część
// urządzeń używa niestandardowych promptów, operator dostaje ostrzeżenie.
func (h *TelnetHandler) login(conn *telnet.Conn, username, password string) error {
	if err := conn.SetReadDeadline(time.Now().Add(h.timeout)); err != nil {
		return err
	}
	if _, err := h.readUntilMatch(conn, h.reLogin); err != nil {
		if !isTimeout(err) {
			return err
		}
		h.notifier.Warning("No standard login prompt detected, attempting to send username anyway")
	}
	if err := h.sendLine(conn, username); err != nil {
		return err
	}

	if err := conn.SetReadDeadline(time.Now().Add(h.timeout)); err != nil {
		return err
	}
	if _, err := h.readUntilMatch(conn, h.rePassword); err != nil {
		if !isTimeout(err) {
			return err
		}
		h.notifier.Warning("No standard password prompt detected, attempting to send password anyway")
	}
	if err := h.sendLine(conn, password); err != nil {
		return err
	}

	// Pusta linia i krótkie okno na znak zachęty - słaby sygnał udanego
	// logowania, wynik jest tylko odnotowywany.
	if err := h.sendLine(conn, ""); err != nil {
		return err
	}
	if err := conn.SetReadDeadline(time.Now().Add(shellProbeTimeout)); err != nil {
		return err
	}
	if _, err := h.readUntilMatch(conn, h.reShell); err != nil {
		if !isTimeout(err) {
			return err
		}
		h.log.Debug("no shell prompt observed after login, assuming success")
	}

	// Zdejmujemy deadline przed przekazaniem sesji do pętli interaktywnej.
	return conn.SetReadDeadline(time.Time{})
}

// readUntilMatch czyta bajty do momentu dopasowania wzorca albo błędu.
func (h *TelnetHandler) readUntilMatch(conn *telnet.Conn, re *regexp.Regexp) ([]byte, error) {
	var buf []byte
	b := make([]byte, 1)

	for {
		n, err := conn.Read(b)
		if n > 0 {
			buf = append(buf, b[0])
			if re.Match(buf) {
				return buf, nil
			}
		}
		if err != nil {
			return buf, err
		}
	}
}

// sendLine wysyła linię zakończoną CRLF.
func (h *TelnetHandler) sendLine(conn *telnet.Conn, line string) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.timeout)); err != nil {
		return err
	}
	_, err := conn.Write([]byte(line + "\r\n"))
	return err
}

// classify mapuje błąd transportowy na sklasyfikowany wynik próby.
func (h *TelnetHandler) classify(host string, port int, err error) *AttemptError {
	h.log.Debugf("telnet attempt failed: %v", err)

	if errors.Is(err, io.EOF) {
		return newAttemptError(FailureTransport, "telnet",
			"Connection closed by remote host", err)
	}
	if isTimeout(err) {
		return newAttemptError(FailureTimeout, "telnet",
			fmt.Sprintf("Connection to %s:%d timed out after %s", host, port, h.timeout), err)
	}
	if strings.Contains(err.Error(), "connection refused") {
		return newAttemptError(FailureTransport, "telnet",
			fmt.Sprintf("Connection to %s:%d refused", host, port), err)
	}
	// *net.OpError implementuje net.Error, więc jedna gałąź wystarcza.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return newAttemptError(FailureTransport, "telnet",
			fmt.Sprintf("Socket error: %v", err), err)
	}

	return newAttemptError(FailureUnexpected, "telnet",
		fmt.Sprintf("Unexpected error: %v", err), err)
}

// isTimeout sprawdza czy błąd wynika z przekroczenia deadline'u odczytu.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
