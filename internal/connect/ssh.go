// internal/connect/ssh.go

package connect

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"jess/internal/models"
)

// DefaultTimeout to domyślny limit czasu pojedynczej próby połączenia.
const DefaultTimeout = 10 * time.Second

// SSHHandler obsługuje połączenia SSH w dwóch profilach bezpieczeństwa:
// nowoczesnym (domyślne algorytmy biblioteki) i starszym (jawnie włączone
// wycofane algorytmy dla zgodności ze starymi urządzeniami).
type SSHHandler struct {
	timeout  time.Duration
	notifier Notifier
	log      *logrus.Entry
}

// NewSSHHandler tworzy handler SSH z domyślnym limitem czasu.
func NewSSHHandler(notifier Notifier, log *logrus.Entry) *SSHHandler {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SSHHandler{
		timeout:  DefaultTimeout,
		notifier: notifier,
		log:      log,
	}
}

// SetTimeout zmienia limit czasu próby połączenia.
func (h *SSHHandler) SetTimeout(d time.Duration) {
	if d > 0 {
		h.timeout = d
	}
}

// ConnectModern nawiązuje połączenie SSH z domyślnymi, aktualnymi
// algorytmami biblioteki.
func (h *SSHHandler) ConnectModern(host, username, password string, port int) (Session, error) {
	config := &ssh.ClientConfig{
		User: username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
		},
		// Klucz hosta jest akceptowany automatycznie - narzędzie łączy się
		// z urządzeniami z inwentarza operatora, nie weryfikujemy known_hosts.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         h.timeout,
	}

	return h.dial(models.ProtocolSSHModern, host, username, password, port, config)
}

// ConnectLegacy nawiązuje połączenie SSH z jawnie włączonym zestawem
// wycofanych algorytmów. Stare urządzenia sieciowe odrzucają negocjację
// ograniczoną do nowoczesnych algorytmów - to świadomy kompromis
// bezpieczeństwa na rzecz zgodności.
func (h *SSHHandler) ConnectLegacy(host, username, password string, port int) (Session, error) {
	config := &ssh.ClientConfig{
		User: username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			// Część urządzeń (H3C, stare Cisco) akceptuje hasło wyłącznie
			// przez keyboard-interactive.
			ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         h.timeout,
		Config: ssh.Config{
			KeyExchanges: []string{
				"curve25519-sha256",
				"ecdh-sha2-nistp256",
				"diffie-hellman-group14-sha256",
				"diffie-hellman-group14-sha1",
				"diffie-hellman-group1-sha1",
				"diffie-hellman-group-exchange-sha256",
				"diffie-hellman-group-exchange-sha1",
			},
			Ciphers: []string{
				"aes128-ctr",
				"aes192-ctr",
				"aes256-ctr",
				"aes128-gcm@openssh.com",
				"aes128-cbc",
				"3des-cbc",
				"arcfour",
				"arcfour128",
				"arcfour256",
			},
			MACs: []string{
				"hmac-sha2-256-etm@openssh.com",
				"hmac-sha2-256",
				"hmac-sha1",
				"hmac-sha1-96",
			},
		},
		HostKeyAlgorithms: []string{
			"rsa-sha2-512",
			"rsa-sha2-256",
			"ssh-rsa",
			"ssh-dss",
			"ecdsa-sha2-nistp256",
			"ssh-ed25519",
		},
	}

	return h.dial(models.ProtocolSSHLegacy, host, username, password, port, config)
}

// dial nawiązuje najpierw surowe połączenie TCP, a dopiero potem handshake
// SSH - dzięki temu błędy transportowe i błędy negocjacji klasyfikują się
// osobno.
func (h *SSHHandler) dial(protocol, host, username, password string, port int, config *ssh.ClientConfig) (Session, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	conn, err := net.DialTimeout("tcp", addr, h.timeout)
	if err != nil {
		return nil, h.classifyDial(protocol, host, port, err)
	}

	// Deadline obejmuje handshake i uwierzytelnianie; po udanej negocjacji
	// jest zdejmowany, żeby nie zrywać sesji interaktywnej.
	if err := conn.SetDeadline(time.Now().Add(h.timeout)); err != nil {
		conn.Close()
		return nil, newAttemptError(FailureUnexpected, protocol,
			fmt.Sprintf("Unexpected error: %v", err), err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, h.classifyHandshake(protocol, host, port, username, err)
	}

	if err := conn.SetDeadline(time.Time{}); err != nil {
		clientConn.Close()
		return nil, newAttemptError(FailureUnexpected, protocol,
			fmt.Sprintf("Unexpected error: %v", err), err)
	}

	client := ssh.NewClient(clientConn, chans, reqs)
	h.log.WithFields(logrus.Fields{"protocol": protocol, "addr": addr}).Debug("ssh connection established")
	h.notifier.Success("Successfully connected to %s via %s SSH", host, profileName(protocol))

	return NewSSHSession(client), nil
}

// classifyDial klasyfikuje błąd na etapie połączenia TCP.
func (h *SSHHandler) classifyDial(protocol, host string, port int, err error) *AttemptError {
	h.log.WithField("protocol", protocol).Debugf("tcp dial failed: %v", err)

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return newAttemptError(FailureTimeout, protocol,
			fmt.Sprintf("Connection to %s:%d timed out after %s", host, port, h.timeout), err)
	}
	return newAttemptError(FailureTransport, protocol,
		fmt.Sprintf("Socket error: %v", err), err)
}

// classifyHandshake klasyfikuje błąd negocjacji lub uwierzytelniania SSH.
func (h *SSHHandler) classifyHandshake(protocol, host string, port int, username string, err error) *AttemptError {
	h.log.WithField("protocol", protocol).Debugf("ssh handshake failed: %v", err)
	msg := err.Error()

	// Błąd uwierzytelniania jest także opakowany w "handshake failed",
	// więc sprawdzamy go przed negocjacją.
	if strings.Contains(msg, "unable to authenticate") {
		return newAttemptError(FailureAuth, protocol,
			fmt.Sprintf("Authentication failed for %s@%s", username, host), err)
	}

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return newAttemptError(FailureTimeout, protocol,
			fmt.Sprintf("Connection to %s:%d timed out after %s", host, port, h.timeout), err)
	}
	if strings.Contains(msg, "i/o timeout") {
		return newAttemptError(FailureTimeout, protocol,
			fmt.Sprintf("Connection to %s:%d timed out after %s", host, port, h.timeout), err)
	}

	if strings.Contains(msg, "handshake failed") ||
		strings.Contains(msg, "no common algorithm") ||
		strings.Contains(msg, "ssh:") {
		return newAttemptError(FailureNegotiation, protocol,
			fmt.Sprintf("SSH error: %v", err), err)
	}

	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no route to host") ||
		strings.Contains(msg, "network is unreachable") {
		return newAttemptError(FailureTransport, protocol,
			fmt.Sprintf("Socket error: %v", err), err)
	}

	return newAttemptError(FailureUnexpected, protocol,
		fmt.Sprintf("Unexpected error: %v", err), err)
}

// profileName zwraca nazwę profilu dla komunikatów operatora.
func profileName(protocol string) string {
	if protocol == models.ProtocolSSHLegacy {
		return "legacy"
	}
	return "modern"
}
