// internal/connect/manager.go

package connect

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"jess/internal/models"
)

// DeviceResolver dostarcza rekordy urządzeń z inwentarza.
type DeviceResolver interface {
	GetDevice(hostname string) (*models.Device, bool)
}

// sshConnector i telnetConnector pozwalają podmienić handlery w testach.
type sshConnector interface {
	ConnectModern(host, username, password string, port int) (Session, error)
	ConnectLegacy(host, username, password string, port int) (Session, error)
}

type telnetConnector interface {
	Connect(host, username, password string, port int) (Session, error)
}

// Result reprezentuje końcowy werdykt próby połączenia.
type Result struct {
	Success  bool
	Protocol string
	Message  string
	Session  Session
}

// ConnectOptions zawiera nadpisania z wiersza poleceń. Wartości zerowe
// oznaczają użycie konfiguracji urządzenia.
type ConnectOptions struct {
	SSHPort    int
	TelnetPort int
	Protocol   string
}

// Manager orkiestruje próby połączenia z urządzeniem, realizując łańcuch
// protokołów z konfiguracji i przekazując pierwszą udaną sesję wywołującemu.
type Manager struct {
	inventory DeviceResolver
	ssh       sshConnector
	telnet    telnetConnector
	notifier  Notifier
	log       *logrus.Entry
}

// NewManager tworzy menedżera połączeń ze standardowymi handlerami.
func NewManager(inventory DeviceResolver, notifier Notifier, log *logrus.Entry) *Manager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		inventory: inventory,
		ssh:       NewSSHHandler(notifier, log),
		telnet:    NewTelnetHandler(notifier, log),
		notifier:  notifier,
		log:       log,
	}
}

// Connect wyszukuje urządzenie w inwentarzu i próbuje kolejnych protokołów
// aż do pierwszego sukcesu. Błędy pojedynczych prób są raportowane
// i pochłaniane - na zewnątrz wychodzi dopiero wyczerpanie całej listy.
func (m *Manager) Connect(hostname string, opts ConnectOptions) Result {
	device, ok := m.inventory.GetDevice(hostname)
	if !ok {
		return m.failure(fmt.Sprintf("Device '%s' not found in inventory", hostname))
	}

	// Walidacja wymaganych pól przed jakąkolwiek operacją sieciową.
	if device.IP == "" {
		return m.failure(fmt.Sprintf("Missing IP address for device '%s'", hostname))
	}
	if device.Username == "" {
		return m.failure(fmt.Sprintf("Missing username for device '%s'", hostname))
	}
	if device.Password == "" {
		return m.failure(fmt.Sprintf("Missing password for device '%s'", hostname))
	}

	// Nadpisanie z wiersza poleceń > konfiguracja urządzenia > domyślny port.
	sshPort := device.EffectiveSSHPort()
	if opts.SSHPort > 0 {
		sshPort = opts.SSHPort
	}
	telnetPort := device.EffectiveTelnetPort()
	if opts.TelnetPort > 0 {
		telnetPort = opts.TelnetPort
	}

	protocols := device.EffectiveProtocols()
	if opts.Protocol != "" {
		protocols = []string{opts.Protocol}
	}

	m.notifier.Info("Connecting to %s (%s)...", hostname, device.IP)
	m.log.WithFields(logrus.Fields{
		"hostname":  hostname,
		"ip":        device.IP,
		"protocols": protocols,
	}).Debug("starting connection chain")

	// Próby ogłasza wyłącznie orkiestrator; handlery milczą aż do wyniku.
	for _, protocol := range protocols {
		switch protocol {
		case models.ProtocolSSH:
			// Alias "ssh" rozwija się na dwie próby: najpierw profil
			// nowoczesny, po porażce profil starszy.
			m.notifier.Attempt("Trying modern SSH connection...")
			if session, err := m.ssh.ConnectModern(device.IP, device.Username, device.Password, sshPort); err == nil {
				return m.success(models.ProtocolSSHModern, session)
			} else {
				m.reportAttempt("Modern SSH connection failed", err)
			}

			m.notifier.Attempt("Trying legacy SSH connection...")
			if session, err := m.ssh.ConnectLegacy(device.IP, device.Username, device.Password, sshPort); err == nil {
				return m.success(models.ProtocolSSHLegacy, session)
			} else {
				m.reportAttempt("Legacy SSH connection failed", err)
			}

		case models.ProtocolSSHModern:
			m.notifier.Attempt("Trying modern SSH connection...")
			if session, err := m.ssh.ConnectModern(device.IP, device.Username, device.Password, sshPort); err == nil {
				return m.success(models.ProtocolSSHModern, session)
			} else {
				m.reportAttempt("Modern SSH connection failed", err)
			}

		case models.ProtocolSSHLegacy:
			m.notifier.Attempt("Trying legacy SSH connection...")
			if session, err := m.ssh.ConnectLegacy(device.IP, device.Username, device.Password, sshPort); err == nil {
				return m.success(models.ProtocolSSHLegacy, session)
			} else {
				m.reportAttempt("Legacy SSH connection failed", err)
			}

		case models.ProtocolTelnet:
			m.notifier.Attempt("Trying telnet connection...")
			if session, err := m.telnet.Connect(device.IP, device.Username, device.Password, telnetPort); err == nil {
				return m.success(models.ProtocolTelnet, session)
			} else {
				m.reportAttempt("Telnet connection failed", err)
			}

		default:
			m.notifier.Warning("Unknown protocol '%s' - skipping", protocol)
		}
	}

	m.notifier.Error("All connection attempts to %s (%s) failed", hostname, device.IP)
	return m.failure("All connection attempts failed")
}

// reportAttempt raportuje nieudaną próbę i loguje jej klasyfikację.
func (m *Manager) reportAttempt(prefix string, err error) {
	var attempt *AttemptError
	if errors.As(err, &attempt) {
		m.notifier.Warning("%s: %s", prefix, attempt.Message)
		m.log.WithFields(logrus.Fields{
			"protocol": attempt.Protocol,
			"kind":     attempt.Kind.String(),
		}).Debugf("attempt failed: %v", err)
		return
	}
	m.notifier.Warning("%s: %v", prefix, err)
	m.log.Debugf("attempt failed: %v", err)
}

func (m *Manager) success(protocol string, session Session) Result {
	return Result{
		Success:  true,
		Protocol: protocol,
		Message:  "Connection successful",
		Session:  session,
	}
}

func (m *Manager) failure(message string) Result {
	return Result{
		Success: false,
		Message: message,
	}
}
