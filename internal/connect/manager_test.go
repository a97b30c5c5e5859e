// internal/connect/manager_test.go

package connect

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jess/internal/models"
)

// fakeResolver udostępnia urządzenia z mapy w pamięci.
type fakeResolver struct {
	devices map[string]models.Device
}

func (r *fakeResolver) GetDevice(hostname string) (*models.Device, bool) {
	device, ok := r.devices[hostname]
	if !ok {
		return nil, false
	}
	return &device, true
}

// recordedCall rejestruje parametry pojedynczej próby połączenia.
type recordedCall struct {
	profile string
	host    string
	port    int
}

// fakeSSH skryptuje wyniki prób SSH i rejestruje wywołania.
type fakeSSH struct {
	calls     []recordedCall
	modernErr error
	legacyErr error
}

func (f *fakeSSH) ConnectModern(host, username, password string, port int) (Session, error) {
	f.calls = append(f.calls, recordedCall{profile: "modern", host: host, port: port})
	if f.modernErr != nil {
		return nil, f.modernErr
	}
	return newFakeSession(), nil
}

func (f *fakeSSH) ConnectLegacy(host, username, password string, port int) (Session, error) {
	f.calls = append(f.calls, recordedCall{profile: "legacy", host: host, port: port})
	if f.legacyErr != nil {
		return nil, f.legacyErr
	}
	return newFakeSession(), nil
}

// fakeTelnet skryptuje wynik próby Telnet.
type fakeTelnet struct {
	calls []recordedCall
	err   error
}

func (f *fakeTelnet) Connect(host, username, password string, port int) (Session, error) {
	f.calls = append(f.calls, recordedCall{profile: "telnet", host: host, port: port})
	if f.err != nil {
		return nil, f.err
	}
	return newFakeSession(), nil
}

// recordingNotifier zbiera komunikaty według klasy.
type recordingNotifier struct {
	infos    []string
	attempts []string
	warnings []string
	errors   []string
}

func (n *recordingNotifier) Info(format string, args ...interface{}) {
	n.infos = append(n.infos, fmt.Sprintf(format, args...))
}

func (n *recordingNotifier) Attempt(format string, args ...interface{}) {
	n.attempts = append(n.attempts, fmt.Sprintf(format, args...))
}

func (n *recordingNotifier) Success(format string, args ...interface{}) {}

func (n *recordingNotifier) Warning(format string, args ...interface{}) {
	n.warnings = append(n.warnings, fmt.Sprintf(format, args...))
}

func (n *recordingNotifier) Error(format string, args ...interface{}) {
	n.errors = append(n.errors, fmt.Sprintf(format, args...))
}

func newTestManager(devices map[string]models.Device, ssh *fakeSSH, tel *fakeTelnet) (*Manager, *recordingNotifier) {
	notifier := &recordingNotifier{}
	logger := logrus.New()
	logger.SetOutput(nopWriter{})
	return &Manager{
		inventory: &fakeResolver{devices: devices},
		ssh:       ssh,
		telnet:    tel,
		notifier:  notifier,
		log:       logrus.NewEntry(logger),
	}, notifier
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func testDevice() models.Device {
	return models.Device{
		Hostname:  "router1",
		IP:        "10.0.0.1",
		Username:  "admin",
		Password:  "secret",
		Protocols: []string{models.ProtocolSSH, models.ProtocolTelnet},
	}
}

func TestConnectDeviceNotFound(t *testing.T) {
	m, _ := newTestManager(nil, &fakeSSH{}, &fakeTelnet{})

	result := m.Connect("ghost", ConnectOptions{})

	assert.False(t, result.Success)
	assert.Equal(t, "Device 'ghost' not found in inventory", result.Message)
}

func TestConnectMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Device)
		message string
	}{
		{
			name:    "missing ip",
			mutate:  func(d *models.Device) { d.IP = "" },
			message: "Missing IP address for device 'router1'",
		},
		{
			name:    "missing username",
			mutate:  func(d *models.Device) { d.Username = "" },
			message: "Missing username for device 'router1'",
		},
		{
			name:    "missing password",
			mutate:  func(d *models.Device) { d.Password = "" },
			message: "Missing password for device 'router1'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := testDevice()
			tt.mutate(&device)
			ssh := &fakeSSH{}
			tel := &fakeTelnet{}
			m, _ := newTestManager(map[string]models.Device{"router1": device}, ssh, tel)

			result := m.Connect("router1", ConnectOptions{})

			assert.False(t, result.Success)
			assert.Equal(t, tt.message, result.Message)
			// Walidacja musi odrzucić rekord zanim ruszy jakakolwiek próba.
			assert.Empty(t, ssh.calls)
			assert.Empty(t, tel.calls)
		})
	}
}

func TestConnectSSHAliasFallsBackToLegacy(t *testing.T) {
	ssh := &fakeSSH{
		modernErr: newAttemptError(FailureNegotiation, models.ProtocolSSHModern,
			"SSH error: no common algorithm", errors.New("no common algorithm")),
	}
	tel := &fakeTelnet{}
	m, notifier := newTestManager(map[string]models.Device{"router1": testDevice()}, ssh, tel)

	result := m.Connect("router1", ConnectOptions{})

	require.True(t, result.Success)
	assert.Equal(t, models.ProtocolSSHLegacy, result.Protocol)
	assert.Equal(t, "Connection successful", result.Message)
	require.NotNil(t, result.Session)

	require.Len(t, ssh.calls, 2)
	assert.Equal(t, "modern", ssh.calls[0].profile)
	assert.Equal(t, "legacy", ssh.calls[1].profile)
	assert.Empty(t, tel.calls)

	// Alias "ssh" ogłasza dokładnie jedną linię na profil.
	assert.Equal(t, []string{
		"Trying modern SSH connection...",
		"Trying legacy SSH connection...",
	}, notifier.attempts)

	assert.Contains(t, notifier.warnings, "Modern SSH connection failed: SSH error: no common algorithm")
}

func TestConnectFallsThroughToTelnet(t *testing.T) {
	sshErr := errors.New("boom")
	ssh := &fakeSSH{
		modernErr: newAttemptError(FailureTransport, models.ProtocolSSHModern, "Socket error: boom", sshErr),
		legacyErr: newAttemptError(FailureTransport, models.ProtocolSSHLegacy, "Socket error: boom", sshErr),
	}
	tel := &fakeTelnet{}
	m, _ := newTestManager(map[string]models.Device{"router1": testDevice()}, ssh, tel)

	result := m.Connect("router1", ConnectOptions{})

	require.True(t, result.Success)
	assert.Equal(t, models.ProtocolTelnet, result.Protocol)
	require.Len(t, ssh.calls, 2)
	require.Len(t, tel.calls, 1)
}

func TestConnectTelnetOnly(t *testing.T) {
	device := testDevice()
	device.Protocols = []string{models.ProtocolTelnet}
	ssh := &fakeSSH{}
	tel := &fakeTelnet{}
	m, notifier := newTestManager(map[string]models.Device{"router1": device}, ssh, tel)

	result := m.Connect("router1", ConnectOptions{})

	require.True(t, result.Success)
	assert.Equal(t, models.ProtocolTelnet, result.Protocol)
	assert.Empty(t, ssh.calls)
	require.Len(t, tel.calls, 1)
	assert.Equal(t, models.DefaultTelnetPort, tel.calls[0].port)
	assert.Equal(t, []string{"Trying telnet connection..."}, notifier.attempts)
}

func TestConnectAnnouncesEachAttemptOnce(t *testing.T) {
	device := testDevice()
	device.Protocols = []string{models.ProtocolSSHModern}
	ssh := &fakeSSH{}
	m, notifier := newTestManager(map[string]models.Device{"router1": device}, ssh, &fakeTelnet{})

	result := m.Connect("router1", ConnectOptions{})

	require.True(t, result.Success)
	assert.Equal(t, []string{"Trying modern SSH connection..."}, notifier.attempts)
}

func TestConnectUnknownProtocolSkipped(t *testing.T) {
	device := testDevice()
	device.Protocols = []string{"kermit", models.ProtocolTelnet}
	ssh := &fakeSSH{}
	tel := &fakeTelnet{}
	m, notifier := newTestManager(map[string]models.Device{"router1": device}, ssh, tel)

	result := m.Connect("router1", ConnectOptions{})

	require.True(t, result.Success)
	assert.Equal(t, models.ProtocolTelnet, result.Protocol)
	assert.Contains(t, notifier.warnings, "Unknown protocol 'kermit' - skipping")
	assert.Empty(t, ssh.calls)
}

func TestConnectAllAttemptsFail(t *testing.T) {
	authErr := newAttemptError(FailureAuth, models.ProtocolSSHModern,
		"Authentication failed for admin@10.0.0.1", errors.New("unable to authenticate"))
	ssh := &fakeSSH{modernErr: authErr, legacyErr: authErr}
	tel := &fakeTelnet{err: newAttemptError(FailureTransport, models.ProtocolTelnet,
		"Connection to 10.0.0.1:23 refused", errors.New("connection refused"))}
	m, notifier := newTestManager(map[string]models.Device{"router1": testDevice()}, ssh, tel)

	result := m.Connect("router1", ConnectOptions{})

	assert.False(t, result.Success)
	assert.Equal(t, "All connection attempts failed", result.Message)
	assert.Nil(t, result.Session)
	require.Len(t, ssh.calls, 2)
	require.Len(t, tel.calls, 1)
	assert.Contains(t, notifier.errors, "All connection attempts to router1 (10.0.0.1) failed")
}

func TestConnectDefaultProtocolChain(t *testing.T) {
	device := testDevice()
	device.Protocols = nil
	sshErr := errors.New("down")
	ssh := &fakeSSH{
		modernErr: newAttemptError(FailureTransport, models.ProtocolSSHModern, "Socket error: down", sshErr),
		legacyErr: newAttemptError(FailureTransport, models.ProtocolSSHLegacy, "Socket error: down", sshErr),
	}
	tel := &fakeTelnet{err: newAttemptError(FailureTransport, models.ProtocolTelnet, "Socket error: down", sshErr)}
	m, _ := newTestManager(map[string]models.Device{"router1": device}, ssh, tel)

	result := m.Connect("router1", ConnectOptions{})

	// Pusta lista protokołów oznacza ssh-modern, ssh-legacy, telnet.
	assert.False(t, result.Success)
	require.Len(t, ssh.calls, 2)
	assert.Equal(t, "modern", ssh.calls[0].profile)
	assert.Equal(t, "legacy", ssh.calls[1].profile)
	require.Len(t, tel.calls, 1)
}

func TestConnectPortPrecedence(t *testing.T) {
	device := testDevice()
	device.Protocols = []string{models.ProtocolSSHModern, models.ProtocolTelnet}
	device.SSHPort = 2222
	device.TelnetPort = 8023

	t.Run("device ports over defaults", func(t *testing.T) {
		sshErr := errors.New("down")
		ssh := &fakeSSH{modernErr: newAttemptError(FailureTransport, models.ProtocolSSHModern, "Socket error: down", sshErr)}
		tel := &fakeTelnet{}
		m, _ := newTestManager(map[string]models.Device{"router1": device}, ssh, tel)

		m.Connect("router1", ConnectOptions{})

		require.Len(t, ssh.calls, 1)
		assert.Equal(t, 2222, ssh.calls[0].port)
		require.Len(t, tel.calls, 1)
		assert.Equal(t, 8023, tel.calls[0].port)
	})

	t.Run("flag overrides device ports", func(t *testing.T) {
		sshErr := errors.New("down")
		ssh := &fakeSSH{modernErr: newAttemptError(FailureTransport, models.ProtocolSSHModern, "Socket error: down", sshErr)}
		tel := &fakeTelnet{}
		m, _ := newTestManager(map[string]models.Device{"router1": device}, ssh, tel)

		m.Connect("router1", ConnectOptions{SSHPort: 10022, TelnetPort: 10023})

		require.Len(t, ssh.calls, 1)
		assert.Equal(t, 10022, ssh.calls[0].port)
		require.Len(t, tel.calls, 1)
		assert.Equal(t, 10023, tel.calls[0].port)
	})
}

func TestConnectProtocolOverride(t *testing.T) {
	ssh := &fakeSSH{}
	tel := &fakeTelnet{}
	m, _ := newTestManager(map[string]models.Device{"router1": testDevice()}, ssh, tel)

	result := m.Connect("router1", ConnectOptions{Protocol: models.ProtocolTelnet})

	require.True(t, result.Success)
	assert.Equal(t, models.ProtocolTelnet, result.Protocol)
	assert.Empty(t, ssh.calls)
	require.Len(t, tel.calls, 1)
}

func TestConnectStopsAtFirstSuccess(t *testing.T) {
	ssh := &fakeSSH{}
	tel := &fakeTelnet{}
	m, _ := newTestManager(map[string]models.Device{"router1": testDevice()}, ssh, tel)

	result := m.Connect("router1", ConnectOptions{})

	require.True(t, result.Success)
	assert.Equal(t, models.ProtocolSSHModern, result.Protocol)
	require.Len(t, ssh.calls, 1)
	assert.Empty(t, tel.calls)
}
