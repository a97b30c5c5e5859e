// internal/connect/relay_test.go

package connect

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jess/internal/models"
)

// fakeSession liczy wywołania Start i Close. Read kończy się natychmiast,
// więc pętla interaktywna wychodzi bez danych z zewnątrz.
type fakeSession struct {
	done       chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	startCalls int
	closeCalls int
	startErr   error
	closeErr   error
}

func newFakeSession() *fakeSession {
	return &fakeSession{done: make(chan struct{})}
}

func (s *fakeSession) Start(width, height int) error {
	s.mu.Lock()
	s.startCalls++
	s.mu.Unlock()
	return s.startErr
}

func (s *fakeSession) Read(p []byte) (int, error) {
	<-s.done
	return 0, io.EOF
}

func (s *fakeSession) Write(p []byte) (int, error) {
	return len(p), nil
}

func (s *fakeSession) Done() <-chan struct{} {
	return s.done
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	s.closeCalls++
	s.mu.Unlock()
	s.doneOnce.Do(func() { close(s.done) })
	return s.closeErr
}

func (s *fakeSession) counts() (starts, closes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startCalls, s.closeCalls
}

func (s *fakeSession) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

func TestTransferToSessionUnknownProtocol(t *testing.T) {
	session := newFakeSession()
	m, notifier := newTestManager(nil, &fakeSSH{}, &fakeTelnet{})

	err := m.TransferToSession(session, "kermit")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown protocol")

	// Odrzucenie następuje zanim sesja zostanie dotknięta.
	starts, closes := session.counts()
	assert.Zero(t, starts)
	assert.Zero(t, closes)
	require.NotEmpty(t, notifier.errors)
	assert.Contains(t, notifier.errors[0], "Unknown protocol 'kermit'")
}

func TestTransferToSessionClosesSessionOnce(t *testing.T) {
	session := newFakeSession()
	session.finish()
	m, notifier := newTestManager(nil, &fakeSSH{}, &fakeTelnet{})

	err := m.TransferToSession(session, models.ProtocolSSHModern)

	require.NoError(t, err)
	starts, closes := session.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, closes)
	require.NotEmpty(t, notifier.infos)
	assert.Contains(t, notifier.infos[0], "Entering SSH session")
}

func TestTransferToSessionTelnetBanner(t *testing.T) {
	session := newFakeSession()
	session.finish()
	m, notifier := newTestManager(nil, &fakeSSH{}, &fakeTelnet{})

	err := m.TransferToSession(session, models.ProtocolTelnet)

	require.NoError(t, err)
	require.NotEmpty(t, notifier.infos)
	assert.Contains(t, notifier.infos[0], "Entering Telnet session")
}

func TestTransferToSessionStartFailure(t *testing.T) {
	session := newFakeSession()
	session.startErr = errors.New("pty refused")
	session.finish()
	m, notifier := newTestManager(nil, &fakeSSH{}, &fakeTelnet{})

	err := m.TransferToSession(session, models.ProtocolSSHLegacy)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pty refused")

	// Sesja jest zamykana także gdy start się nie powiódł.
	_, closes := session.counts()
	assert.Equal(t, 1, closes)
	require.NotEmpty(t, notifier.errors)
}

// exitingSession dokłada do fałszywej sesji status wyjścia zdalnej powłoki.
type exitingSession struct {
	*fakeSession
	exitErr error
}

func (s *exitingSession) ExitError() error { return s.exitErr }

func TestTransferToSessionLogsShellExitError(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	inner := newFakeSession()
	inner.finish()
	session := &exitingSession{fakeSession: inner, exitErr: errors.New("exit status 1")}

	m := &Manager{notifier: &recordingNotifier{}, log: logrus.NewEntry(logger)}
	require.NoError(t, m.TransferToSession(session, models.ProtocolSSHModern))

	var logged bool
	for _, entry := range hook.AllEntries() {
		if strings.Contains(entry.Message, "remote shell exited with error") {
			logged = true
		}
	}
	assert.True(t, logged)
}

func TestTransferToSessionExitsOnRemoteClose(t *testing.T) {
	session := newFakeSession()
	m, _ := newTestManager(nil, &fakeSSH{}, &fakeTelnet{})

	result := make(chan error, 1)
	go func() {
		result <- m.TransferToSession(session, models.ProtocolSSHModern)
	}()

	// Zdalna strona kończy sesję w trakcie pracy pętli.
	time.Sleep(50 * time.Millisecond)
	session.finish()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not exit after remote close")
	}

	_, closes := session.counts()
	assert.Equal(t, 1, closes)
}
