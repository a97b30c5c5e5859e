// internal/models/device_test.go

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveProtocols(t *testing.T) {
	empty := &Device{}
	assert.Equal(t, []string{ProtocolSSHModern, ProtocolSSHLegacy, ProtocolTelnet}, empty.EffectiveProtocols())

	configured := &Device{Protocols: []string{ProtocolTelnet}}
	assert.Equal(t, []string{ProtocolTelnet}, configured.EffectiveProtocols())
}

func TestEffectivePorts(t *testing.T) {
	device := &Device{}
	assert.Equal(t, DefaultSSHPort, device.EffectiveSSHPort())
	assert.Equal(t, DefaultTelnetPort, device.EffectiveTelnetPort())

	device.SSHPort = 2222
	device.TelnetPort = 8023
	assert.Equal(t, 2222, device.EffectiveSSHPort())
	assert.Equal(t, 8023, device.EffectiveTelnetPort())
}

func TestKnownProtocol(t *testing.T) {
	for _, tag := range []string{ProtocolSSH, ProtocolSSHModern, ProtocolSSHLegacy, ProtocolTelnet} {
		assert.True(t, KnownProtocol(tag), tag)
	}
	assert.False(t, KnownProtocol("kermit"))
	assert.False(t, KnownProtocol(""))
	assert.False(t, KnownProtocol("SSH"))
}
