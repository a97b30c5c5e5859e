// internal/models/device.go

package models

// Znaczniki protokołów obsługiwane przez łańcuch połączeń.
const (
	ProtocolSSH       = "ssh"
	ProtocolSSHModern = "ssh-modern"
	ProtocolSSHLegacy = "ssh-legacy"
	ProtocolTelnet    = "telnet"
)

// Domyślne porty protokołów.
const (
	DefaultSSHPort    = 22
	DefaultTelnetPort = 23
)

// DefaultProtocols zwraca domyślną kolejność prób połączenia
// dla urządzeń bez skonfigurowanej listy protokołów.
func DefaultProtocols() []string {
	return []string{ProtocolSSHModern, ProtocolSSHLegacy, ProtocolTelnet}
}

// KnownProtocol sprawdza czy znacznik protokołu jest rozpoznawany.
func KnownProtocol(tag string) bool {
	switch tag {
	case ProtocolSSH, ProtocolSSHModern, ProtocolSSHLegacy, ProtocolTelnet:
		return true
	}
	return false
}

// Device reprezentuje urządzenie sieciowe z inwentarza
type Device struct {
	Hostname   string   `yaml:"hostname"`
	IP         string   `yaml:"ip"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	Protocols  []string `yaml:"protocols,omitempty"`
	SSHPort    int      `yaml:"ssh_port,omitempty"`
	TelnetPort int      `yaml:"telnet_port,omitempty"`
}

// Inventory reprezentuje zawartość pliku inwentarza
type Inventory struct {
	Devices []Device `yaml:"devices"`
}

// EffectiveProtocols zwraca listę protokołów urządzenia lub domyślną
// kolejność gdy lista jest pusta.
func (d *Device) EffectiveProtocols() []string {
	if len(d.Protocols) == 0 {
		return DefaultProtocols()
	}
	return d.Protocols
}

// EffectiveSSHPort zwraca port SSH urządzenia z uwzględnieniem domyślnego.
func (d *Device) EffectiveSSHPort() int {
	if d.SSHPort > 0 {
		return d.SSHPort
	}
	return DefaultSSHPort
}

// EffectiveTelnetPort zwraca port Telnet urządzenia z uwzględnieniem domyślnego.
func (d *Device) EffectiveTelnetPort() int {
	if d.TelnetPort > 0 {
		return d.TelnetPort
	}
	return DefaultTelnetPort
}
