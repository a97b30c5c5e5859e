// internal/inventory/parser.go

package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"jess/internal/models"
)

// ReadInventory wczytuje i parsuje plik inwentarza YAML.
func ReadInventory(path string) (*models.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("inventory file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read inventory file: %w", err)
	}

	var inv models.Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("YAML parsing error: %w", err)
	}

	return &inv, nil
}

// ValidateInventory sprawdza strukturę inwentarza. Nazwa hosta musi być
// obecna i unikalna; brakujące dane logowania są zgłaszane dopiero przy
// próbie połączenia, a nieznane protokoły pomijane w łańcuchu prób -
// walidacja ich nie odrzuca.
func ValidateInventory(inv *models.Inventory) error {
	if inv == nil {
		return errors.New("inventory must contain a 'devices' key")
	}

	seen := make(map[string]struct{}, len(inv.Devices))
	for i, device := range inv.Devices {
		if device.Hostname == "" {
			return fmt.Errorf("device at index %d is missing required field: hostname", i)
		}
		if _, ok := seen[device.Hostname]; ok {
			return fmt.Errorf("duplicate hostname '%s' in inventory", device.Hostname)
		}
		seen[device.Hostname] = struct{}{}

		if device.SSHPort < 0 || device.SSHPort > 65535 {
			return fmt.Errorf("SSH port for device '%s' must be a valid port number", device.Hostname)
		}
		if device.TelnetPort < 0 || device.TelnetPort > 65535 {
			return fmt.Errorf("Telnet port for device '%s' must be a valid port number", device.Hostname)
		}
	}

	return nil
}

// UnknownProtocols zwraca listę nierozpoznanych znaczników protokołów
// urządzenia - wywołujący może ostrzec operatora przy wczytywaniu.
func UnknownProtocols(device *models.Device) []string {
	var unknown []string
	for _, tag := range device.Protocols {
		if !models.KnownProtocol(tag) {
			unknown = append(unknown, tag)
		}
	}
	return unknown
}

// CreateDefaultInventory tworzy przykładowy plik inwentarza.
func CreateDefaultInventory(path string) error {
	defaults := &models.Inventory{
		Devices: []models.Device{
			{
				Hostname: "example-router",
				IP:       "192.168.1.1",
				Username: "admin",
				Password: "password123",
				// Znacznik "ssh" próbuje profilu nowoczesnego, potem starszego.
				Protocols: []string{models.ProtocolSSH, models.ProtocolTelnet},
			},
			{
				Hostname:  "example-switch",
				IP:        "192.168.1.2",
				Username:  "admin",
				Password:  "securepass",
				Protocols: []string{models.ProtocolSSHModern},
				SSHPort:   2222,
			},
			{
				Hostname:   "legacy-device",
				IP:         "10.0.0.5",
				Username:   "admin",
				Password:   "legacy_pass",
				Protocols:  []string{models.ProtocolSSHLegacy, models.ProtocolTelnet},
				TelnetPort: 8023,
			},
		},
	}

	dir := filepath.Dir(path)
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create inventory directory: %w", err)
		}
	}

	data, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("failed to marshal default inventory: %w", err)
	}

	// Plik zawiera hasła, więc dostęp tylko dla właściciela.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write inventory file: %w", err)
	}

	return nil
}
