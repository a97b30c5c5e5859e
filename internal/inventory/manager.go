// internal/inventory/manager.go

package inventory

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"jess/internal/models"
)

const (
	DefaultInventoryFileName = "inventory.yaml"
	DefaultConfigDir         = ".jess"
)

// Manager zarządza inwentarzem urządzeń sieciowych: wczytywaniem,
// podmianą i wyszukiwaniem rekordów po nazwie hosta.
type Manager struct {
	inventoryPath string
	devices       map[string]models.Device
	order         []string
}

// GetDefaultInventoryPath zwraca ścieżkę ~/.jess/inventory.yaml.
func GetDefaultInventoryPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultConfigDir, DefaultInventoryFileName), nil
}

// NewManager tworzy menedżera inwentarza. Pusta ścieżka oznacza
// lokalizację domyślną.
func NewManager(inventoryPath string) *Manager {
	if inventoryPath == "" {
		if defaultPath, err := GetDefaultInventoryPath(); err == nil {
			inventoryPath = defaultPath
		} else {
			inventoryPath = DefaultInventoryFileName
		}
	}
	return &Manager{
		inventoryPath: inventoryPath,
		devices:       make(map[string]models.Device),
	}
}

// Path zwraca ścieżkę aktywnego pliku inwentarza.
func (m *Manager) Path() string {
	return m.inventoryPath
}

// Load wczytuje inwentarz z pliku. Brak pliku nie jest błędem - powstaje
// wtedy przykładowy inwentarz.
func (m *Manager) Load() error {
	if _, err := os.Stat(m.inventoryPath); os.IsNotExist(err) {
		if err := CreateDefaultInventory(m.inventoryPath); err != nil {
			return fmt.Errorf("failed to create default inventory: %w", err)
		}
	}

	inv, err := ReadInventory(m.inventoryPath)
	if err != nil {
		return err
	}
	if err := ValidateInventory(inv); err != nil {
		return fmt.Errorf("invalid inventory file: %w", err)
	}

	m.devices = make(map[string]models.Device, len(inv.Devices))
	m.order = m.order[:0]
	for _, device := range inv.Devices {
		m.devices[device.Hostname] = device
		m.order = append(m.order, device.Hostname)
	}

	return nil
}

// GetDevice zwraca rekord urządzenia o podanej nazwie hosta.
func (m *Manager) GetDevice(hostname string) (*models.Device, bool) {
	device, ok := m.devices[hostname]
	if !ok {
		return nil, false
	}
	return &device, true
}

// Devices zwraca urządzenia w kolejności z pliku inwentarza.
func (m *Manager) Devices() []models.Device {
	devices := make([]models.Device, 0, len(m.order))
	for _, hostname := range m.order {
		devices = append(devices, m.devices[hostname])
	}
	return devices
}

// ImportInventory waliduje wskazany plik i instaluje go jako aktywny
// inwentarz.
func (m *Manager) ImportInventory(path string) error {
	inv, err := ReadInventory(path)
	if err != nil {
		return err
	}
	if err := ValidateInventory(inv); err != nil {
		return fmt.Errorf("invalid inventory file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read inventory file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.inventoryPath), 0755); err != nil {
		return fmt.Errorf("failed to create inventory directory: %w", err)
	}
	if err := os.WriteFile(m.inventoryPath, data, 0600); err != nil {
		return fmt.Errorf("failed to install inventory file: %w", err)
	}

	return m.Load()
}

// Edit otwiera plik inwentarza w edytorze operatora ($EDITOR, domyślnie
// nano) i przeładowuje go po zamknięciu edytora.
func (m *Manager) Edit() error {
	if _, err := os.Stat(m.inventoryPath); os.IsNotExist(err) {
		if err := CreateDefaultInventory(m.inventoryPath); err != nil {
			return fmt.Errorf("failed to create inventory file: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "nano"
	}
	if _, err := exec.LookPath(editor); err != nil {
		return fmt.Errorf("editor '%s' is not available on this system", editor)
	}

	cmd := exec.Command(editor, m.inventoryPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	return m.Load()
}

// FormatTable zwraca tabelę inwentarza z zamaskowanymi hasłami,
// posortowaną po nazwie hosta.
func (m *Manager) FormatTable() string {
	if len(m.devices) == 0 {
		return ""
	}

	headers := []string{"Hostname", "IP Address", "Protocols", "Username", "Password", "Port"}
	widths := []int{20, 15, 25, 15, 15, 18}

	separator := "+-" + joinColumns(widths, func(w int) string {
		return strings.Repeat("-", w)
	}) + "-+"

	headerRow := "| "
	for i, h := range headers {
		headerRow += padRight(h, widths[i])
		if i < len(headers)-1 {
			headerRow += " | "
		}
	}
	headerRow += " |"

	rows := []string{separator, headerRow, separator}

	hostnames := make([]string, 0, len(m.devices))
	for hostname := range m.devices {
		hostnames = append(hostnames, hostname)
	}
	sort.Strings(hostnames)

	for _, hostname := range hostnames {
		device := m.devices[hostname]
		cols := []string{
			device.Hostname,
			device.IP,
			strings.Join(device.Protocols, ", "),
			device.Username,
			maskPassword(device.Password),
			formatPorts(&device),
		}
		row := "| "
		for i, c := range cols {
			row += padRight(c, widths[i])
			if i < len(cols)-1 {
				row += " | "
			}
		}
		rows = append(rows, row+" |")
	}
	rows = append(rows, separator)

	return strings.Join(rows, "\n")
}

// maskPassword pokazuje tylko trzy pierwsze znaki hasła.
func maskPassword(password string) string {
	if password == "" {
		return ""
	}
	if len(password) <= 3 {
		return strings.Repeat("*", len(password))
	}
	return password[:3] + strings.Repeat("*", len(password)-3)
}

// formatPorts opisuje niestandardowe porty urządzenia.
func formatPorts(device *models.Device) string {
	switch {
	case device.SSHPort > 0 && device.TelnetPort > 0:
		return fmt.Sprintf("SSH:%d, Telnet:%d", device.SSHPort, device.TelnetPort)
	case device.SSHPort > 0:
		return fmt.Sprintf("SSH:%d", device.SSHPort)
	case device.TelnetPort > 0:
		return fmt.Sprintf("Telnet:%d", device.TelnetPort)
	default:
		return "Default"
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

func joinColumns(widths []int, render func(int) string) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = render(w)
	}
	return strings.Join(parts, "-+-")
}
