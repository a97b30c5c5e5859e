// internal/ui/picker.go

package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"jess/internal/models"
)

// ErrPickerCancelled sygnalizuje wyjście z pickera bez wyboru urządzenia.
var ErrPickerCancelled = errors.New("device selection cancelled")

// deviceItem adaptuje rekord urządzenia do listy bubbles.
type deviceItem struct {
	device models.Device
}

func (i deviceItem) Title() string { return i.device.Hostname }

func (i deviceItem) Description() string {
	protocols := strings.Join(i.device.EffectiveProtocols(), ", ")
	return fmt.Sprintf("%s  [%s]", i.device.IP, protocols)
}

func (i deviceItem) FilterValue() string {
	return i.device.Hostname + " " + i.device.IP
}

type pickerKeyMap struct {
	Select key.Binding
	Quit   key.Binding
}

var pickerKeys = pickerKeyMap{
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "connect"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// pickerModel to interaktywna lista urządzeń z inwentarza.
type pickerModel struct {
	list     list.Model
	selected *models.Device
}

func newPickerModel(devices []models.Device) pickerModel {
	items := make([]list.Item, 0, len(devices))
	for _, device := range devices {
		items = append(items, deviceItem{device: device})
	}

	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, 0, 0)
	l.Title = "Select device"
	l.Styles.Title = TitleStyle
	l.SetShowStatusBar(false)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{pickerKeys.Select}
	}

	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		frameW, frameH := WindowStyle.GetFrameSize()
		m.list.SetSize(msg.Width-frameW, msg.Height-frameH)

	case tea.KeyMsg:
		// Podczas filtrowania klawisze należą do pola filtra.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, pickerKeys.Select):
			if item, ok := m.list.SelectedItem().(deviceItem); ok {
				device := item.device
				m.selected = &device
				return m, tea.Quit
			}
		case key.Matches(msg, pickerKeys.Quit):
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return WindowStyle.Render(m.list.View())
}

// PickDevice pokazuje listę urządzeń i zwraca wybrane. Zamknięcie listy
// bez wyboru zwraca ErrPickerCancelled.
func PickDevice(devices []models.Device) (*models.Device, error) {
	if len(devices) == 0 {
		return nil, errors.New("inventory contains no devices")
	}

	program := tea.NewProgram(newPickerModel(devices), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("device picker failed: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || m.selected == nil {
		return nil, ErrPickerCancelled
	}
	return m.selected, nil
}
