// cmd/jess/root.go

package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jess/internal/connect"
	"jess/internal/inventory"
	"jess/internal/logging"
	"jess/internal/ui"
)

var (
	flagInventory  string
	flagLogLevel   string
	flagSSHPort    int
	flagTelnetPort int
	flagProtocol   string
)

var rootCmd = &cobra.Command{
	Use:   "jess [hostname]",
	Short: "Terminal connection manager for network devices",
	Long: "jess connects to network devices over SSH (modern or legacy\n" +
		"algorithm profiles) with Telnet as a last resort, following the\n" +
		"protocol chain configured per device in the inventory.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			return app.connect(args[0])
		}

		// Bez argumentów pokazujemy interaktywną listę urządzeń.
		device, err := ui.PickDevice(app.inventory.Devices())
		if err != nil {
			if errors.Is(err, ui.ErrPickerCancelled) {
				return nil
			}
			return err
		}
		return app.connect(device.Hostname)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagInventory, "inventory", "i", "", "path to the inventory file (default ~/.jess/inventory.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.Flags().IntVar(&flagSSHPort, "ssh-port", 0, "override the SSH port for this connection")
	rootCmd.Flags().IntVar(&flagTelnetPort, "telnet-port", 0, "override the Telnet port for this connection")
	rootCmd.Flags().StringVar(&flagProtocol, "protocol", "", "try only this protocol (ssh, ssh-modern, ssh-legacy, telnet)")

	viper.SetEnvPrefix("JESS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("inventory", rootCmd.PersistentFlags().Lookup("inventory"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(connectCmd, listCmd, editCmd, loadCmd, copyCmd)
}

// app spina razem inwentarz, logger i notifier dla wszystkich poleceń.
type app struct {
	inventory *inventory.Manager
	notifier  *ui.ConsoleNotifier
	log       *logrus.Entry
}

// newApp wczytuje inwentarz i konfiguruje logowanie do pliku.
func newApp() (*app, error) {
	notifier := ui.NewConsoleNotifier()

	inventoryPath := viper.GetString("inventory")
	manager := inventory.NewManager(inventoryPath)

	logger, err := logging.Init(filepath.Dir(manager.Path()), viper.GetString("log-level"))
	if err != nil {
		// Brak logów diagnostycznych nie blokuje pracy narzędzia.
		notifier.Warning("Logging disabled: %v", err)
	}
	entry := logger.WithField("component", "jess")

	if err := manager.Load(); err != nil {
		notifier.Error("%v", err)
		return nil, err
	}

	for _, device := range manager.Devices() {
		d := device
		for _, tag := range inventory.UnknownProtocols(&d) {
			notifier.Warning("Device '%s' lists unknown protocol '%s'", device.Hostname, tag)
		}
	}

	return &app{
		inventory: manager,
		notifier:  notifier,
		log:       entry,
	}, nil
}

// connect realizuje łańcuch połączeń i przekazuje terminal do sesji.
func (a *app) connect(hostname string) error {
	manager := connect.NewManager(a.inventory, a.notifier, a.log)

	result := manager.Connect(hostname, connect.ConnectOptions{
		SSHPort:    flagSSHPort,
		TelnetPort: flagTelnetPort,
		Protocol:   flagProtocol,
	})
	if !result.Success {
		return fmt.Errorf("connection failed: %s", result.Message)
	}
	a.notifier.Success("%s", result.Message)

	return runSession(manager, a.log, result.Session, result.Protocol)
}

// sessionRunner pozwala podmienić przekazanie sesji w testach.
type sessionRunner interface {
	TransferToSession(session connect.Session, protocol string) error
}

// runSession oddaje terminal ustanowionej sesji. Błędy pętli są już
// zgłoszone operatorowi wewnątrz TransferToSession i nie zmieniają kodu
// wyjścia - połączenie doszło do skutku.
func runSession(runner sessionRunner, log *logrus.Entry, session connect.Session, protocol string) error {
	if err := runner.TransferToSession(session, protocol); err != nil {
		log.WithError(err).Debug("session ended with error")
	}
	return nil
}
