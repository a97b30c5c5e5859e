// cmd/jess/commands.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect <hostname>",
	Short: "Connect to a device from the inventory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		return app.connect(args[0])
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List inventory devices with masked passwords",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		table := app.inventory.FormatTable()
		if table == "" {
			app.notifier.Warning("Inventory is empty")
			return nil
		}
		fmt.Println(table)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the inventory file in $EDITOR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		if err := app.inventory.Edit(); err != nil {
			return err
		}
		app.notifier.Success("Inventory updated: %s", app.inventory.Path())
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Validate a file and install it as the active inventory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		if err := app.inventory.ImportInventory(args[0]); err != nil {
			return err
		}
		app.notifier.Success("Inventory loaded from %s", args[0])
		return nil
	},
}

func init() {
	connectCmd.Flags().IntVar(&flagSSHPort, "ssh-port", 0, "override the SSH port for this connection")
	connectCmd.Flags().IntVar(&flagTelnetPort, "telnet-port", 0, "override the Telnet port for this connection")
	connectCmd.Flags().StringVar(&flagProtocol, "protocol", "", "try only this protocol (ssh, ssh-modern, ssh-legacy, telnet)")
}
