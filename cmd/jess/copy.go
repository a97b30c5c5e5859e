// cmd/jess/copy.go

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jess/internal/connect"
	"jess/internal/models"
	"jess/internal/transfer"
)

var copyCmd = &cobra.Command{
	Use:   "copy <source> <target>",
	Short: "Copy a file to or from a device (SFTP with SCP fallback)",
	Long: "Copy a file between the local machine and an inventory device.\n" +
		"Exactly one endpoint must use the hostname:path form, for example:\n" +
		"  jess copy backup.cfg example-router:/flash/backup.cfg\n" +
		"  jess copy example-router:/flash/running.cfg ./running.cfg",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		return app.copyFile(args[0], args[1])
	},
}

// splitRemotePath rozbija endpoint postaci host:ścieżka.
func splitRemotePath(endpoint string) (host, path string, remote bool) {
	idx := strings.Index(endpoint, ":")
	if idx <= 0 {
		return "", endpoint, false
	}
	return endpoint[:idx], endpoint[idx+1:], true
}

func (a *app) copyFile(source, target string) error {
	srcHost, srcPath, srcRemote := splitRemotePath(source)
	dstHost, dstPath, dstRemote := splitRemotePath(target)

	if srcRemote == dstRemote {
		return fmt.Errorf("exactly one endpoint must use the hostname:path form")
	}

	hostname := srcHost
	if dstRemote {
		hostname = dstHost
	}

	// Transfer plików wymaga SSH; znacznik "ssh" obejmuje oba profile.
	manager := connect.NewManager(a.inventory, a.notifier, a.log)
	result := manager.Connect(hostname, connect.ConnectOptions{
		SSHPort:  flagSSHPort,
		Protocol: models.ProtocolSSH,
	})
	if !result.Success {
		return fmt.Errorf("connection failed: %s", result.Message)
	}
	defer result.Session.Close()

	sshSession, ok := result.Session.(*connect.SSHSession)
	if !ok {
		return fmt.Errorf("file copy requires an SSH connection")
	}

	ft := transfer.NewFileTransfer(sshSession.Client(), a.log)
	defer ft.Close()

	progressChan := make(chan transfer.Progress, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progressChan {
			fmt.Printf("\r%s: %d/%d bytes", p.FileName, p.TransferredBytes, p.TotalBytes)
		}
		fmt.Println()
	}()

	var copyErr error
	if dstRemote {
		copyErr = ft.Upload(context.Background(), srcPath, dstPath, progressChan)
	} else {
		copyErr = ft.Download(context.Background(), srcPath, dstPath, progressChan)
	}
	close(progressChan)
	<-done

	if copyErr != nil {
		return copyErr
	}
	a.notifier.Success("Copied %s to %s", source, target)
	return nil
}
