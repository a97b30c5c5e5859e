// internal/transfer/transfer.go

package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	scp "github.com/bramvdbogaerde/go-scp"
	"github.com/pkg/sftp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

// Progress reprezentuje postęp transferu pliku
type Progress struct {
	FileName         string
	TotalBytes       int64
	TransferredBytes int64
	StartTime        time.Time
}

// FileTransfer kopiuje pliki przez nawiązane połączenie SSH. Podstawowym
// kanałem jest SFTP; gdy serwer nie udostępnia podsystemu sftp (typowe dla
// starszych urządzeń sieciowych), transfer przechodzi na SCP.
type FileTransfer struct {
	sshClient  *ssh.Client
	sftpClient *sftp.Client
	log        *logrus.Entry
}

// NewFileTransfer tworzy instancję transferu na istniejącym kliencie SSH.
func NewFileTransfer(client *ssh.Client, log *logrus.Entry) *FileTransfer {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &FileTransfer{
		sshClient: client,
		log:       log,
	}
}

// sftp zwraca klienta SFTP, otwierając go przy pierwszym użyciu.
func (ft *FileTransfer) sftp() (*sftp.Client, error) {
	if ft.sftpClient != nil {
		return ft.sftpClient, nil
	}
	client, err := sftp.NewClient(ft.sshClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create SFTP client: %w", err)
	}
	ft.sftpClient = client
	return client, nil
}

// Upload kopiuje lokalny plik na urządzenie.
func (ft *FileTransfer) Upload(ctx context.Context, localPath, remotePath string, progressChan chan<- Progress) error {
	if err := ft.uploadSFTP(localPath, remotePath, progressChan); err != nil {
		ft.log.WithField("error", err).Debug("SFTP upload failed, falling back to SCP")
		return ft.uploadSCP(ctx, localPath, remotePath)
	}
	return nil
}

// Download kopiuje plik z urządzenia na dysk lokalny.
func (ft *FileTransfer) Download(ctx context.Context, remotePath, localPath string, progressChan chan<- Progress) error {
	if err := ft.downloadSFTP(remotePath, localPath, progressChan); err != nil {
		ft.log.WithField("error", err).Debug("SFTP download failed, falling back to SCP")
		return ft.downloadSCP(ctx, remotePath, localPath)
	}
	return nil
}

func (ft *FileTransfer) uploadSFTP(localPath, remotePath string, progressChan chan<- Progress) error {
	client, err := ft.sftp()
	if err != nil {
		return err
	}

	srcFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("failed to create remote file: %w", err)
	}
	defer dstFile.Close()

	fileInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}

	if err := copyWithProgress(dstFile, srcFile, Progress{
		FileName:   filepath.Base(localPath),
		TotalBytes: fileInfo.Size(),
		StartTime:  time.Now(),
	}, progressChan); err != nil {
		return err
	}

	if err := dstFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync remote file: %w", err)
	}
	return nil
}

func (ft *FileTransfer) downloadSFTP(remotePath, localPath string, progressChan chan<- Progress) error {
	client, err := ft.sftp()
	if err != nil {
		return err
	}

	srcFile, err := client.Open(remotePath)
	if err != nil {
		return fmt.Errorf("failed to open remote file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}
	defer dstFile.Close()

	fileInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}

	if err := copyWithProgress(dstFile, srcFile, Progress{
		FileName:   filepath.Base(remotePath),
		TotalBytes: fileInfo.Size(),
		StartTime:  time.Now(),
	}, progressChan); err != nil {
		return err
	}

	if err := dstFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync local file: %w", err)
	}
	return nil
}

func (ft *FileTransfer) uploadSCP(ctx context.Context, localPath, remotePath string) error {
	client, err := scp.NewClientBySSH(ft.sshClient)
	if err != nil {
		return fmt.Errorf("failed to create SCP client: %w", err)
	}
	defer client.Close()

	srcFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer srcFile.Close()

	if err := client.CopyFromFile(ctx, *srcFile, remotePath, "0644"); err != nil {
		return fmt.Errorf("SCP upload failed: %w", err)
	}
	return nil
}

func (ft *FileTransfer) downloadSCP(ctx context.Context, remotePath, localPath string) error {
	client, err := scp.NewClientBySSH(ft.sshClient)
	if err != nil {
		return fmt.Errorf("failed to create SCP client: %w", err)
	}
	defer client.Close()

	dstFile, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}
	defer dstFile.Close()

	if err := client.CopyFromRemote(ctx, dstFile, remotePath); err != nil {
		return fmt.Errorf("SCP download failed: %w", err)
	}
	return nil
}

// copyWithProgress kopiuje strumień raportując postęp bez blokowania,
// gdy odbiorca nie nadąża.
func copyWithProgress(dst io.Writer, src io.Reader, progress Progress, progressChan chan<- Progress) error {
	buf := make([]byte, 128*1024)
	for {
		n, err := src.Read(buf)
		if err != nil && err != io.EOF {
			return fmt.Errorf("read error: %w", err)
		}

		if n > 0 {
			written, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				return fmt.Errorf("write error: %w", writeErr)
			}
			if written != n {
				return fmt.Errorf("incomplete write: wrote %d bytes instead of %d", written, n)
			}

			progress.TransferredBytes += int64(n)
			if progressChan != nil {
				select {
				case progressChan <- progress:
				default:
				}
			}
		}

		if err == io.EOF {
			break
		}
	}

	if progressChan != nil {
		select {
		case progressChan <- progress:
		default:
		}
	}
	return nil
}

// Close zamyka klienta SFTP jeśli był otwarty. Klient SSH pozostaje
// własnością wywołującego.
func (ft *FileTransfer) Close() error {
	if ft.sftpClient != nil {
		if err := ft.sftpClient.Close(); err != nil {
			return fmt.Errorf("error closing SFTP client: %w", err)
		}
		ft.sftpClient = nil
	}
	return nil
}
