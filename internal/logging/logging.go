// internal/logging/logging.go

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultLogDir      = "logs"
	DefaultLogFileName = "jess.log"
)

// Init konfiguruje logger diagnostyczny piszący wyłącznie do pliku
// z rotacją. Konsola pozostaje nietknięta - w trakcie sesji terminal
// jest w trybie surowym i każdy zapis na stdout psułby obraz.
func Init(configDir, level string) (*logrus.Logger, error) {
	logger := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	logDir := filepath.Join(configDir, DefaultLogDir)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		// Bez katalogu logów działamy dalej, tylko bez diagnostyki.
		return Discard(), fmt.Errorf("failed to create log directory: %w", err)
	}

	logger.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, DefaultLogFileName),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     30, // dni
		Compress:   true,
	})

	return logger, nil
}

// Discard zwraca logger odrzucający wszystko - dla testów i wczesnej
// fazy startu, zanim znana jest konfiguracja.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
