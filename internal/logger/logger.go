package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger points the default slog logger at stdout plus a rotating file in
// logDir and returns a request logger config writing to the same place.
func NewLogger(logDir string) (*fiberLogger.Config, io.Closer, error) {
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return nil, nil, err
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "app.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	multiWriter := io.MultiWriter(os.Stdout, logFile)
	slog.SetDefault(slog.New(slog.NewTextHandler(multiWriter, nil)))

	config := &fiberLogger.Config{
		Output:     multiWriter,
		Format:     "${time} | ${status} | ${latency} | ${method} | ${path} | ${error}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}

	return config, logFile, nil
}
