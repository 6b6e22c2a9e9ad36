package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	logFileName = "scratchrun.log"
	maxLogSize  = 10 * 1024 * 1024 // 10MB
)

// setupLogging returns a file logger under dir when debug is set, and a discarding logger
// otherwise; logs never go to stdout or stderr since the terminal host owns the screen
func setupLogging(dir string, debug bool) (*slog.Logger, *os.File) {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}

	logPath := filepath.Join(dir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(dir, fmt.Sprintf("scratchrun_%s.log", time.Now().Format("20060102_150405")))
		_ = os.Rename(logPath, rotated)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("logging started", "pid", os.Getpid())
	return logger, f
}
