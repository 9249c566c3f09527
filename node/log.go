package node

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"tessera.dev/node/accounts"
	"tessera.dev/node/consensus"
	"tessera.dev/node/node/store"
)

// logWriter forwards backend output to stdout and to the rotating log
// file when one has been initialized.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

var (
	backendLog = slog.NewBackend(logWriter{})
	logRotator *rotator.Rotator

	nodeLog = backendLog.Logger("NODE")
	cnssLog = backendLog.Logger("CNSS")
	acctLog = backendLog.Logger("ACCT")
	storLog = backendLog.Logger("STOR")
)

func init() {
	consensus.UseLogger(cnssLog)
	accounts.UseLogger(acctLog)
	store.UseLogger(storLog)
}

// Log returns the node subsystem logger.
func Log() slog.Logger { return nodeLog }

// subsystemLoggers maps subsystem tags to their loggers.
var subsystemLoggers = map[string]slog.Logger{
	"NODE": nodeLog,
	"CNSS": cnssLog,
	"ACCT": acctLog,
	"STOR": storLog,
}

// InitLogRotator starts the rotating log file. It must run before any
// output is expected in the file; output before that only reaches stdout.
func InitLogRotator(logFile string) error {
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return fmt.Errorf("create log directory %q: %w", logDir, err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("create log rotator: %w", err)
	}
	logRotator = r
	return nil
}

// CloseLogRotator flushes and stops the rotating log file.
func CloseLogRotator() {
	if logRotator != nil {
		logRotator.Close()
		logRotator = nil
	}
}

// SetLogLevels applies a level to every subsystem logger.
func SetLogLevels(level string) error {
	lvl, ok := slog.LevelFromString(level)
	if !ok {
		return fmt.Errorf("invalid log level %q", level)
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(lvl)
	}
	return nil
}
