package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Logger is the process logger. It writes to stderr until InitLogger
// points it at a log file as well.
var Logger = log.New()

// InitLogger tees Logger into <dir>/<tag>.log and stderr. The returned
// closer flushes the file.
func InitLogger(dir, tag string, verbose bool) (io.Closer, error) {
	if verbose {
		Logger.SetLevel(log.DebugLevel)
	}
	Logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create log dir %s", dir)
	}
	fname := filepath.Join(dir, fmt.Sprintf("%s.log", tag))
	f, err := os.Create(fname)
	if err != nil {
		return nil, errors.Wrapf(err, "create log file %s", fname)
	}
	Logger.SetOutput(io.MultiWriter(os.Stderr, f))
	return f, nil
}
