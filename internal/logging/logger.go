package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/manea-palluat/flexfit-workout-sub001/pkg"
)

// Rotation controls the lumberjack log file rotation.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var DefaultRotation = Rotation{
	MaxSizeMB:  50,
	MaxBackups: 30,
	MaxAgeDays: 180,
}

type Params struct {
	// LogFileName is the rotated log file; ".log" is appended when missing.
	// Empty means logs only go to Output.
	LogFileName string
	// LogToStdout also copies file logs to Output.
	LogToStdout bool
	// Output defaults to os.Stdout. The CLI passes os.Stderr so its own
	// output stays clean.
	Output        io.Writer
	LogLevel      string
	LogFormatJSON bool
	ReportCaller  bool
	Rotation      *Rotation

	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

// Setup configures the global logrus logger. A log file whose directory does
// not exist is an error; nothing is created on the caller's behalf.
func Setup(params Params) error {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(ParseLevel(params.LogLevel))
	logrus.SetReportCaller(params.ReportCaller)

	if params.SentryEnabled {
		setupSentry(params)
	}

	out := params.Output
	if out == nil {
		out = os.Stdout
	}

	if params.LogFileName == "" {
		logrus.SetOutput(out)
		return nil
	}

	fileWriter, err := newFileWriter(params.LogFileName, params.Rotation)
	if err != nil {
		return err
	}
	if params.LogToStdout {
		logrus.SetOutput(pkg.NewCombinedWriter(out, fileWriter))
		logrus.Debugf("writing logs to [%s] and stdout", fileWriter.Filename)
	} else {
		logrus.SetOutput(fileWriter)
	}
	return nil
}

func newFileWriter(fileName string, rotation *Rotation) (*lumberjack.Logger, error) {
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}

	dir := filepath.Dir(fileName)
	exists, err := pkg.PathExists(dir, true)
	if err != nil {
		return nil, fmt.Errorf("logs dir: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("logs dir [%s] does not exist", dir)
	}

	if rotation == nil {
		rotation = &DefaultRotation
	}
	return &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		LocalTime:  false, // UTC
		Compress:   true,
	}, nil
}

func setupSentry(params Params) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              params.SentryDSN,
		Environment:      params.Environment,
		ServerName:       params.SentryServerName,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		logrus.Errorf("sentry init: %s", err)
		return
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infof("sentry enabled for [%s]", params.Environment)
}

// ParseLevel falls back to info for unknown level names.
func ParseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
