package logging

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Loggers bundles the process loggers. App writes general logs to app.log
// and stdout, and mirrors errors into error.log. Request is the raw sink for
// the HTTP access log.
type Loggers struct {
	App     *zap.Logger
	Request io.Writer

	files []*lumberjack.Logger
}

// New creates dir if needed and opens rotating log files inside it.
func New(dir string) (*Loggers, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	appFile := &lumberjack.Logger{Filename: filepath.Join(dir, "app.log"), MaxSize: 100, MaxAge: 28, Compress: true}
	errorFile := &lumberjack.Logger{Filename: filepath.Join(dir, "error.log"), MaxSize: 100, MaxAge: 30, Compress: true}
	requestFile := &lumberjack.Logger{Filename: filepath.Join(dir, "request.log"), MaxSize: 50, MaxAge: 7, Compress: true}

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.AddSync(appFile), zap.InfoLevel),
		zapcore.NewCore(encoder, zapcore.AddSync(errorFile), zap.ErrorLevel),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zap.InfoLevel),
	)

	return &Loggers{
		App:     zap.New(core, zap.AddCaller()),
		Request: requestFile,
		files:   []*lumberjack.Logger{appFile, errorFile, requestFile},
	}, nil
}

// Nop returns loggers that discard everything.
func Nop() *Loggers {
	return &Loggers{App: zap.NewNop(), Request: io.Discard}
}

// Close flushes the app logger and closes the log files.
func (l *Loggers) Close() error {
	// Sync on stdout fails on some platforms; only file errors matter.
	_ = l.App.Sync()
	var errs []error
	for _, f := range l.files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// LogDuration lets you do: defer logging.LogDuration(logger, "Name")()
func LogDuration(logger *zap.Logger, name string) func() {
	start := time.Now()
	return func() {
		logger.Debug("timed",
			zap.String("func", name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}
}
