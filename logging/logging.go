package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lukehollenback/exprobe/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Stderr is the file name that sends log output to standard error instead of a file.
const Stderr = "-"

//
// Config describes where and how verbosely the application logs. Log output never goes to stdout so
// that the interactive console stays readable.
//
type Config struct {
	File       string `yaml:"file" json:"file"`
	Level      string `yaml:"level" json:"level"`
	MaxSize    int    `yaml:"max_size" json:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"` // days
	Compress   bool   `yaml:"compress" json:"compress"`
}

//
// Default returns the default log configuration.
//
func Default() Config {
	return Config{
		File:       constants.DefaultLogFile,
		Level:      "info",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

//
// New builds a JSON zap logger writing to a rotating file (or to stderr). The returned closer syncs
// and releases the underlying file.
//
func New(cfg Config) (*zap.Logger, io.Closer, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	w, err := writer(cfg)
	if err != nil {
		return nil, nil, err
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), level)
	logger := zap.New(core).With(zap.String("app", constants.AppName))

	return logger, closer{logger: logger, w: w}, nil
}

func writer(cfg Config) (io.WriteCloser, error) {
	if cfg.File == Stderr {
		return nopCloser{os.Stderr}, nil
	}

	file := cfg.File
	if file == "" {
		file = constants.DefaultLogFile
	}

	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	return &lumberjack.Logger{
		Filename:   file,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}, nil
}

type closer struct {
	logger *zap.Logger
	w      io.Closer
}

func (o closer) Close() error {
	_ = o.logger.Sync()

	return o.w.Close()
}
