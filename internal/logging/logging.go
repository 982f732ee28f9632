package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/VtlBz/foodgram-project/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the standard logrus logger from the application config.
// Output always goes to stdout; when LogFile is set it is also written to a
// rotating file.
func Init(cfg *config.Config) {
	logrus.SetLevel(parseLevel(cfg.LogLevel))
	logrus.SetFormatter(formatter(cfg.LogFormat))

	writers := []io.Writer{os.Stdout}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			logrus.WithError(err).Warn("Could not create log directory")
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSize, // MB
			MaxAge:     cfg.LogMaxAge,  // days
			MaxBackups: cfg.LogMaxBackups,
			LocalTime:  true,
			Compress:   true,
		})
	}

	logrus.SetOutput(io.MultiWriter(writers...))
}

func parseLevel(name string) logrus.Level {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func formatter(name string) logrus.Formatter {
	if name == "text" {
		return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"}
	}
	return &logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"}
}
