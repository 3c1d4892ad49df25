package logging

import (
	"io" // Writers
	"os" // Stdout

	"learnshop/internal/config" // Application configuration

	"github.com/natefinch/lumberjack" // Rotating log files
	"github.com/sirupsen/logrus"      // Logrus for structured logging
)

// Setup configures the global logrus logger from the application config
func Setup(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel) // Parse configured level
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	// Pick output format
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		// Tee stdout with a rotating file
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile, // Log file path
			MaxSize:    50,          // Megabytes before rotation
			MaxBackups: 5,           // Rotated files kept
			MaxAge:     28,          // Days
			Compress:   true,        // Gzip rotated files
		})
	}
	logrus.SetOutput(out)
	return nil
}
