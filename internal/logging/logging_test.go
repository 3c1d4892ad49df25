package logging

import (
	"os"
	"path/filepath"
	"testing"

	"learnshop/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	})

	logFile := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Setup(&config.Config{LogLevel: "debug", LogFormat: "json", LogFile: logFile}))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)

	logrus.WithField("component", "test").Info("hello")
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)

	assert.Error(t, Setup(&config.Config{LogLevel: "loud", LogFormat: "text"}))
}
