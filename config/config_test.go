package config_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/relmap/relmap/config"
	"github.com/relmap/relmap/logger"
	"github.com/relmap/relmap/schema"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	messages := writeFile(t, "messages.ini", "[form]\nsave = Gravar\n")
	path := writeFile(t, "relmap.yaml", `
date_format: yyyy/MM/dd
locale: en-US
fraction_digits: 3
naming:
  table_prefix: tb_
  snake_case_table: true
log:
  level: info
  backend: zerolog
  slow_threshold: 250ms
messages: `+messages+"\n")

	file, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "zerolog", file.Log.Backend)

	var out bytes.Buffer
	cfg, err := file.BuildWith(&out)
	require.NoError(t, err)

	assert.Equal(t, "2006/01/02", cfg.Formats.DateLayout)
	assert.Equal(t, language.AmericanEnglish, cfg.Formats.Locale)
	assert.Equal(t, 3, cfg.Formats.FractionDigits)
	assert.Equal(t, schema.NamingStrategy{TablePrefix: "tb_", SnakeCaseTable: true}, cfg.NamingStrategy)
	assert.Equal(t, "Gravar", cfg.Messages.Get("form.save", "Save"))

	cfg.Logger.Info(context.Background(), "hello %v", "relmap")
	assert.Contains(t, out.String(), "hello relmap")
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "relmap.toml", `
date_format = "dd/MM/yyyy"

[naming]
plural_table = true

[log]
level = "silent"
`)

	file, err := config.Load(path)
	require.NoError(t, err)

	cfg, err := file.BuildWith(&bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "02/01/2006", cfg.Formats.DateLayout)
	assert.True(t, cfg.NamingStrategy.(schema.NamingStrategy).PluralTable)
}

func TestLoadInvalid(t *testing.T) {
	checks := map[string]string{
		"backend.yaml":  "log:\n  backend: syslog\n",
		"level.yaml":    "log:\n  level: verbose\n",
		"slow.yaml":     "log:\n  slow_threshold: soon\n",
		"locale.yaml":   "locale: \"not a locale!\"\n",
		"digits.yaml":   "fraction_digits: -1\n",
		"messages.yaml": "messages: /does/not/exist.ini\n",
		"unknown.yaml":  "colour: blue\n",
		"relmap.json":   "{}",
		"broken.toml":   "date_format = ",
	}

	for name, content := range checks {
		_, err := config.Load(writeFile(t, name, content))
		assert.Error(t, err, name)
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoggerBackends(t *testing.T) {
	for _, backend := range []string{"", "std", "zap", "logrus", "zerolog", "slog"} {
		var out bytes.Buffer
		file := config.File{Log: config.Log{Level: "warn", Backend: backend}}

		l, err := file.Logger(&out)
		require.NoError(t, err, backend)

		l.Warn(context.Background(), "balance rendered as %v", "null")
		l.Info(context.Background(), "hidden")
		assert.Contains(t, out.String(), "balance rendered as null", backend)
		assert.NotContains(t, out.String(), "hidden", backend)

		out.Reset()
		l.LogMode(logger.Silent).Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, nil)
		assert.Empty(t, out.String(), backend)
	}
}
