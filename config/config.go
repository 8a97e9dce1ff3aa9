package config

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/relmap/relmap"
	"github.com/relmap/relmap/catalog"
	"github.com/relmap/relmap/coerce"
	"github.com/relmap/relmap/logger"
	"github.com/relmap/relmap/schema"
)

// File relmap configuration file
type File struct {
	// DateFormat display date pattern such as dd/MM/yyyy
	DateFormat     string `yaml:"date_format" toml:"date_format"`
	Locale         string `yaml:"locale" toml:"locale" validate:"omitempty,bcp47_language_tag"`
	FractionDigits int    `yaml:"fraction_digits" toml:"fraction_digits" validate:"min=0,max=12"`
	Naming         Naming `yaml:"naming" toml:"naming"`
	Log            Log    `yaml:"log" toml:"log"`
	// Messages path of a key=value message file
	Messages string `yaml:"messages" toml:"messages" validate:"omitempty,file"`
}

type Naming struct {
	TablePrefix    string `yaml:"table_prefix" toml:"table_prefix"`
	SnakeCaseTable bool   `yaml:"snake_case_table" toml:"snake_case_table"`
	PluralTable    bool   `yaml:"plural_table" toml:"plural_table"`
}

type Log struct {
	Level   string `yaml:"level" toml:"level" validate:"omitempty,oneof=silent error warn info"`
	Backend string `yaml:"backend" toml:"backend" validate:"omitempty,oneof=std zap logrus zerolog slog"`
	// SlowThreshold duration text such as 10ms
	SlowThreshold string `yaml:"slow_threshold" toml:"slow_threshold"`
	Colorful      bool   `yaml:"colorful" toml:"colorful"`
}

// Load reads a YAML or TOML file, chosen by extension, and validates it
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var file File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&file); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode YAML config %v: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &file); err != nil {
			return nil, fmt.Errorf("failed to decode TOML config %v: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Validate checks field constraints
func (f *File) Validate() error {
	if err := validator.New().Struct(f); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := f.slowThreshold(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (f *File) slowThreshold() (time.Duration, error) {
	if f.Log.SlowThreshold == "" {
		return 0, nil
	}
	return time.ParseDuration(f.Log.SlowThreshold)
}

// Build returns a relmap config logging to stderr
func (f *File) Build() (*relmap.Config, error) {
	return f.BuildWith(os.Stderr)
}

// BuildWith returns a relmap config logging to out
func (f *File) BuildWith(out io.Writer) (*relmap.Config, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	formats := coerce.Formats{FractionDigits: f.FractionDigits}
	if f.DateFormat != "" {
		formats.DateLayout = coerce.Layout(f.DateFormat)
	}
	if f.Locale != "" {
		tag, err := language.Parse(f.Locale)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", f.Locale, err)
		}
		formats.Locale = tag
	}

	messages := catalog.Catalog{}
	if f.Messages != "" {
		loaded, err := catalog.Load(f.Messages)
		if err != nil {
			return nil, err
		}
		messages = loaded
	}

	l, err := f.Logger(out)
	if err != nil {
		return nil, err
	}

	return &relmap.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:    f.Naming.TablePrefix,
			SnakeCaseTable: f.Naming.SnakeCaseTable,
			PluralTable:    f.Naming.PluralTable,
		},
		Logger:   l,
		Formats:  formats,
		Messages: messages,
	}, nil
}

// Logger returns the configured backend writing to out
func (f *File) Logger(out io.Writer) (logger.Interface, error) {
	threshold, err := f.slowThreshold()
	if err != nil {
		return nil, err
	}

	config := logger.Config{
		SlowThreshold: threshold,
		Colorful:      f.Log.Colorful,
		LogLevel:      logger.ParseLevel(f.Log.Level),
	}

	switch f.Log.Backend {
	case "zap":
		core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(out), logger.ZapLevel(config.LogLevel))
		return logger.NewZapLogger(zap.New(core), config), nil
	case "logrus":
		l := logrus.New()
		l.SetOutput(out)
		l.SetLevel(logrus.DebugLevel)
		return logger.NewLogrusLogger(l, config), nil
	case "zerolog":
		return logger.NewZerologLogger(zerolog.New(out).With().Timestamp().Logger(), config), nil
	case "slog":
		return logger.NewSlogLogger(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})), config), nil
	default:
		return logger.New(log.New(out, "\r\n", log.LstdFlags), config), nil
	}
}
