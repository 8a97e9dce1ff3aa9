package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/relmap/relmap/schema"
)

// modelFile a schema definition and the records to render with it
type modelFile struct {
	Name    string                   `yaml:"name" toml:"name"`
	Table   string                   `yaml:"table" toml:"table"`
	Schema  string                   `yaml:"schema" toml:"schema"`
	Fields  []fieldFile              `yaml:"fields" toml:"fields"`
	Records []map[string]interface{} `yaml:"records" toml:"records"`
}

type fieldFile struct {
	Name          string          `yaml:"name" toml:"name"`
	Column        string          `yaml:"column" toml:"column"`
	Kind          string          `yaml:"kind" toml:"kind"`
	Identity      bool            `yaml:"identity" toml:"identity"`
	AutoIncrement bool            `yaml:"auto_increment" toml:"auto_increment"`
	Transient     bool            `yaml:"transient" toml:"transient"`
	Bool          []string        `yaml:"bool" toml:"bool"`
	ForeignKey    *foreignKeyFile `yaml:"foreign_key" toml:"foreign_key"`
}

type foreignKeyFile struct {
	Table       string `yaml:"table" toml:"table"`
	Description string `yaml:"description" toml:"description"`
	Key         string `yaml:"key" toml:"key"`
}

var kinds = map[string]schema.DataType{
	"":         schema.String,
	"string":   schema.String,
	"text":     schema.String,
	"int":      schema.Int,
	"integer":  schema.Int,
	"uint":     schema.Uint,
	"float":    schema.Float,
	"decimal":  schema.Float,
	"bool":     schema.Bool,
	"boolean":  schema.Bool,
	"date":     schema.Time,
	"time":     schema.Time,
	"datetime": schema.Time,
	"bytes":    schema.Bytes,
}

func loadModel(path string) (*modelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	var model modelFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&model); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode model %v: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &model); err != nil {
			return nil, fmt.Errorf("failed to decode model %v: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported model format %q", ext)
	}
	return &model, nil
}

// define registers the model's schema and wraps its records
func (m *modelFile) define(namer schema.Namer) (*schema.Schema, []schema.Record, error) {
	def := schema.Definition{Name: m.Name, Table: m.Table, Schema: m.Schema}
	for _, f := range m.Fields {
		kind, ok := kinds[strings.ToLower(f.Kind)]
		if !ok {
			return nil, nil, fmt.Errorf("%w: field %v has unknown kind %q", schema.ErrUnsupportedType, f.Name, f.Kind)
		}

		fd := schema.FieldDefinition{
			Name:          f.Name,
			Column:        f.Column,
			Type:          kind,
			Identity:      f.Identity,
			AutoIncrement: f.AutoIncrement,
			Transient:     f.Transient,
		}
		if len(f.Bool) == 2 {
			fd.Boolean = &schema.BooleanText{True: f.Bool[0], False: f.Bool[1]}
		}
		if f.ForeignKey != nil {
			fd.ForeignKey = &schema.ForeignKey{Table: f.ForeignKey.Table, DescriptionColumn: f.ForeignKey.Description, KeyColumn: f.ForeignKey.Key}
		}
		def.Fields = append(def.Fields, fd)
	}

	s, err := schema.Define(def, namer)
	if err != nil {
		return nil, nil, err
	}

	records := make([]schema.Record, 0, len(m.Records))
	for _, values := range m.Records {
		records = append(records, s.NewRecord(values))
	}
	return s, records, nil
}
