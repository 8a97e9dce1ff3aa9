package relmap

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/relmap/relmap/catalog"
	"github.com/relmap/relmap/clause"
	"github.com/relmap/relmap/coerce"
	"github.com/relmap/relmap/logger"
	"github.com/relmap/relmap/schema"
)

// Config relmap config
type Config struct {
	// NamingStrategy tables, columns naming strategy
	NamingStrategy schema.Namer
	// Logger
	Logger logger.Interface
	// Formats display formats of dates and numbers
	Formats coerce.Formats
	// Messages texts of generated markup, e.g. form.save
	Messages catalog.Catalog

	cacheStore *schema.Cache
}

// Generator renders statements for models, safe for concurrent use
type Generator struct {
	*Config
	Context context.Context

	coercer *coerce.Coercer
}

// Open initialize a generator from config
func Open(config *Config) (*Generator, error) {
	if config == nil {
		config = &Config{}
	}

	if config.NamingStrategy == nil {
		config.NamingStrategy = schema.NamingStrategy{}
	}

	if config.Logger == nil {
		config.Logger = logger.Default
	}

	if config.Messages == nil {
		config.Messages = catalog.Catalog{}
	}

	if config.cacheStore == nil {
		config.cacheStore = &schema.Cache{}
	}

	return &Generator{
		Config:  config,
		Context: context.Background(),
		coercer: coerce.New(config.Formats),
	}, nil
}

// WithContext returns a generator tracing with ctx
func (g *Generator) WithContext(ctx context.Context) *Generator {
	tx := *g
	tx.Context = ctx
	return &tx
}

// Coercer display coercion of the generator's formats
func (g *Generator) Coercer() *coerce.Coercer {
	return g.coercer
}

// Parse resolves the schema of value through the generator's cache
func (g *Generator) Parse(value interface{}) (*schema.Schema, error) {
	return schema.Parse(value, g.cacheStore, g.NamingStrategy)
}

// Insert renders INSERT INTO <table> (<columns>) VALUES(<values>) for value
func (g *Generator) Insert(value interface{}) (string, error) {
	return g.generate(value, func(stmt *Statement) error {
		fields := stmt.Schema.InsertFields()
		if len(fields) == 0 {
			return fmt.Errorf("%w: %v has no fields to insert", ErrUnsupportedType, stmt.Schema)
		}

		values := clause.Values{
			Columns: make([]clause.Column, 0, len(fields)),
			Values:  make([]interface{}, 0, len(fields)),
		}
		for _, field := range fields {
			v, err := field.ValueOf(stmt.ReflectValue)
			if err != nil {
				return err
			}
			values.Columns = append(values.Columns, clause.Column{Name: field.DBName})
			values.Values = append(values.Values, FieldValue{Field: field, Value: v})
		}

		stmt.AddClause(clause.Insert{Table: clause.Table{Name: stmt.Table}})
		stmt.AddClause(values)
		stmt.Build("INSERT", "VALUES")
		return nil
	})
}

// Update renders UPDATE <table> SET <assignments> WHERE <identity conditions> for value.
// A schema without identity fields yields a statement ending in "WHERE ".
func (g *Generator) Update(value interface{}) (string, error) {
	return g.generate(value, func(stmt *Statement) error {
		fields := stmt.Schema.UpdateFields()
		if len(fields) == 0 {
			return fmt.Errorf("%w: %v has no fields to update", ErrUnsupportedType, stmt.Schema)
		}

		set, err := stmt.assignments(fields)
		if err != nil {
			return err
		}
		where, err := stmt.conditions()
		if err != nil {
			return err
		}

		stmt.AddClause(clause.Update{Table: clause.Table{Name: stmt.Table}})
		stmt.AddClause(set)
		stmt.AddClause(where)
		stmt.Build("UPDATE", "SET", "WHERE")
		return nil
	})
}

// Delete renders DELETE FROM <table> WHERE <identity conditions> for value
func (g *Generator) Delete(value interface{}) (string, error) {
	return g.generate(value, func(stmt *Statement) error {
		where, err := stmt.conditions()
		if err != nil {
			return err
		}

		stmt.AddClause(clause.Delete{})
		stmt.AddClause(clause.From{Table: clause.Table{Name: stmt.Table}})
		stmt.AddClause(where)
		stmt.Build("DELETE", "FROM", "WHERE")
		return nil
	})
}

func (g *Generator) generate(value interface{}, build func(*Statement) error) (sql string, err error) {
	stmt, err := g.Statement(value)
	if err != nil {
		return "", err
	}

	begin := time.Now()
	defer func() {
		g.Logger.Trace(stmt.Context, begin, func() (string, int64) {
			return stmt.SQL.String(), stmt.Vars
		}, err)
	}()

	if err = build(stmt); err != nil {
		return "", err
	}
	return stmt.SQL.String(), stmt.Error
}

// Assign converts params text and sets it on the fields of value, which must be a pointer
// or a record. Params are keyed by column name, field name or lower-cased "<type>.<field>".
// Fields without a param are left untouched; conversion failures are joined in the error.
func (g *Generator) Assign(value interface{}, params map[string]string) error {
	s, err := g.Parse(value)
	if err != nil {
		return err
	}

	var (
		rv     = reflect.ValueOf(value)
		prefix = strings.ToLower(s.Name) + "."
		errs   []error
	)

	for _, field := range s.Fields {
		text, ok := lookupParam(params, field.DBName, field.Name, prefix+strings.ToLower(field.Name))
		if !ok {
			continue
		}

		v, err := g.coercer.FromString(field, text)
		if err == nil {
			err = field.Set(rv, v)
		}
		if err != nil {
			g.Logger.Warn(g.Context, "failed to assign %v: %v", field.Name, err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func lookupParam(params map[string]string, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := params[key]; ok {
			return v, true
		}
	}
	return "", false
}
