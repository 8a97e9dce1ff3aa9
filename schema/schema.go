package schema

import (
	"errors"
	"fmt"
	"go/ast"
	"reflect"
)

var (
	// ErrUnsupportedType the model is not a struct or exposes no accessible fields
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrAccessorInvocation a field accessor is missing, was handed a foreign model or failed
	ErrAccessorInvocation = errors.New("accessor invocation failed")
	// ErrInvalidNumberFormat number text is not a number, or does not fit the field
	ErrInvalidNumberFormat = errors.New("invalid number format")
)

// Tabler overrides the table name of a model
type Tabler interface {
	TableName() string
}

// TableSchemaNamer overrides the schema (namespace) of a model's table
type TableSchemaNamer interface {
	TableSchema() string
}

// Schema resolved metadata of one model type, immutable once published
type Schema struct {
	Name           string
	ModelType      reflect.Type
	Table          string
	TableSchema    string
	Fields         []*Field
	FieldsByName   map[string]*Field
	FieldsByDBName map[string]*Field
	IdentityFields []*Field
	namer          Namer
}

func (schema Schema) String() string {
	if schema.ModelType == nil || schema.ModelType == recordType {
		return schema.Name
	}
	return fmt.Sprintf("%v.%v", schema.ModelType.PkgPath(), schema.ModelType.Name())
}

// LookUpField finds a field by column name first, then by Go field name
func (schema Schema) LookUpField(name string) *Field {
	if field, ok := schema.FieldsByDBName[name]; ok {
		return field
	}
	if field, ok := schema.FieldsByName[name]; ok {
		return field
	}
	return nil
}

// TableName resolves the table of model on every call: a Tabler/TableSchemaNamer
// implementation wins over the tag override, which wins over the naming strategy.
// A non-empty schema yields "schema.table".
func (schema *Schema) TableName(model reflect.Value) string {
	table, tableSchema := schema.Table, schema.TableSchema

	for _, v := range modelInterfaces(model) {
		if tabler, ok := v.(Tabler); ok {
			table = tabler.TableName()
		}
		if namer, ok := v.(TableSchemaNamer); ok {
			tableSchema = namer.TableSchema()
		}
	}

	if tableSchema == "" {
		return table
	}
	return tableSchema + "." + table
}

func modelInterfaces(model reflect.Value) []interface{} {
	model = reflect.Indirect(model)
	if !model.IsValid() || !model.CanInterface() || model.Kind() != reflect.Struct {
		return nil
	}

	values := []interface{}{model.Interface()}
	if model.CanAddr() {
		values = append(values, model.Addr().Interface())
	} else {
		ptr := reflect.New(model.Type())
		ptr.Elem().Set(model)
		values = append(values, ptr.Interface())
	}
	return values
}

// Parse resolves the schema of dest, a struct, a pointer or slice of structs, or a Record.
// Struct schemas are cached per type in cache when it is not nil.
func Parse(dest interface{}, cache *Cache, namer Namer) (*Schema, error) {
	if dest == nil {
		return nil, fmt.Errorf("%w: %+v", ErrUnsupportedType, dest)
	}

	switch record := dest.(type) {
	case Record:
		return record.schema()
	case *Record:
		if record == nil {
			return nil, fmt.Errorf("%w: nil record", ErrUnsupportedType)
		}
		return record.schema()
	}

	modelType := reflect.ValueOf(dest).Type()
	for modelType.Kind() == reflect.Slice || modelType.Kind() == reflect.Array || modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	if modelType.Kind() != reflect.Struct {
		if modelType.PkgPath() == "" {
			return nil, fmt.Errorf("%w: %+v when parsing model", ErrUnsupportedType, dest)
		}
		return nil, fmt.Errorf("%w: %v.%v when parsing model", ErrUnsupportedType, modelType.PkgPath(), modelType.Name())
	}

	if modelType == recordType {
		return nil, fmt.Errorf("%w: records must be passed one at a time", ErrUnsupportedType)
	}

	if namer == nil {
		namer = NamingStrategy{}
	}

	if cache == nil {
		return parse(modelType, namer)
	}

	return cache.loadOrCompute(modelType, func() (*Schema, error) {
		return parse(modelType, namer)
	})
}

func parse(modelType reflect.Type, namer Namer) (*Schema, error) {
	schema := &Schema{
		Name:           modelType.Name(),
		ModelType:      modelType,
		Table:          namer.TableName(modelType.Name()),
		FieldsByName:   map[string]*Field{},
		FieldsByDBName: map[string]*Field{},
		namer:          namer,
	}

	fields, err := schema.parseFields(modelType)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %v exposes no accessible fields", ErrUnsupportedType, schema)
	}

	schema.Fields = fields
	for _, field := range schema.Fields {
		field.Schema = schema
		if field.DBName == "" {
			field.DBName = namer.ColumnName(schema.Table, field.Name)
		}
		field.setupValuerAndSetter()
	}
	schema.index()

	return schema, nil
}

func (schema *Schema) parseFields(modelType reflect.Type) ([]*Field, error) {
	var fields []*Field

	for i := 0; i < modelType.NumField(); i++ {
		fieldStruct := modelType.Field(i)

		// `_ struct{} relmap:"table:customers;schema:sales"` overrides the table
		if fieldStruct.Name == "_" {
			settings := ParseTagSetting(fieldStruct.Tag.Get(TagName), ";")
			if table, ok := settings["TABLE"]; ok && table != "" {
				schema.Table = table
			}
			if tableSchema, ok := settings["SCHEMA"]; ok {
				schema.TableSchema = tableSchema
			}
			continue
		}

		if !ast.IsExported(fieldStruct.Name) {
			continue
		}

		field, err := schema.ParseField(fieldStruct)
		if err != nil {
			return nil, err
		}

		switch {
		case field == nil:
		case field.embedded:
			embedded, err := schema.parseFields(field.IndirectFieldType)
			if err != nil {
				return nil, err
			}
			for _, ef := range embedded {
				ef.StructField.Index = append(append([]int{}, fieldStruct.Index...), ef.StructField.Index...)
				fields = append(fields, ef)
			}
		default:
			fields = append(fields, field)
		}
	}

	return fields, nil
}

func (schema *Schema) index() {
	schema.IdentityFields = schema.IdentityFields[:0]
	for _, field := range schema.Fields {
		if _, ok := schema.FieldsByDBName[field.DBName]; !ok {
			schema.FieldsByDBName[field.DBName] = field
		}
		if _, ok := schema.FieldsByName[field.Name]; !ok {
			schema.FieldsByName[field.Name] = field
		}
		if field.IsIdentity {
			schema.IdentityFields = append(schema.IdentityFields, field)
		}
	}
}

// InsertFields fields taking part in INSERT, in declaration order
func (schema *Schema) InsertFields() []*Field {
	fields := make([]*Field, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		if !field.IsTransient && !field.IsAutoGenerated {
			fields = append(fields, field)
		}
	}
	return fields
}

// UpdateFields fields assigned in an UPDATE SET clause, in declaration order
func (schema *Schema) UpdateFields() []*Field {
	fields := make([]*Field, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		if !field.IsTransient && !field.IsIdentity {
			fields = append(fields, field)
		}
	}
	return fields
}

// ConditionFields identity fields locating a row in UPDATE and DELETE
func (schema *Schema) ConditionFields() []*Field {
	fields := make([]*Field, 0, len(schema.IdentityFields))
	for _, field := range schema.IdentityFields {
		if !field.IsTransient {
			fields = append(fields, field)
		}
	}
	return fields
}
