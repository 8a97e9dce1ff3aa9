package schema

import (
	"fmt"
	"reflect"
)

// Record a row of a defined schema, values keyed by field name or column name
type Record struct {
	Model  *Schema
	Values map[string]interface{}
}

var recordType = reflect.TypeOf(Record{})

func (record Record) schema() (*Schema, error) {
	if record.Model == nil {
		return nil, fmt.Errorf("%w: record without a defined schema", ErrUnsupportedType)
	}
	return record.Model, nil
}

// NewRecord returns a record of schema holding values
func (schema *Schema) NewRecord(values map[string]interface{}) Record {
	if values == nil {
		values = map[string]interface{}{}
	}
	return Record{Model: schema, Values: values}
}

// Definition shape of a model declared outside Go source
type Definition struct {
	Name   string
	Table  string
	Schema string
	Fields []FieldDefinition
}

type FieldDefinition struct {
	Name          string
	Column        string
	Type          DataType
	Identity      bool
	AutoIncrement bool
	Transient     bool
	ForeignKey    *ForeignKey
	Access        *Access
	Boolean       *BooleanText
}

var definedTypes = map[DataType]reflect.Type{
	Bool:   reflect.TypeOf(false),
	Int:    reflect.TypeOf(int64(0)),
	Uint:   reflect.TypeOf(uint64(0)),
	Float:  reflect.TypeOf(float64(0)),
	String: reflect.TypeOf(""),
	Time:   TimeReflectType,
	Bytes:  reflect.TypeOf([]byte(nil)),
}

// Define registers a schema from def, its accessors read and write Record values
func Define(def Definition, namer Namer) (*Schema, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("%w: definition without a name", ErrUnsupportedType)
	}
	if len(def.Fields) == 0 {
		return nil, fmt.Errorf("%w: %v exposes no accessible fields", ErrUnsupportedType, def.Name)
	}
	if namer == nil {
		namer = NamingStrategy{}
	}

	schema := &Schema{
		Name:           def.Name,
		ModelType:      recordType,
		Table:          def.Table,
		TableSchema:    def.Schema,
		FieldsByName:   map[string]*Field{},
		FieldsByDBName: map[string]*Field{},
		namer:          namer,
	}
	if schema.Table == "" {
		schema.Table = namer.TableName(def.Name)
	}

	seen := map[string]bool{}
	for _, fd := range def.Fields {
		if fd.Name == "" {
			return nil, fmt.Errorf("%w: %v has a field without a name", ErrUnsupportedType, def.Name)
		}
		if seen[fd.Name] {
			return nil, fmt.Errorf("%w: %v declares field %v twice", ErrUnsupportedType, def.Name, fd.Name)
		}

		fieldType, ok := definedTypes[fd.Type]
		if !ok {
			fieldType = reflect.TypeOf((*interface{})(nil)).Elem()
		}

		field := &Field{
			Name:              fd.Name,
			DBName:            fd.Column,
			DataType:          fd.Type,
			IsIdentity:        fd.Identity,
			IsAutoGenerated:   fd.AutoIncrement,
			IsTransient:       fd.Transient,
			Boolean:           fd.Boolean,
			FieldType:         fieldType,
			IndirectFieldType: fieldType,
			TagSettings:       map[string]string{},
			Schema:            schema,
			Access:            Access{Visible: true, ShowInGrid: !fd.Transient, ShowInForm: true, InUpdate: true, InInsert: true},
		}
		if fd.ForeignKey != nil {
			field.IsForeignKey = true
			field.Reference = *fd.ForeignKey
		}
		if fd.Access != nil {
			field.Access = *fd.Access
		}
		if field.DBName == "" {
			field.DBName = namer.ColumnName(schema.Table, field.Name)
		}
		field.setupRecordAccessors()

		schema.Fields = append(schema.Fields, field)
		seen[fd.Name] = true
	}
	schema.index()

	return schema, nil
}

func (field *Field) record(model reflect.Value) (Record, error) {
	model = reflect.Indirect(model)
	if !model.IsValid() || model.Type() != recordType {
		return Record{}, fmt.Errorf("%w: field %v of %v cannot access %v",
			ErrAccessorInvocation, field.Name, field.Schema, model.Kind())
	}

	record := model.Interface().(Record)
	if record.Model != field.Schema {
		return Record{}, fmt.Errorf("%w: field %v of %v handed a record of %v",
			ErrAccessorInvocation, field.Name, field.Schema, record.Model)
	}
	return record, nil
}

func (field *Field) setupRecordAccessors() {
	field.ValueOf = func(model reflect.Value) (interface{}, error) {
		record, err := field.record(model)
		if err != nil {
			return nil, err
		}
		if v, ok := record.Values[field.Name]; ok {
			return v, nil
		}
		return record.Values[field.DBName], nil
	}

	field.Set = func(model reflect.Value, value interface{}) error {
		record, err := field.record(model)
		if err != nil {
			return err
		}
		if record.Values == nil {
			return fmt.Errorf("%w: record of %v has no values to set %v", ErrAccessorInvocation, field.Schema, field.Name)
		}

		if value != nil && field.FieldType.Kind() != reflect.Interface {
			v := reflect.New(field.FieldType).Elem()
			if err := assign(field, v, value); err != nil {
				return err
			}
			value = v.Interface()
		}
		record.Values[field.Name] = value
		return nil
	}
}
