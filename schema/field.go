package schema

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/relmap/relmap/utils"
)

// TagName struct tag key holding field metadata
const TagName = "relmap"

type DataType string

var TimeReflectType = reflect.TypeOf(time.Time{})

const (
	Bool   DataType = "bool"
	Int    DataType = "int"
	Uint   DataType = "uint"
	Float  DataType = "float"
	String DataType = "string"
	Time   DataType = "time"
	Bytes  DataType = "bytes"
)

// ForeignKey reference to a lookup table, consumed by presentation only
type ForeignKey struct {
	Table             string
	DescriptionColumn string
	KeyColumn         string
}

// Access display-only visibility flags
type Access struct {
	Visible    bool
	ShowInGrid bool
	ShowInForm bool
	InUpdate   bool
	InInsert   bool
}

// BooleanText literal texts rendered for true and false
type BooleanText struct {
	True  string
	False string
}

// Text returns the text for b
func (bt BooleanText) Text(b bool) string {
	if b {
		return bt.True
	}
	return bt.False
}

type Field struct {
	Name              string
	DBName            string
	DataType          DataType
	IsIdentity        bool
	IsAutoGenerated   bool
	IsForeignKey      bool
	IsTransient       bool
	Reference         ForeignKey
	Access            Access
	Boolean           *BooleanText
	FieldType         reflect.Type
	IndirectFieldType reflect.Type
	StructField       reflect.StructField
	Tag               reflect.StructTag
	TagSettings       map[string]string
	Schema            *Schema
	// ValueOf reads the field from a model value, nil for absent values
	ValueOf func(reflect.Value) (interface{}, error)
	// Set writes value, already of the field's Go type or convertible to it
	Set func(reflect.Value, interface{}) error

	embedded bool
}

// IsNumeric integer or floating-point field
func (field *Field) IsNumeric() bool {
	return field.DataType == Int || field.DataType == Uint || field.DataType == Float
}

// ParseField parses one struct field, returns nil when the field is ignored
func (schema *Schema) ParseField(fieldStruct reflect.StructField) (*Field, error) {
	field := &Field{
		Name:              fieldStruct.Name,
		FieldType:         fieldStruct.Type,
		IndirectFieldType: fieldStruct.Type,
		StructField:       fieldStruct,
		Tag:               fieldStruct.Tag,
		TagSettings:       ParseTagSetting(fieldStruct.Tag.Get(TagName), ";"),
		Schema:            schema,
		Access:            Access{Visible: true, ShowInGrid: true, ShowInForm: true, InUpdate: true, InInsert: true},
	}

	if _, ok := field.TagSettings["-"]; ok {
		return nil, nil
	}

	for field.IndirectFieldType.Kind() == reflect.Ptr {
		field.IndirectFieldType = field.IndirectFieldType.Elem()
	}

	fieldValue := reflect.New(field.IndirectFieldType)
	// if field is valuer, use its first field as data type, e.g. sql.NullString
	_, isValuer := fieldValue.Interface().(driver.Valuer)
	if isValuer && field.IndirectFieldType.Kind() == reflect.Struct && !field.IndirectFieldType.ConvertibleTo(TimeReflectType) &&
		field.IndirectFieldType.NumField() > 0 {
		firstType := field.IndirectFieldType.Field(0).Type
		for firstType.Kind() == reflect.Ptr {
			firstType = firstType.Elem()
		}
		fieldValue = reflect.New(firstType)
	}

	switch reflect.Indirect(fieldValue).Kind() {
	case reflect.Bool:
		field.DataType = Bool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		field.DataType = Int
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		field.DataType = Uint
	case reflect.Float32, reflect.Float64:
		field.DataType = Float
	case reflect.String:
		field.DataType = String
	case reflect.Struct:
		if reflect.Indirect(fieldValue).Type().ConvertibleTo(TimeReflectType) {
			field.DataType = Time
		}
	case reflect.Array, reflect.Slice:
		if reflect.Indirect(fieldValue).Type().Elem() == reflect.TypeOf(uint8(0)) {
			field.DataType = Bytes
		}
	}

	if val, ok := field.TagSettings["TYPE"]; ok {
		switch strings.ToLower(val) {
		case "date", "time", "datetime":
			field.DataType = Time
		case "int", "integer":
			field.DataType = Int
		case "float", "double", "decimal", "numeric":
			field.DataType = Float
		case "string", "text":
			field.DataType = String
		case "bool", "boolean":
			field.DataType = Bool
		default:
			field.DataType = DataType(strings.ToLower(val))
		}
	}

	if dbName, ok := field.TagSettings["COLUMN"]; ok {
		field.DBName = dbName
	}

	field.IsIdentity = isSet(field.TagSettings, "ID", "IDENTITY", "PRIMARYKEY", "PRIMARY_KEY")
	field.IsAutoGenerated = isSet(field.TagSettings, "AUTOINCREMENT", "AUTO_INCREMENT", "GENERATED")
	field.IsTransient = isSet(field.TagSettings, "TRANSIENT", "ONETOMANY")

	if val, ok := field.TagSettings["FOREIGNKEY"]; ok {
		refs := strings.Split(val, ",")
		if len(refs) != 3 {
			return nil, fmt.Errorf("%w: foreignKey of %v.%v needs table,description,key, got %q",
				ErrUnsupportedType, schema.Name, field.Name, val)
		}
		field.IsForeignKey = true
		field.Reference = ForeignKey{
			Table:             strings.TrimSpace(refs[0]),
			DescriptionColumn: strings.TrimSpace(refs[1]),
			KeyColumn:         strings.TrimSpace(refs[2]),
		}
	}

	if val, ok := field.TagSettings["BOOL"]; ok {
		texts := strings.SplitN(val, ",", 2)
		if len(texts) != 2 {
			return nil, fmt.Errorf("%w: bool of %v.%v needs true,false texts, got %q",
				ErrUnsupportedType, schema.Name, field.Name, val)
		}
		field.Boolean = &BooleanText{True: texts[0], False: texts[1]}
	}

	if field.IsTransient {
		field.Access.ShowInGrid = false
	}
	for key, flag := range map[string]*bool{
		"VISIBLE": &field.Access.Visible,
		"GRID":    &field.Access.ShowInGrid,
		"FORM":    &field.Access.ShowInForm,
		"UPDATE":  &field.Access.InUpdate,
		"INSERT":  &field.Access.InInsert,
	} {
		if val, ok := field.TagSettings[key]; ok {
			*flag = utils.CheckTruth(val)
		}
	}

	if fieldStruct.Anonymous && !isValuer && field.DataType == "" && field.IndirectFieldType.Kind() == reflect.Struct {
		field.embedded = true
	}

	return field, nil
}

func isSet(settings map[string]string, keys ...string) bool {
	for _, key := range keys {
		if val, ok := settings[key]; ok && utils.CheckTruth(val) {
			return true
		}
	}
	return false
}

// setupValuerAndSetter binds the accessors once, using the final struct index
func (field *Field) setupValuerAndSetter() {
	index := field.StructField.Index

	field.ValueOf = func(model reflect.Value) (interface{}, error) {
		v, err := field.walk(model, index, false)
		if err != nil || !v.IsValid() {
			return nil, err
		}
		if v.Kind() == reflect.Ptr && v.IsNil() {
			return nil, nil
		}
		return v.Interface(), nil
	}

	field.Set = func(model reflect.Value, value interface{}) error {
		v, err := field.walk(model, index, true)
		if err != nil {
			return err
		}
		return assign(field, v, value)
	}
}

// walk follows index from model to the field; nil embedded pointers yield an
// invalid value when reading and are allocated when writing
func (field *Field) walk(model reflect.Value, index []int, alloc bool) (reflect.Value, error) {
	model = reflect.Indirect(model)
	if !model.IsValid() || model.Type() != field.Schema.ModelType {
		return reflect.Value{}, fmt.Errorf("%w: field %v of %v cannot access %v",
			ErrAccessorInvocation, field.Name, field.Schema, model.Kind())
	}

	if alloc && !model.CanSet() {
		return reflect.Value{}, fmt.Errorf("%w: field %v of %v needs an addressable model, pass a pointer",
			ErrAccessorInvocation, field.Name, field.Schema)
	}

	v := model
	for _, idx := range index {
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				if !alloc {
					return reflect.Value{}, nil
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(idx)
	}
	return v, nil
}

func assign(field *Field, v reflect.Value, value interface{}) error {
	if value == nil {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}

	if scanner, ok := v.Addr().Interface().(sql.Scanner); ok {
		if err := scanner.Scan(value); err != nil {
			return fmt.Errorf("%w: %v.%v: %v", ErrAccessorInvocation, field.Schema.Name, field.Name, err)
		}
		return nil
	}

	rv := reflect.ValueOf(value)
	target, viaPointer := v, false
	if v.Kind() == reflect.Ptr && rv.Type() != v.Type() {
		target, viaPointer = reflect.New(v.Type().Elem()).Elem(), true
	}

	switch {
	case rv.Type().AssignableTo(target.Type()):
		target.Set(rv)
	case sameClass(rv.Kind(), target.Kind()) && rv.Type().ConvertibleTo(target.Type()):
		if overflows(rv, target) {
			return fmt.Errorf("%w: %v does not fit %v.%v (%v)",
				ErrInvalidNumberFormat, value, field.Schema.Name, field.Name, target.Type())
		}
		target.Set(rv.Convert(target.Type()))
	default:
		return fmt.Errorf("%w: cannot assign %T to %v.%v (%v)",
			ErrAccessorInvocation, value, field.Schema.Name, field.Name, v.Type())
	}

	if viaPointer {
		v.Set(target.Addr())
	}
	return nil
}

func sameClass(a, b reflect.Kind) bool {
	class := func(k reflect.Kind) int {
		switch k {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return 1
		case reflect.String:
			return 2
		case reflect.Bool:
			return 3
		}
		return int(k) + 10
	}
	return class(a) == class(b)
}

// overflows reports whether converting the number rv into target loses its value
func overflows(rv, target reflect.Value) bool {
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return target.OverflowInt(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return rv.Uint() > math.MaxInt64 || target.OverflowInt(int64(rv.Uint()))
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			return f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || target.OverflowInt(int64(f))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int() < 0 || target.OverflowUint(uint64(rv.Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return target.OverflowUint(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			return f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || target.OverflowUint(uint64(f))
		}
	case reflect.Float32, reflect.Float64:
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return target.OverflowFloat(rv.Float())
		}
	}
	return false
}
