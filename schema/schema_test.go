package schema_test

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/relmap/relmap/schema"
)

type Audit struct {
	CreatedBy string
	CreatedAt time.Time `relmap:"column:created_on;grid:false"`
}

type Customer struct {
	ID       int64 `relmap:"id;autoIncrement"`
	Name     string
	Balance  float64
	Birthday string         `relmap:"type:date"`
	Nickname sql.NullString `relmap:"update:false"`
	Active   bool           `relmap:"bool:S,N"`
	DeptID   int            `relmap:"foreignKey:Department,name,id"`
	Orders   []string       `relmap:"oneToMany"`
	Password string         `relmap:"-"`
	Audit
	unexported string
}

type Invoice struct {
	_      struct{} `relmap:"table:invoices;schema:billing"`
	Number int      `relmap:"primaryKey"`
	Serie  string   `relmap:"primaryKey"`
	Total  float64
}

type Renamed struct {
	Code int `relmap:"id"`
}

func (Renamed) TableName() string   { return "renamed_table" }
func (Renamed) TableSchema() string { return "legacy" }

type checkField struct {
	Name, DBName   string
	DataType       schema.DataType
	Identity, Auto bool
	Transient, FK  bool
}

func checkFields(t *testing.T, s *schema.Schema, expected []checkField) {
	t.Helper()
	if len(s.Fields) != len(expected) {
		t.Fatalf("schema %v should have %v fields, got %v", s, len(expected), len(s.Fields))
	}

	for i, f := range expected {
		got := s.Fields[i]
		if got.Name != f.Name || got.DBName != f.DBName || got.DataType != f.DataType {
			t.Errorf("field #%v should be %v/%v/%v, got %v/%v/%v", i, f.Name, f.DBName, f.DataType, got.Name, got.DBName, got.DataType)
		}
		if got.IsIdentity != f.Identity || got.IsAutoGenerated != f.Auto || got.IsTransient != f.Transient || got.IsForeignKey != f.FK {
			t.Errorf("field %v flags mismatch, got identity %v auto %v transient %v fk %v",
				f.Name, got.IsIdentity, got.IsAutoGenerated, got.IsTransient, got.IsForeignKey)
		}
	}
}

func TestParseCustomer(t *testing.T) {
	s, err := schema.Parse(&Customer{}, nil, nil)
	if err != nil {
		t.Fatalf("failed to parse customer, got error %v", err)
	}

	if s.Name != "Customer" || s.Table != "Customer" {
		t.Errorf("schema name and table should be Customer, got %v and %v", s.Name, s.Table)
	}

	checkFields(t, s, []checkField{
		{Name: "ID", DBName: "id", DataType: schema.Int, Identity: true, Auto: true},
		{Name: "Name", DBName: "name", DataType: schema.String},
		{Name: "Balance", DBName: "balance", DataType: schema.Float},
		{Name: "Birthday", DBName: "birthday", DataType: schema.Time},
		{Name: "Nickname", DBName: "nickname", DataType: schema.String},
		{Name: "Active", DBName: "active", DataType: schema.Bool},
		{Name: "DeptID", DBName: "dept_id", DataType: schema.Int, FK: true},
		{Name: "Orders", DBName: "orders", Transient: true},
		{Name: "CreatedBy", DBName: "created_by", DataType: schema.String},
		{Name: "CreatedAt", DBName: "created_on", DataType: schema.Time},
	})

	if len(s.IdentityFields) != 1 || s.IdentityFields[0].Name != "ID" {
		t.Errorf("identity fields should be [ID], got %v", s.IdentityFields)
	}

	dept := s.LookUpField("dept_id")
	if dept == nil || dept.Reference != (schema.ForeignKey{Table: "Department", DescriptionColumn: "name", KeyColumn: "id"}) {
		t.Errorf("dept_id should reference Department(name,id), got %+v", dept)
	}

	if f := s.LookUpField("Nickname"); f.Access.InUpdate || !f.Access.InInsert {
		t.Errorf("nickname access should only drop update, got %+v", f.Access)
	}

	if f := s.LookUpField("orders"); f.Access.ShowInGrid {
		t.Errorf("transient fields should be hidden from the grid")
	}

	if f := s.LookUpField("created_on"); f.Access.ShowInGrid || !f.Access.ShowInForm {
		t.Errorf("created_on should be hidden from the grid only, got %+v", f.Access)
	}

	if f := s.LookUpField("active"); f.Boolean == nil || f.Boolean.Text(true) != "S" || f.Boolean.Text(false) != "N" {
		t.Errorf("active boolean texts should be S/N, got %+v", f.Boolean)
	}

	if s.LookUpField("Password") != nil || s.LookUpField("unexported") != nil {
		t.Errorf("ignored and unexported fields should not be resolved")
	}
}

func TestFieldSubsets(t *testing.T) {
	s, err := schema.Parse(&Customer{}, nil, nil)
	if err != nil {
		t.Fatalf("failed to parse customer, got error %v", err)
	}

	names := func(fields []*schema.Field) (result []string) {
		for _, f := range fields {
			result = append(result, f.DBName)
		}
		return result
	}

	if got := names(s.InsertFields()); !reflect.DeepEqual(got, []string{"name", "balance", "birthday", "nickname", "active", "dept_id", "created_by", "created_on"}) {
		t.Errorf("unexpected insert fields %v", got)
	}

	if got := names(s.UpdateFields()); !reflect.DeepEqual(got, []string{"name", "balance", "birthday", "nickname", "active", "dept_id", "created_by", "created_on"}) {
		t.Errorf("unexpected update fields %v", got)
	}

	if got := names(s.ConditionFields()); !reflect.DeepEqual(got, []string{"id"}) {
		t.Errorf("unexpected condition fields %v", got)
	}
}

func TestParseTableOverrides(t *testing.T) {
	s, err := schema.Parse([]Invoice{}, nil, nil)
	if err != nil {
		t.Fatalf("failed to parse invoice, got error %v", err)
	}

	if got := s.TableName(reflect.ValueOf(Invoice{})); got != "billing.invoices" {
		t.Errorf("invoice table should be billing.invoices, got %v", got)
	}

	if len(s.ConditionFields()) != 2 {
		t.Errorf("invoice should have a composite identity, got %v", s.IdentityFields)
	}

	renamed, err := schema.Parse(&Renamed{}, nil, nil)
	if err != nil {
		t.Fatalf("failed to parse renamed, got error %v", err)
	}

	if got := renamed.TableName(reflect.ValueOf(&Renamed{})); got != "legacy.renamed_table" {
		t.Errorf("renamed table should be legacy.renamed_table, got %v", got)
	}
}

func TestParseUnsupported(t *testing.T) {
	type empty struct {
		hidden int
		Secret string `relmap:"-"`
	}

	for _, dest := range []interface{}{nil, 42, "text", &empty{}, []int{1}, schema.Record{}} {
		if _, err := schema.Parse(dest, nil, nil); !errors.Is(err, schema.ErrUnsupportedType) {
			t.Errorf("parsing %#v should fail with ErrUnsupportedType, got %v", dest, err)
		}
	}
}

func TestParseBadTags(t *testing.T) {
	type badForeignKey struct {
		DeptID int `relmap:"foreignKey:Department"`
	}
	type badBool struct {
		Active bool `relmap:"bool:yes"`
	}

	for _, dest := range []interface{}{&badForeignKey{}, &badBool{}} {
		if _, err := schema.Parse(dest, nil, nil); !errors.Is(err, schema.ErrUnsupportedType) {
			t.Errorf("parsing %T should fail with ErrUnsupportedType, got %v", dest, err)
		}
	}
}

func TestParseWithNamingStrategy(t *testing.T) {
	s, err := schema.Parse(&Customer{}, nil, schema.NamingStrategy{TablePrefix: "t_", SnakeCaseTable: true, PluralTable: true})
	if err != nil {
		t.Fatalf("failed to parse customer, got error %v", err)
	}

	if s.Table != "t_customers" {
		t.Errorf("table should be t_customers, got %v", s.Table)
	}
}
