package schema_test

import (
	"testing"

	"github.com/basilisk-labs/sqlitec/schema"
	"github.com/basilisk-labs/sqlitec/types"
)

func usersTable() *schema.Table {
	return &schema.Table{
		Name: schema.QualifiedName{Name: "users"},
		Columns: []schema.Column{
			{Name: "id", Type: types.Nominal("INTEGER")},
			{Name: "name", Type: types.Optional(types.Nominal("TEXT"))},
		},
		PrimaryKey: []string{"id"},
	}
}

func TestCreateTableInsertionOrder(t *testing.T) {
	s := schema.New()
	if err := s.CreateTable(usersTable(), false); err != nil {
		t.Fatalf("create users: %v", err)
	}
	orders := &schema.Table{Name: schema.QualifiedName{Name: "orders"}}
	if err := s.CreateTable(orders, false); err != nil {
		t.Fatalf("create orders: %v", err)
	}
	tables := s.Tables()
	if len(tables) != 2 || tables[0].Name.Name != "users" || tables[1].Name.Name != "orders" {
		t.Fatalf("expected insertion order [users, orders], got %#v", tables)
	}
}

func TestCreateTableDuplicateFails(t *testing.T) {
	s := schema.New()
	_ = s.CreateTable(usersTable(), false)
	err := s.CreateTable(usersTable(), false)
	if _, ok := err.(*schema.ErrTableExists); !ok {
		t.Fatalf("expected ErrTableExists, got %v", err)
	}
}

func TestCreateTableIfNotExistsSuppressesError(t *testing.T) {
	s := schema.New()
	_ = s.CreateTable(usersTable(), false)
	if err := s.CreateTable(usersTable(), true); err != nil {
		t.Fatalf("expected IF NOT EXISTS to suppress the error, got %v", err)
	}
}

func TestRenameTablePreservesOrderAndColumns(t *testing.T) {
	s := schema.New()
	_ = s.CreateTable(usersTable(), false)
	_ = s.CreateTable(&schema.Table{Name: schema.QualifiedName{Name: "orders"}}, false)

	if err := s.RenameTable(schema.QualifiedName{Name: "users"}, schema.QualifiedName{Name: "accounts"}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	tables := s.Tables()
	if tables[0].Name.Name != "accounts" || tables[1].Name.Name != "orders" {
		t.Fatalf("expected renamed table to keep its position, got %#v", tables)
	}
	if len(tables[0].Columns) != 2 {
		t.Fatalf("expected column order preserved across rename, got %#v", tables[0].Columns)
	}
}

func TestRenameColumnUpdatesPrimaryKey(t *testing.T) {
	s := schema.New()
	_ = s.CreateTable(usersTable(), false)
	if err := s.RenameColumn(schema.QualifiedName{Name: "users"}, "id", "user_id"); err != nil {
		t.Fatalf("rename column: %v", err)
	}
	tbl, _ := s.Table(schema.QualifiedName{Name: "users"})
	if !tbl.HasPrimaryKey("user_id") {
		t.Fatalf("expected primary key to follow the renamed column")
	}
	if _, ok := tbl.Column("id"); ok {
		t.Fatalf("expected the old column name to be gone")
	}
}

func TestAddColumnRejectsDuplicate(t *testing.T) {
	s := schema.New()
	_ = s.CreateTable(usersTable(), false)
	err := s.AddColumn(schema.QualifiedName{Name: "users"}, schema.Column{Name: "id", Type: types.Nominal("INTEGER")})
	if _, ok := err.(*schema.ErrColumnExists); !ok {
		t.Fatalf("expected ErrColumnExists, got %v", err)
	}
}

func TestDropColumnMissingFails(t *testing.T) {
	s := schema.New()
	_ = s.CreateTable(usersTable(), false)
	err := s.DropColumn(schema.QualifiedName{Name: "users"}, "missing")
	if _, ok := err.(*schema.ErrColumnNotExist); !ok {
		t.Fatalf("expected ErrColumnNotExist, got %v", err)
	}
}

func TestLookupFallsBackToBareName(t *testing.T) {
	s := schema.New()
	_ = s.CreateTable(usersTable(), false)
	if _, ok := s.Lookup("", "USERS"); !ok {
		t.Fatalf("expected case-insensitive bare-name lookup to succeed")
	}
	if _, ok := s.Lookup("main", "users"); ok {
		t.Fatalf("expected a qualified lookup against an unqualified table to miss")
	}
}

func TestUniquelyIdentifiedByRequiresFullPrimaryKey(t *testing.T) {
	tbl := &schema.Table{PrimaryKey: []string{"a", "b"}}
	if tbl.UniquelyIdentifiedBy([]string{"a"}) {
		t.Fatalf("expected a partial key match to fail")
	}
	if !tbl.UniquelyIdentifiedBy([]string{"b", "a"}) {
		t.Fatalf("expected a full key match regardless of order to succeed")
	}
	if !tbl.UniquelyIdentifiedBy([]string{"a", "b", "c"}) {
		t.Fatalf("expected extra equality columns beyond the primary key to still prove uniqueness")
	}
}

func TestAddViewSetsViewKind(t *testing.T) {
	s := schema.New()
	tbl := &schema.Table{Name: schema.QualifiedName{Name: "v"}}
	if err := s.AddView(&schema.View{Name: schema.QualifiedName{Name: "v"}, Select: "SELECT 1"}, tbl); err != nil {
		t.Fatalf("add view: %v", err)
	}
	got, ok := s.Table(schema.QualifiedName{Name: "v"})
	if !ok || got.Kind != schema.KindView {
		t.Fatalf("expected view's backing table to carry KindView, got %#v", got)
	}
}
