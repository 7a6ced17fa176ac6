package types_test

import (
	"testing"

	"github.com/basilisk-labs/sqlitec/types"
)

func TestOptionalCollapsesSingleLayer(t *testing.T) {
	once := types.Optional(types.Nominal("TEXT"))
	twice := types.Optional(once)
	if twice.String() != once.String() {
		t.Fatalf("expected Optional(Optional(T)) to collapse, got %q vs %q", twice.String(), once.String())
	}
}

func TestNonOptionalStripsOneLayer(t *testing.T) {
	opt := types.Optional(types.Nominal("INTEGER"))
	if opt.NonOptional().Kind != types.KindNominal {
		t.Fatalf("expected non-optional kind nominal, got %v", opt.NonOptional().Kind)
	}
	plain := types.Nominal("INTEGER")
	if plain.NonOptional().Kind != types.KindNominal {
		t.Fatalf("NonOptional on a non-optional type should be a no-op")
	}
}

func TestAliasNameLooksThroughOptional(t *testing.T) {
	aliased := types.Optional(types.Alias(types.Nominal("TEXT"), "UUID"))
	if aliased.AliasName() != "UUID" {
		t.Fatalf("expected alias name UUID, got %q", aliased.AliasName())
	}
	if types.Nominal("TEXT").AliasName() != "" {
		t.Fatalf("expected no alias name on a plain nominal type")
	}
}

func TestErrorSentinelLooksThroughWrappers(t *testing.T) {
	wrapped := types.Optional(types.Alias(types.Error(), "X"))
	if !wrapped.IsError() {
		t.Fatalf("expected IsError to see through Optional/Alias wrappers")
	}
}

func TestRowConstructors(t *testing.T) {
	named := types.NamedRow(types.Column{Name: "id", Type: types.Nominal("INTEGER")})
	if named.Kind != types.KindRow || named.Row.Kind != types.ShapeNamed {
		t.Fatalf("expected row(named), got %#v", named)
	}

	empty := types.EmptyRow()
	if empty.Row.Kind != types.ShapeEmpty {
		t.Fatalf("expected row(empty), got %#v", empty)
	}

	unknown := types.UnknownRow(types.Nominal("TEXT"))
	if unknown.Row.Kind != types.ShapeUnknown {
		t.Fatalf("expected row(unknown), got %#v", unknown)
	}
}

func TestStringRendersCompoundTypes(t *testing.T) {
	fn := types.Func([]types.Type{types.Nominal("INTEGER"), types.Nominal("INTEGER")}, types.Nominal("BOOL"), false)
	if got, want := fn.String(), "(INTEGER, INTEGER) -> BOOL"; got != want {
		t.Fatalf("fn.String() = %q, want %q", got, want)
	}

	alias := types.Alias(types.Nominal("TEXT"), "UUID")
	if got, want := alias.String(), "TEXT AS UUID"; got != want {
		t.Fatalf("alias.String() = %q, want %q", got, want)
	}
}
