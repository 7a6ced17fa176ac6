package types_test

import (
	"testing"

	"github.com/basilisk-labs/sqlitec/types"
)

func TestUnifyVarBindsToConcreteType(t *testing.T) {
	s := types.NewSubst()
	m := &types.Minter{}
	v := m.Fresh()

	unified, err := s.Unify(v, types.Nominal("TEXT"))
	if err != nil {
		t.Fatalf("unify: %v", err)
	}
	if unified.Kind != types.KindNominal {
		t.Fatalf("expected nominal, got %#v", unified)
	}
	if got := s.Resolve(v); got.Kind != types.KindNominal || got.Name != "TEXT" {
		t.Fatalf("expected v to resolve to TEXT, got %#v", got)
	}
}

func TestUnifyNominalCaseInsensitive(t *testing.T) {
	s := types.NewSubst()
	if _, err := s.Unify(types.Nominal("integer"), types.Nominal("INTEGER")); err != nil {
		t.Fatalf("expected case-insensitive nominal unification to succeed: %v", err)
	}
}

func TestUnifyNominalMismatchFails(t *testing.T) {
	s := types.NewSubst()
	if _, err := s.Unify(types.Nominal("TEXT"), types.Nominal("INTEGER")); err == nil {
		t.Fatalf("expected TEXT and INTEGER to fail unification")
	}
}

func TestUnifyOptionalWithConcreteStaysOptional(t *testing.T) {
	s := types.NewSubst()
	unified, err := s.Unify(types.Optional(types.Nominal("TEXT")), types.Nominal("TEXT"))
	if err != nil {
		t.Fatalf("unify: %v", err)
	}
	if !unified.IsOptional() {
		t.Fatalf("expected optional(T) unified with U to stay optional, got %#v", unified)
	}
}

func TestUnifyAliasPreservedOnLeft(t *testing.T) {
	s := types.NewSubst()
	unified, err := s.Unify(types.Alias(types.Nominal("TEXT"), "UUID"), types.Nominal("TEXT"))
	if err != nil {
		t.Fatalf("unify: %v", err)
	}
	if unified.AliasName() != "UUID" {
		t.Fatalf("expected alias(T, UUID) to unify preserving the alias, got %#v", unified)
	}
}

func TestUnifyRowNamedRetainsLeftNames(t *testing.T) {
	s := types.NewSubst()
	left := types.NamedRow(types.Column{Name: "id", Type: types.Nominal("INTEGER")})
	right := types.NamedRow(types.Column{Name: "ignored", Type: types.Nominal("INTEGER")})
	unified, err := s.Unify(left, right)
	if err != nil {
		t.Fatalf("unify: %v", err)
	}
	if unified.Row.Named[0].Name != "id" {
		t.Fatalf("expected left operand's column name to win, got %q", unified.Row.Named[0].Name)
	}
}

func TestUnifyRowUnknownElement(t *testing.T) {
	s := types.NewSubst()
	left := types.UnknownRow(types.Nominal("INTEGER"))
	right := types.UnknownRow(types.Nominal("INTEGER"))
	if _, err := s.Unify(left, right); err != nil {
		t.Fatalf("unify: %v", err)
	}
}

func TestUnifyErrorSentinelNeverFails(t *testing.T) {
	s := types.NewSubst()
	unified, err := s.Unify(types.Error(), types.Nominal("TEXT"))
	if err != nil {
		t.Fatalf("unify with error sentinel should never fail, got: %v", err)
	}
	if !unified.IsError() {
		t.Fatalf("expected error sentinel to propagate")
	}
}

func TestInstantiateFreshensQuantifiedVars(t *testing.T) {
	m := &types.Minter{}
	a := m.Fresh()
	scheme := types.TypeScheme{
		Vars: []int{a.Var},
		Type: types.Func([]types.Type{a, a}, a, false),
	}

	inst1 := types.Instantiate(m, scheme)
	inst2 := types.Instantiate(m, scheme)
	if inst1.Params[0].Var == inst2.Params[0].Var {
		t.Fatalf("expected each Instantiate call to mint distinct fresh variables")
	}
	if inst1.Params[0].Var != inst1.Result.Var {
		t.Fatalf("expected a single quantified var to substitute consistently within one instantiation")
	}
}
