// Package types implements the value-type algebra the inferrer unifies
// over: SQL nominal types, optionality, row shapes, function signatures,
// type variables, and user-declared aliases.
package types

import "strings"

// Kind tags the variant of a Type.
type Kind uint8

const (
	KindNominal Kind = iota
	KindOptional
	KindRow
	KindFunc
	KindVar
	KindAlias
	KindError
)

// ShapeKind tags the variant of a row Shape.
type ShapeKind uint8

const (
	ShapeNamed ShapeKind = iota
	ShapeFixed
	ShapeUnknown
	ShapeEmpty
)

// Column is one named column of a ShapeNamed row, in declaration order.
type Column struct {
	Name string
	Type Type
}

// Shape is the body of a row(...) type: a named tuple, a positional tuple,
// a single repeated "unknown cardinality" element (used for list-valued
// bind parameters), or the empty relation (INSERT/UPDATE/DELETE with no
// RETURNING).
type Shape struct {
	Kind     ShapeKind
	Named    []Column // ShapeNamed, order-preserving
	Fixed    []Type   // ShapeFixed
	Elem     *Type    // ShapeUnknown
}

// Type is the recursive algebraic type described in the data model: a
// nominal SQL type name, an optional/nullable wrapper, a row/relation
// shape, a function signature, a unification variable, a user alias, or
// the error sentinel produced once a node fails to type-check.
type Type struct {
	Kind Kind

	Name string // KindNominal

	Inner *Type // KindOptional, KindAlias (aliased storage type)

	Row Shape // KindRow

	Params []Type // KindFunc
	Result *Type  // KindFunc
	Variadic bool // KindFunc: last Param repeats

	Var int // KindVar

	Alias string // KindAlias: the declared alias name, e.g. "UUID"
}

// Nominal builds a SQL scalar type, e.g. Nominal("TEXT").
func Nominal(name string) Type { return Type{Kind: KindNominal, Name: name} }

// Optional wraps t as nullable. Optional(Optional(t)) collapses to a single
// layer since nullability does not nest.
func Optional(t Type) Type {
	if t.Kind == KindOptional {
		return t
	}
	inner := t
	return Type{Kind: KindOptional, Inner: &inner}
}

// IsOptional reports whether t is nullable at the top level.
func (t Type) IsOptional() bool { return t.Kind == KindOptional }

// NonOptional strips one layer of Optional, if present.
func (t Type) NonOptional() Type {
	if t.Kind == KindOptional {
		return *t.Inner
	}
	return t
}

// Row builds a row(...) type from a shape.
func Row(shape Shape) Type { return Type{Kind: KindRow, Row: shape} }

// NamedRow builds row(named(cols)).
func NamedRow(cols ...Column) Type {
	return Row(Shape{Kind: ShapeNamed, Named: cols})
}

// FixedRow builds row(fixed(ts)).
func FixedRow(ts ...Type) Type {
	return Row(Shape{Kind: ShapeFixed, Fixed: ts})
}

// UnknownRow builds row(unknown(elem)), the shape of a list-valued bind
// parameter (the "IN :ids" case).
func UnknownRow(elem Type) Type {
	e := elem
	return Row(Shape{Kind: ShapeUnknown, Elem: &e})
}

// EmptyRow builds row(empty), the result shape of a mutation statement
// without RETURNING.
func EmptyRow() Type {
	return Row(Shape{Kind: ShapeEmpty})
}

// Func builds a (possibly variadic) function type.
func Func(params []Type, result Type, variadic bool) Type {
	r := result
	return Type{Kind: KindFunc, Params: params, Result: &r, Variadic: variadic}
}

// Var builds a fresh unification variable with the given id.
func Var(id int) Type { return Type{Kind: KindVar, Var: id} }

// Alias wraps t with a user-declared alias name, e.g. TEXT AS UUID.
func Alias(t Type, name string) Type {
	inner := t
	return Type{Kind: KindAlias, Inner: &inner, Alias: name}
}

// AliasName returns the alias name if t is (optionally-wrapped) an alias,
// and "" otherwise. Used by backends choosing an encoder for a column.
func (t Type) AliasName() string {
	u := t
	if u.Kind == KindOptional {
		u = *u.Inner
	}
	if u.Kind == KindAlias {
		return u.Alias
	}
	return ""
}

// Error is the sentinel produced for an expression that failed to type-check.
func Error() Type { return Type{Kind: KindError} }

// IsError reports whether t is the error sentinel, looking through
// Optional/Alias wrappers.
func (t Type) IsError() bool {
	return t.Underlying().Kind == KindError
}

// Underlying strips Optional and Alias wrappers to reach the base type.
func (t Type) Underlying() Type {
	for t.Kind == KindOptional || t.Kind == KindAlias {
		t = *t.Inner
	}
	return t
}

// String renders a Type for diagnostics and debug output.
func (t Type) String() string {
	switch t.Kind {
	case KindNominal:
		return strings.ToUpper(t.Name)
	case KindOptional:
		return t.Inner.String() + "?"
	case KindAlias:
		return t.Inner.String() + " AS " + t.Alias
	case KindVar:
		return "'t" + itoa(t.Var)
	case KindError:
		return "<error>"
	case KindFunc:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		variadicMark := ""
		if t.Variadic {
			variadicMark = "..."
		}
		return "(" + strings.Join(parts, ", ") + variadicMark + ") -> " + t.Result.String()
	case KindRow:
		switch t.Row.Kind {
		case ShapeEmpty:
			return "row()"
		case ShapeUnknown:
			return "row(" + t.Row.Elem.String() + "...)"
		case ShapeFixed:
			parts := make([]string, len(t.Row.Fixed))
			for i, f := range t.Row.Fixed {
				parts[i] = f.String()
			}
			return "row(" + strings.Join(parts, ", ") + ")"
		case ShapeNamed:
			parts := make([]string, len(t.Row.Named))
			for i, c := range t.Row.Named {
				parts[i] = c.Name + ": " + c.Type.String()
			}
			return "row{" + strings.Join(parts, ", ") + "}"
		}
	}
	return "<?>"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// TypeScheme is a universally quantified type: a set of bound variable ids,
// the underlying type, and whether the last parameter position is variadic
// (relevant for function schemes instantiated at a call site).
type TypeScheme struct {
	Vars     []int
	Type     Type
	Variadic bool
}

// Monomorphic wraps a concrete type with no quantified variables.
func Monomorphic(t Type) TypeScheme { return TypeScheme{Type: t} }
