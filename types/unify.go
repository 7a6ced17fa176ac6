package types

import "strings"

// Subst is a per-inference-session substitution from variable id to the
// type it has been bound to. Type variables are minted per session by a
// Minter and resolved through a Subst; neither is shared across statements.
type Subst struct {
	bindings map[int]Type
}

// NewSubst returns an empty substitution.
func NewSubst() *Subst {
	return &Subst{bindings: make(map[int]Type)}
}

// Minter hands out fresh type-variable ids within one inference session.
type Minter struct{ next int }

// Fresh returns a new, never-before-seen type variable.
func (m *Minter) Fresh() Type {
	m.next++
	return Var(m.next)
}

// Resolve follows variable bindings in s until it reaches a non-variable
// type or an unbound variable, recursing into compound types so the
// result never contains a bound variable at any depth.
func (s *Subst) Resolve(t Type) Type {
	switch t.Kind {
	case KindVar:
		if bound, ok := s.bindings[t.Var]; ok {
			return s.Resolve(bound)
		}
		return t
	case KindOptional:
		inner := s.Resolve(*t.Inner)
		return Optional(inner)
	case KindAlias:
		inner := s.Resolve(*t.Inner)
		return Type{Kind: KindAlias, Inner: &inner, Alias: t.Alias}
	case KindRow:
		switch t.Row.Kind {
		case ShapeNamed:
			cols := make([]Column, len(t.Row.Named))
			for i, c := range t.Row.Named {
				cols[i] = Column{Name: c.Name, Type: s.Resolve(c.Type)}
			}
			return Row(Shape{Kind: ShapeNamed, Named: cols})
		case ShapeFixed:
			ts := make([]Type, len(t.Row.Fixed))
			for i, f := range t.Row.Fixed {
				ts[i] = s.Resolve(f)
			}
			return Row(Shape{Kind: ShapeFixed, Fixed: ts})
		case ShapeUnknown:
			return UnknownRow(s.Resolve(*t.Row.Elem))
		}
		return t
	case KindFunc:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = s.Resolve(p)
		}
		result := s.Resolve(*t.Result)
		return Func(params, result, t.Variadic)
	default:
		return t
	}
}

func (s *Subst) bind(id int, t Type) {
	s.bindings[id] = t
}

// Unify attempts to make a and b equal under s, mutating s with any new
// bindings. It returns the unified type (as seen from a's side, preserving
// row-named column names and alias tags per the left operand) or an error.
func (s *Subst) Unify(a, b Type) (Type, error) {
	a = s.Resolve(a)
	b = s.Resolve(b)

	if a.Kind == KindError || b.Kind == KindError {
		return Error(), nil
	}

	if a.Kind == KindVar {
		s.bind(a.Var, b)
		return b, nil
	}
	if b.Kind == KindVar {
		s.bind(b.Var, a)
		return a, nil
	}

	if a.Kind == KindAlias {
		inner, err := s.Unify(*a.Inner, b)
		if err != nil {
			return Type{}, err
		}
		return Alias(inner, a.Alias), nil
	}
	if b.Kind == KindAlias {
		inner, err := s.Unify(a, *b.Inner)
		if err != nil {
			return Type{}, err
		}
		return Alias(inner, b.Alias), nil
	}

	if a.Kind == KindOptional && b.Kind == KindOptional {
		inner, err := s.Unify(*a.Inner, *b.Inner)
		if err != nil {
			return Type{}, err
		}
		return Optional(inner), nil
	}
	if a.Kind == KindOptional {
		inner, err := s.Unify(*a.Inner, b)
		if err != nil {
			return Type{}, err
		}
		return Optional(inner), nil
	}
	if b.Kind == KindOptional {
		inner, err := s.Unify(a, *b.Inner)
		if err != nil {
			return Type{}, err
		}
		return Optional(inner), nil
	}

	if a.Kind != b.Kind {
		return Type{}, unifyErr(a, b)
	}

	switch a.Kind {
	case KindNominal:
		if !strings.EqualFold(a.Name, b.Name) {
			return Type{}, unifyErr(a, b)
		}
		return a, nil

	case KindRow:
		return s.unifyRow(a, b)

	case KindFunc:
		if len(a.Params) != len(b.Params) && !a.Variadic && !b.Variadic {
			return Type{}, unifyErr(a, b)
		}
		n := len(a.Params)
		if len(b.Params) < n {
			n = len(b.Params)
		}
		params := make([]Type, 0, n)
		for i := 0; i < n; i++ {
			u, err := s.Unify(a.Params[i], b.Params[i])
			if err != nil {
				return Type{}, err
			}
			params = append(params, u)
		}
		result, err := s.Unify(*a.Result, *b.Result)
		if err != nil {
			return Type{}, err
		}
		return Func(params, result, a.Variadic || b.Variadic), nil

	default:
		return Type{}, unifyErr(a, b)
	}
}

func (s *Subst) unifyRow(a, b Type) (Type, error) {
	switch {
	case a.Row.Kind == ShapeEmpty && b.Row.Kind == ShapeEmpty:
		return a, nil

	case a.Row.Kind == ShapeUnknown && b.Row.Kind == ShapeUnknown:
		elem, err := s.Unify(*a.Row.Elem, *b.Row.Elem)
		if err != nil {
			return Type{}, err
		}
		return UnknownRow(elem), nil

	case a.Row.Kind == ShapeFixed && b.Row.Kind == ShapeFixed:
		if len(a.Row.Fixed) != len(b.Row.Fixed) {
			return Type{}, unifyErr(a, b)
		}
		out := make([]Type, len(a.Row.Fixed))
		for i := range a.Row.Fixed {
			u, err := s.Unify(a.Row.Fixed[i], b.Row.Fixed[i])
			if err != nil {
				return Type{}, err
			}
			out[i] = u
		}
		return FixedRow(out...), nil

	case a.Row.Kind == ShapeNamed && b.Row.Kind == ShapeNamed:
		// Unify pairwise by position; retain names from the left operand
		// (the conventional "expected" side in a result comparison).
		if len(a.Row.Named) != len(b.Row.Named) {
			return Type{}, unifyErr(a, b)
		}
		out := make([]Column, len(a.Row.Named))
		for i := range a.Row.Named {
			u, err := s.Unify(a.Row.Named[i].Type, b.Row.Named[i].Type)
			if err != nil {
				return Type{}, err
			}
			out[i] = Column{Name: a.Row.Named[i].Name, Type: u}
		}
		return NamedRow(out...), nil

	default:
		return Type{}, unifyErr(a, b)
	}
}

// UnifyErr is returned (wrapped) when two types fail to unify. Callers at
// the inferrer layer turn it into a positioned diagnostic.
type UnifyErr struct {
	A, B Type
}

func (e *UnifyErr) Error() string {
	return "Unable to unify types: " + e.A.String() + " and " + e.B.String()
}

func unifyErr(a, b Type) error { return &UnifyErr{A: a, B: b} }

// Instantiate substitutes fresh variables for every variable quantified by
// scheme, returning a fresh monomorphic instance ready to unify against
// call-site argument types.
func Instantiate(m *Minter, scheme TypeScheme) Type {
	if len(scheme.Vars) == 0 {
		return scheme.Type
	}
	fresh := make(map[int]Type, len(scheme.Vars))
	for _, v := range scheme.Vars {
		fresh[v] = m.Fresh()
	}
	return substituteVars(scheme.Type, fresh)
}

func substituteVars(t Type, fresh map[int]Type) Type {
	switch t.Kind {
	case KindVar:
		if f, ok := fresh[t.Var]; ok {
			return f
		}
		return t
	case KindOptional:
		inner := substituteVars(*t.Inner, fresh)
		return Optional(inner)
	case KindAlias:
		inner := substituteVars(*t.Inner, fresh)
		return Alias(inner, t.Alias)
	case KindRow:
		switch t.Row.Kind {
		case ShapeNamed:
			cols := make([]Column, len(t.Row.Named))
			for i, c := range t.Row.Named {
				cols[i] = Column{Name: c.Name, Type: substituteVars(c.Type, fresh)}
			}
			return Row(Shape{Kind: ShapeNamed, Named: cols})
		case ShapeFixed:
			ts := make([]Type, len(t.Row.Fixed))
			for i, f := range t.Row.Fixed {
				ts[i] = substituteVars(f, fresh)
			}
			return Row(Shape{Kind: ShapeFixed, Fixed: ts})
		case ShapeUnknown:
			return UnknownRow(substituteVars(*t.Row.Elem, fresh))
		}
		return t
	case KindFunc:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = substituteVars(p, fresh)
		}
		result := substituteVars(*t.Result, fresh)
		return Func(params, result, t.Variadic)
	default:
		return t
	}
}
