package infer

import (
	"fmt"

	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/types"
)

// paramType resolves (minting on first sight) the type variable for a bind
// parameter occurrence, unifying repeat occurrences of the same named
// parameter to one type as required by the data model.
func (inf *Inferrer) paramType(p *ast.Param, contextName string) types.Type {
	return inf.bindParam(p, contextName)
}

// bindParam returns the shared type variable for p's parameter identity.
// Two occurrences share an identity (and therefore a type and an index)
// when they are both named with the same spelling and kind; every
// occurrence of a bare "?" is a distinct identity, matching SQLite's
// auto-incrementing positional placeholders.
func (inf *Inferrer) bindParam(p *ast.Param, contextName string) types.Type {
	key := paramKey(p)
	if key != "" {
		if slot, ok := inf.paramByKey[key]; ok {
			return slot.typ
		}
	}
	slot := &paramSlot{
		typ:  inf.minter.Fresh(),
		node: p,
	}
	if p.Kind != ast.ParamPositional && p.Name != "" {
		slot.explicitName = p.Name
	} else if contextName != "" {
		slot.inferredName = contextName
	}
	inf.params = append(inf.params, slot)
	if key != "" {
		inf.paramByKey[key] = slot
	}
	return slot.typ
}

func paramKey(p *ast.Param) string {
	if p.Kind == ast.ParamPositional {
		return ""
	}
	return fmt.Sprintf("%d:%s", p.Kind, p.Name)
}

// finalizeParams assigns dense 1-based indices in order of first
// occurrence, resolves each parameter's type through the session
// substitution, fills in a synthetic name for any parameter that never
// received an explicit or contextual one, and uniquifies the final name
// set by appending numeric suffixes (2, 3, ...) to later collisions.
func (inf *Inferrer) finalizeParams() {
	unnamed := 0
	names := make([]string, len(inf.params))
	for i, slot := range inf.params {
		slot.index = i + 1
		slot.typ = inf.subst.Resolve(slot.typ)

		name := slot.explicitName
		if name == "" {
			name = slot.inferredName
		}
		if name == "" {
			unnamed++
			if unnamed == 1 {
				name = "value"
			} else {
				name = fmt.Sprintf("value%d", unnamed)
			}
		}
		names[i] = name
	}

	seen := make(map[string]int, len(names))
	for i, name := range names {
		seen[name]++
		if n := seen[name]; n > 1 {
			names[i] = fmt.Sprintf("%s%d", name, n)
		}
	}
	for i, slot := range inf.params {
		slot.explicitName = names[i]
	}
}

func (inf *Inferrer) exportParams() []Parameter {
	out := make([]Parameter, len(inf.params))
	for i, slot := range inf.params {
		out[i] = Parameter{
			Index: slot.index,
			Name:  slot.explicitName,
			Type:  slot.typ,
			Node:  slot.node,
		}
	}
	return out
}
