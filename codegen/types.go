package codegen

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/basilisk-labs/sqlitec/types"
)

// goType renders the Go type a column or parameter of SQL type t should
// take in generated code. Optional (nullable) scalars become pointers;
// alias(TEXT, UUID) becomes uuid.UUID (or *uuid.UUID when also optional).
// Unrecognized nominal names fall back to string rather than failing
// generation, since the dialect surface is open-ended (PRAGMA-registered
// names, extension types).
func goType(t types.Type) jen.Code {
	optional := t.IsOptional()
	u := t.NonOptional()

	if u.Kind == types.KindAlias {
		if u.Alias == "UUID" {
			return maybePointer(optional, jen.Qual("github.com/google/uuid", "UUID"))
		}
		u = *u.Inner
	}

	switch u.Kind {
	case types.KindNominal:
		return maybePointer(optional, nominalGoType(u.Name))
	case types.KindRow:
		if u.Row.Kind == types.ShapeUnknown {
			return jen.Index().Add(goType(*u.Row.Elem))
		}
		return jen.Any()
	default:
		return jen.Any()
	}
}

func nominalGoType(name string) jen.Code {
	switch strings.ToUpper(name) {
	case "INTEGER", "INT", "BIGINT", "SMALLINT", "TINYINT":
		return jen.Int64()
	case "REAL", "DOUBLE", "FLOAT":
		return jen.Float64()
	case "BOOL", "BOOLEAN":
		return jen.Bool()
	case "BLOB":
		return jen.Index().Byte()
	default:
		return jen.String()
	}
}

func maybePointer(optional bool, t jen.Code) jen.Code {
	if !optional {
		return t
	}
	return jen.Op("*").Add(t)
}
