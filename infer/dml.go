package infer

import (
	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/env"
	"github.com/basilisk-labs/sqlitec/schema"
	"github.com/basilisk-labs/sqlitec/types"
)

func (inf *Inferrer) inferInsert(ins *ast.InsertStmt) types.Type {
	t, qname, ok := inf.resolveTable(ins.Table)
	if !ok {
		inf.errorf(ins.Table.Range(), "table %q does not exist", ins.Table.Name())
		return types.EmptyRow()
	}
	inf.markUsed(qname)

	scope := env.New()
	bindName := t.Name.Name
	if ins.Alias != nil {
		bindName = ins.Alias.Unquoted
	}
	for _, c := range t.Columns {
		scope.Define(bindName+"."+c.Name, c.Type, false)
		scope.Define(c.Name, c.Type, false)
		scope.Define("excluded."+c.Name, c.Type, false)
	}

	targetCols := ins.Columns
	var colNames []string
	if len(targetCols) > 0 {
		colNames = make([]string, len(targetCols))
		for i, c := range targetCols {
			colNames[i] = c.Unquoted
		}
	} else {
		colNames = make([]string, len(t.Columns))
		for i, c := range t.Columns {
			colNames[i] = c.Name
		}
	}

	for _, row := range ins.Values {
		for i, expr := range row {
			if i >= len(colNames) {
				inf.inferExpr(scope, expr)
				continue
			}
			colT, ok := t.Column(colNames[i])
			if !ok {
				inf.inferExpr(scope, expr)
				continue
			}
			valT := inf.inferExprNamed(scope, expr, colNames[i])
			inf.unify(expr.Range(), colT.Type, valT)
		}
	}

	if ins.Select != nil {
		inf.inferSelect(env.New(), ins.Select)
	}

	if ins.Upsert != nil {
		for _, a := range ins.Upsert.Assigns {
			colT, ok := t.Column(a.Column.Unquoted)
			valT := inf.inferExprNamed(scope, a.Value, a.Column.Unquoted)
			if ok {
				inf.unify(a.Value.Range(), colT.Type, valT)
			}
		}
		if ins.Upsert.UpdateWhen != nil {
			inf.inferExpr(scope, ins.Upsert.UpdateWhen)
		}
	}

	if ins.Returning != nil {
		return inf.selectColumnsType(scope, []string{bindName}, ins.Returning.Columns)
	}
	return types.EmptyRow()
}

func (inf *Inferrer) inferUpdate(upd *ast.UpdateStmt) types.Type {
	scope := env.New()
	var target *schema.Table
	var targetBindName string
	if st, ok := upd.Table.(*ast.SimpleTable); ok {
		t, qname, ok := inf.resolveTable(st.Name)
		if !ok {
			inf.errorf(st.Name.Range(), "table %q does not exist", st.Name.Name())
		} else {
			inf.markUsed(qname)
			target = t
			targetBindName = t.Name.Name
			if st.Alias != nil {
				targetBindName = st.Alias.Unquoted
			}
			for _, c := range t.Columns {
				scope.Define(targetBindName+"."+c.Name, c.Type, false)
				scope.Define(c.Name, c.Type, false)
			}
		}
	} else {
		inf.bindTableRef(scope, upd.Table)
	}

	for _, ref := range upd.From {
		inf.bindTableRef(scope, ref)
	}

	for _, a := range upd.Set {
		valT := inf.inferExprNamed(scope, a.Value, a.Column.Unquoted)
		if target != nil {
			if colT, ok := target.Column(a.Column.Unquoted); ok {
				inf.unify(a.Value.Range(), colT.Type, valT)
			} else {
				inf.errorf(a.Column.Range(), "column %q does not exist", a.Column.Unquoted)
			}
		}
	}

	if upd.Where != nil {
		inf.inferExpr(scope, upd.Where)
	}

	if upd.Returning != nil {
		return inf.selectColumnsType(scope, returningTableNames(targetBindName), upd.Returning.Columns)
	}
	return types.EmptyRow()
}

func (inf *Inferrer) inferDelete(del *ast.DeleteStmt) types.Type {
	scope := env.New()
	var targetBindName string
	if st, ok := del.Table.(*ast.SimpleTable); ok {
		t, qname, ok := inf.resolveTable(st.Name)
		if !ok {
			inf.errorf(st.Name.Range(), "table %q does not exist", st.Name.Name())
		} else {
			inf.markUsed(qname)
			targetBindName = t.Name.Name
			if st.Alias != nil {
				targetBindName = st.Alias.Unquoted
			}
			for _, c := range t.Columns {
				scope.Define(targetBindName+"."+c.Name, c.Type, false)
				scope.Define(c.Name, c.Type, false)
			}
		}
	} else {
		inf.bindTableRef(scope, del.Table)
	}

	if del.Where != nil {
		inf.inferExpr(scope, del.Where)
	}

	if del.Returning != nil {
		return inf.selectColumnsType(scope, returningTableNames(targetBindName), del.Returning.Columns)
	}
	return types.EmptyRow()
}

// returningTableNames wraps a RETURNING clause's single resolved target
// table bind name for expandStar, or nil (triggering expandStar's flat
// fallback scan) when the table failed to resolve.
func returningTableNames(bindName string) []string {
	if bindName == "" {
		return nil
	}
	return []string{bindName}
}
