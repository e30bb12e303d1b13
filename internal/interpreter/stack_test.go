package interpreter

import (
	"strings"
	"testing"

	"github.com/funvibe/irfold/internal/ir"
)

// TestSubFrameShadowing declares a same-named symbol in an inner block and
// verifies the outer binding survives the block.
func TestSubFrameShadowing(t *testing.T) {
	m := newTestModule()
	outer := &ir.Variable{Name: "x", Typ: ir.TypeOf(m.b.Int)}
	inner := &ir.Variable{Name: "x", Typ: ir.TypeOf(m.b.Int)}

	expr := &ir.Block{Stmts: []ir.Expr{
		&ir.VarDecl{Symbol: outer, Init: m.intConst(1)},
		&ir.Block{Stmts: []ir.Expr{
			&ir.VarDecl{Symbol: inner, Init: m.intConst(2)},
			&ir.SetValue{Symbol: inner, Value: m.intConst(3)},
		}},
		&ir.GetValue{Symbol: outer},
	}}
	wantInt(t, evalConst(t, m, expr), 1)
}

// TestAssignmentMutatesWhereFound writes through a sub-frame to the frame
// holding the binding.
func TestAssignmentMutatesWhereFound(t *testing.T) {
	m := newTestModule()
	x := &ir.Variable{Name: "x", Typ: ir.TypeOf(m.b.Int)}

	expr := &ir.Block{Stmts: []ir.Expr{
		&ir.VarDecl{Symbol: x, Init: m.intConst(1)},
		&ir.Block{Stmts: []ir.Expr{
			&ir.SetValue{Symbol: x, Value: m.intConst(9)},
		}},
		&ir.GetValue{Symbol: x},
	}}
	wantInt(t, evalConst(t, m, expr), 9)
}

// TestFunctionFrameIsolation keeps caller locals invisible to callees: a
// full frame starts a fresh scope chain.
func TestFunctionFrameIsolation(t *testing.T) {
	m := newTestModule()
	hidden := &ir.Variable{Name: "hidden", Typ: ir.TypeOf(m.b.Int)}

	leak := ir.NewFunction("main", "leak", "Main.lang", 3, ir.TypeOf(m.b.Int))
	ir.SetBody(leak, &ir.Return{Target: leak, Value: &ir.GetValue{Symbol: hidden}})

	expr := &ir.Block{Stmts: []ir.Expr{
		&ir.VarDecl{Symbol: hidden, Init: m.intConst(1)},
		&ir.Call{Fn: leak},
	}}
	e := evalError(t, m, expr)
	if !strings.Contains(e.Description, "unbound symbol") {
		t.Fatalf("cross-frame read did not fail: %q", e.Description)
	}
}

// TestSingletonObjects interns object declarations per evaluation.
func TestSingletonObjects(t *testing.T) {
	m := newTestModule()
	obj := ir.NewClass(m.b, "main", "Registry", "Main.lang")
	obj.Kind = ir.ObjectDecl
	counter := ir.AddField(obj, "hits", ir.TypeOf(m.b.Int))
	counter.Init = m.intConst(0)

	bump := &ir.SetField{
		Receiver: &ir.GetObject{Class: obj},
		Field:    counter,
		Value: m.binOp(t, "Int", "plus",
			&ir.GetField{Receiver: &ir.GetObject{Class: obj}, Field: counter},
			m.intConst(1)),
	}
	expr := &ir.Block{Stmts: []ir.Expr{
		bump,
		bump,
		&ir.GetField{Receiver: &ir.GetObject{Class: obj}, Field: counter},
	}}
	wantInt(t, evalConst(t, m, expr), 2)
}
