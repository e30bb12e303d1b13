package interpreter

import (
	"strings"
	"testing"

	"github.com/funvibe/irfold/internal/ir"
)

// testModule bundles a builtin table with small IR construction shortcuts
// shared by the interpreter tests.
type testModule struct {
	b *ir.Builtins
}

func newTestModule() *testModule {
	return &testModule{b: ir.NewBuiltins()}
}

func (m *testModule) intConst(v int32) ir.Expr {
	return &ir.Const{Kind: ir.KindInt, Value: v, Typ: ir.TypeOf(m.b.Int)}
}

func (m *testModule) longConst(v int64) ir.Expr {
	return &ir.Const{Kind: ir.KindLong, Value: v, Typ: ir.TypeOf(m.b.Long)}
}

func (m *testModule) strConst(s string) ir.Expr {
	return &ir.Const{Kind: ir.KindString, Value: s, Typ: ir.TypeOf(m.b.String)}
}

func (m *testModule) boolConst(v bool) ir.Expr {
	return &ir.Const{Kind: ir.KindBoolean, Value: v, Typ: ir.TypeOf(m.b.Boolean)}
}

func (m *testModule) nullConst() ir.Expr {
	return &ir.Const{Kind: ir.KindNull, Typ: ir.NullableOf(m.b.Nothing)}
}

// method resolves a declared member function by name and parameter type
// names, walking the super chain.
func (m *testModule) method(t *testing.T, className, name string, paramTypes ...string) *ir.Function {
	t.Helper()
	class := m.b.Class(className)
	if class == nil {
		t.Fatalf("unknown class %q", className)
	}
	return findMethod(t, class, name, paramTypes...)
}

func findMethod(t *testing.T, class *ir.Class, name string, paramTypes ...string) *ir.Function {
	t.Helper()
	for cur := class; cur != nil; cur = cur.Super {
		for _, fn := range cur.Functions {
			if fn.Name != name || len(fn.Params) != len(paramTypes) {
				continue
			}
			match := true
			for idx, want := range paramTypes {
				if fn.Params[idx].Symbol.Typ.Class.Name != want {
					match = false
					break
				}
			}
			if match {
				return fn
			}
		}
	}
	t.Fatalf("class %s has no method %s(%s)", class.Name, name, strings.Join(paramTypes, ", "))
	return nil
}

// binOp builds a member-operator call on a builtin receiver class.
func (m *testModule) binOp(t *testing.T, className, name string, recv, arg ir.Expr) ir.Expr {
	t.Helper()
	fn := m.method(t, className, name, className)
	return &ir.Call{Fn: fn, Dispatch: recv, Args: []ir.Expr{arg}}
}

func evalConst(t *testing.T, m *testModule, expr ir.Expr) *ir.Const {
	t.Helper()
	result := New(m.b).Interpret(expr)
	c, ok := result.(*ir.Const)
	if !ok {
		if e, isErr := result.(*ir.ErrorExpr); isErr {
			t.Fatalf("evaluation produced an error node:%s", e.Description)
		}
		t.Fatalf("evaluation produced %T, want *ir.Const", result)
	}
	return c
}

func evalError(t *testing.T, m *testModule, expr ir.Expr) *ir.ErrorExpr {
	t.Helper()
	result := New(m.b).Interpret(expr)
	e, ok := result.(*ir.ErrorExpr)
	if !ok {
		t.Fatalf("evaluation produced %T, want *ir.ErrorExpr", result)
	}
	if !strings.HasPrefix(e.Description, "\n") {
		t.Fatalf("error description does not begin with a newline: %q", e.Description)
	}
	return e
}

func wantInt(t *testing.T, c *ir.Const, want int32) {
	t.Helper()
	if c.Kind != ir.KindInt {
		t.Fatalf("constant kind = %s, want Int", c.Kind)
	}
	if got := c.Value.(int32); got != want {
		t.Fatalf("constant = %d, want %d", got, want)
	}
}

func wantString(t *testing.T, c *ir.Const, want string) {
	t.Helper()
	if c.Kind != ir.KindString {
		t.Fatalf("constant kind = %s, want String", c.Kind)
	}
	if got := c.Value.(string); got != want {
		t.Fatalf("constant = %q, want %q", got, want)
	}
}

func wantBool(t *testing.T, c *ir.Const, want bool) {
	t.Helper()
	if c.Kind != ir.KindBoolean {
		t.Fatalf("constant kind = %s, want Boolean", c.Kind)
	}
	if got := c.Value.(bool); got != want {
		t.Fatalf("constant = %t, want %t", got, want)
	}
}

// fibFunction declares the standard recursive Fibonacci over Int.
func (m *testModule) fibFunction(t *testing.T) *ir.Function {
	t.Helper()
	fib := ir.NewFunction("main", "fib", "Main.lang", 3, ir.TypeOf(m.b.Int))
	n := ir.AddParam(fib, "n", ir.TypeOf(m.b.Int), nil)

	read := func() ir.Expr { return &ir.GetValue{Symbol: n} }
	rec := func(delta int32) ir.Expr {
		return &ir.Call{Fn: fib, Args: []ir.Expr{
			m.binOp(t, "Int", "minus", read(), m.intConst(delta)),
		}}
	}

	ir.SetBody(fib,
		&ir.When{Branches: []*ir.Branch{
			{
				Cond:   m.binOp(t, "Int", "less", read(), m.intConst(2)),
				Result: &ir.Return{Target: fib, Value: read()},
			},
			{
				Cond: m.boolConst(true),
				Result: &ir.Return{Target: fib, Value: m.binOp(t, "Int", "plus",
					rec(1), rec(2)),
				},
			},
		}},
	)
	return fib
}
