package irdoc

import (
	"strings"
	"testing"

	"github.com/funvibe/irfold/internal/interpreter"
	"github.com/funvibe/irfold/internal/ir"
)

func evalDoc(t *testing.T, src string) ir.Expr {
	t.Helper()
	doc, err := Load([]byte(src))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return interpreter.New(doc.Builtins).Interpret(doc.Main)
}

func evalDocConst(t *testing.T, src string) *ir.Const {
	t.Helper()
	result := evalDoc(t, src)
	c, ok := result.(*ir.Const)
	if !ok {
		if e, isErr := result.(*ir.ErrorExpr); isErr {
			t.Fatalf("document evaluation errored:%s", e.Description)
		}
		t.Fatalf("document evaluation produced %T", result)
	}
	return c
}

// TestLoadFibonacci round-trips a recursive function document through the
// evaluator.
func TestLoadFibonacci(t *testing.T) {
	const src = `
file: Fib.lang
functions:
  - name: fib
    line: 2
    params: [{name: n, type: Int}]
    returns: Int
    body:
      - when:
          - cond: {call: {method: less, class: Int, receiver: n, args: [{int: 2}]}}
            then: {return: n}
          - else:
              return:
                call:
                  method: plus
                  class: Int
                  receiver: {call: {function: fib, args: [{call: {method: minus, class: Int, receiver: n, args: [{int: 1}]}}]}}
                  args: [{call: {function: fib, args: [{call: {method: minus, class: Int, receiver: n, args: [{int: 2}]}}]}}]
main: {call: {function: fib, args: [{int: 10}]}}
`
	c := evalDocConst(t, src)
	if c.Kind != ir.KindInt || c.Value.(int32) != 55 {
		t.Fatalf("fib(10) = (%s, %v), want (Int, 55)", c.Kind, c.Value)
	}
}

// TestLoadEnumDocument declares an enum and reads an entry ordinal.
func TestLoadEnumDocument(t *testing.T) {
	const src = `
enums:
  - name: Color
    entries: [RED, GREEN, BLUE]
main:
  call:
    method: ordinal
    class: Enum
    receiver: {call: {method: valueOf, class: Color, args: [{string: GREEN}]}}
`
	c := evalDocConst(t, src)
	if c.Value.(int32) != 1 {
		t.Fatalf("GREEN ordinal = %v, want 1", c.Value)
	}
}

// TestLoadDataClassDocument stringifies a data-class instance.
func TestLoadDataClassDocument(t *testing.T) {
	const src = `
classes:
  - name: Point
    data: true
    fields: [{name: x, type: Int}, {name: y, type: Int}]
main:
  concat:
    - {string: "x="}
    - {new: {class: Point, args: [{int: 1}, {int: 2}]}}
`
	c := evalDocConst(t, src)
	if c.Value.(string) != "x=Point(x=1, y=2)" {
		t.Fatalf("concat = %q", c.Value)
	}
}

// TestLoadTryDocument exercises catch plus finally through the document
// surface.
func TestLoadTryDocument(t *testing.T) {
	const src = `
main:
  try:
    body: {call: {method: div, class: Int, receiver: {int: 1}, args: [{int: 0}]}}
    catches:
      - {param: e, class: ArithmeticException, body: {int: -1}}
    finally: {int: 42}
`
	c := evalDocConst(t, src)
	if c.Value.(int32) != -1 {
		t.Fatalf("try/catch/finally = %v, want -1", c.Value)
	}
}

// TestLoadErrors rejects malformed documents with location context.
func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"missing main", `functions: []`, "no main expression"},
		{"unbound variable", `main: {get: ghost}`, `unbound variable "ghost"`},
		{"unknown class", `main: {new: {class: Ghost}}`, `unknown class "Ghost"`},
		{"unknown method", `main: {call: {method: ghost, class: Int, receiver: {int: 1}}}`, "no method ghost/0"},
		{"unknown form", `main: {conjure: 1}`, `unknown expression form "conjure"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.src))
			if err == nil {
				t.Fatal("Load accepted a malformed document")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not contain %q", err, tc.want)
			}
		})
	}
}

// TestLoadLambdaDocument invokes a lambda through its functional interface.
func TestLoadLambdaDocument(t *testing.T) {
	const src = `
main:
  block:
    - {var: {name: offset, type: Int, init: {int: 40}}}
    - {var: {name: f, type: Any, init: {lambda: {params: [{name: x, type: Int}], body: [{return: {call: {method: plus, class: Int, receiver: x, args: [offset]}}}]}}}}
    - {call: {method: invoke, class: Function1, receiver: f, args: [{int: 2}]}}
`
	c := evalDocConst(t, src)
	if c.Value.(int32) != 42 {
		t.Fatalf("lambda invocation = %v, want 42", c.Value)
	}
}
