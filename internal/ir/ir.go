// Package ir defines the typed, tree-shaped intermediate representation the
// evaluator consumes. The tree is fully resolved: every reference points at
// its declaration, and the evaluator observes it read-only.
package ir

// Expr is any evaluable IR node. The IR is expression-oriented: statements
// are expressions of type Unit.
type Expr interface {
	exprNode()
	Pos() int
}

// pos carries the source line of a node for stack-frame formatting.
type pos struct {
	Line int
}

func (p pos) Pos() int { return p.Line }

// Const is a literal primitive. Value holds the host representation matching
// Kind: bool, rune, int8, int16, int32, int64, float32, float64, string, or
// nil.
type Const struct {
	pos
	Kind  PrimKind
	Value interface{}
	Typ   *Type
}

// StringConcat appends the stringified form of each argument.
type StringConcat struct {
	pos
	Args []Expr
}

// GetValue reads a variable symbol.
type GetValue struct {
	pos
	Symbol *Variable
}

// SetValue writes an existing binding in place, in the frame where the
// symbol was found.
type SetValue struct {
	pos
	Symbol *Variable
	Value  Expr
}

// GetField reads a backing field off the receiver.
type GetField struct {
	pos
	Receiver Expr
	Field    *Field
}

// SetField writes a backing field slot on the receiver.
type SetField struct {
	pos
	Receiver Expr
	Field    *Field
	Value    Expr
}

// Call invokes a resolved function. Args is aligned with Fn.Params; a nil
// entry means the parameter's default expression applies. Super marks a
// super-qualified call, which must not virtualize through the runtime class.
type Call struct {
	pos
	Fn        *Function
	Dispatch  Expr
	Extension Expr
	Args      []Expr
	Super     bool
}

// ConstructorCall allocates and initializes an instance. Delegating marks
// the first statement of a constructor body: a super- or sibling-constructor
// call. EnumSuper marks the delegating call of an enum entry initializer,
// whose name/ordinal arguments the evaluator injects.
type ConstructorCall struct {
	pos
	Class      *Class
	Ctor       *Function
	Args       []Expr
	Delegating bool
	EnumSuper  bool
}

// Block is a sequence of statements evaluated in a sub-frame. Inlined marks
// blocks produced by body inlining; they share the caller's visibility the
// same way.
type Block struct {
	pos
	Stmts   []Expr
	Inlined bool
}

// VarDecl declares a local and binds its initializer, when present, in the
// current frame.
type VarDecl struct {
	pos
	Symbol *Variable
	Init   Expr
}

// While re-evaluates Cond before each iteration and runs Body while it holds.
type While struct {
	pos
	Label string
	Cond  Expr
	Body  Expr
}

// When scans branches in source order; the first branch whose condition
// yields true produces the result.
type When struct {
	pos
	Branches []*Branch
}

// Branch is one condition/result pair of a When. An else branch carries a
// true constant condition.
type Branch struct {
	Cond   Expr
	Result Expr
}

// Break unwinds to the matching labeled loop. An empty label matches the
// innermost loop.
type Break struct {
	pos
	Label string
}

// Continue resumes the next iteration of the matching labeled loop.
type Continue struct {
	pos
	Label string
}

// Return completes Target with Value.
type Return struct {
	pos
	Target *Function
	Value  Expr
}

// Throw raises Value, which must evaluate to a Throwable subtype instance.
type Throw struct {
	pos
	Value Expr
}

// Try evaluates Body, scans Catches in source order on exception, and always
// runs Finally when present.
type Try struct {
	pos
	Body    Expr
	Catches []*Catch
	Finally Expr
}

// Catch matches when the thrown class is a subtype of the parameter's
// declared type; the exception is bound to Param in a fresh sub-frame.
type Catch struct {
	Param *Variable
	Body  Expr
}

// TypeOperator discriminates TypeOp semantics.
type TypeOperator int

const (
	Cast TypeOperator = iota
	ImplicitCast
	SafeCast
	InstanceOf
	NotInstanceOf
	ImplicitCoercionToUnit
)

// TypeOp applies a cast, instance test, or unit coercion against Target.
type TypeOp struct {
	pos
	Op     TypeOperator
	Arg    Expr
	Target *Type
}

// Vararg materializes a typed array from Elements, flattening Spread
// elements.
type Vararg struct {
	pos
	Elem     *Type
	Elements []Expr
}

// Spread splats an array-valued expression into the enclosing Vararg.
type Spread struct {
	pos
	Value Expr
}

// FunctionExpr is a lambda literal: a first-class function value typed by
// its functional interface class.
type FunctionExpr struct {
	pos
	Fn    *Function
	Iface *Class
}

// EnumValue references an enum entry; instances are interned per evaluation.
type EnumValue struct {
	pos
	Class *Class
	Entry *EnumEntry
}

// GetObject references an object declaration or companion singleton.
type GetObject struct {
	pos
	Class *Class
}

// InstanceInitializer runs the property initializers of Class against the
// current receiver, then its anonymous init blocks, each list in declaration
// order.
type InstanceInitializer struct {
	pos
	Class *Class
}

// ErrorExpr is a synthesized error node. The evaluator produces these for
// surfaced exceptions and internal errors; it never evaluates one.
type ErrorExpr struct {
	pos
	Description string
	Typ         *Type
}

func (*Const) exprNode()               {}
func (*StringConcat) exprNode()        {}
func (*GetValue) exprNode()            {}
func (*SetValue) exprNode()            {}
func (*GetField) exprNode()            {}
func (*SetField) exprNode()            {}
func (*Call) exprNode()                {}
func (*ConstructorCall) exprNode()     {}
func (*Block) exprNode()               {}
func (*VarDecl) exprNode()             {}
func (*While) exprNode()               {}
func (*When) exprNode()                {}
func (*Break) exprNode()               {}
func (*Continue) exprNode()            {}
func (*Return) exprNode()              {}
func (*Throw) exprNode()               {}
func (*Try) exprNode()                 {}
func (*TypeOp) exprNode()              {}
func (*Vararg) exprNode()              {}
func (*Spread) exprNode()              {}
func (*FunctionExpr) exprNode()        {}
func (*EnumValue) exprNode()           {}
func (*GetObject) exprNode()           {}
func (*InstanceInitializer) exprNode() {}
func (*ErrorExpr) exprNode()           {}
