package irdoc

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/irfold/internal/ir"
)

// expr decodes one expression node. Every form is a single-key mapping (or a
// bare scalar for variable reads, or a sequence for a block).
func (l *loader) expr(node *yaml.Node) (ir.Expr, error) {
	if node.Kind == yaml.ScalarNode {
		sym, err := l.resolve(node.Value)
		if err != nil {
			return nil, err
		}
		return &ir.GetValue{Symbol: sym}, nil
	}
	if node.Kind == yaml.SequenceNode {
		return l.blockExpr(node)
	}
	if node.Kind != yaml.MappingNode || len(node.Content) < 2 {
		return nil, fmt.Errorf("unsupported expression node at line %d", node.Line)
	}

	form := node.Content[0].Value
	payload := node.Content[1]

	switch form {
	case "int", "long", "byte", "short", "boolean", "char", "float", "double", "string", "null", "unit":
		return l.constExpr(form, payload)
	case "uint", "ulong", "ubyte", "ushort":
		return l.unsignedConstExpr(form, payload)
	case "get":
		sym, err := l.resolve(payload.Value)
		if err != nil {
			return nil, err
		}
		return &ir.GetValue{Symbol: sym}, nil
	case "set":
		return l.setExpr(payload)
	case "var":
		return l.varExpr(payload)
	case "getfield":
		return l.getFieldExpr(payload)
	case "setfield":
		return l.setFieldExpr(payload)
	case "call":
		return l.callExpr(payload)
	case "new":
		return l.newExpr(payload)
	case "concat":
		return l.concatExpr(payload)
	case "block":
		return l.blockExpr(payload)
	case "while":
		return l.whileExpr(payload)
	case "when":
		return l.whenExpr(payload)
	case "break":
		return &ir.Break{Label: payload.Value}, nil
	case "continue":
		return &ir.Continue{Label: payload.Value}, nil
	case "return":
		return l.returnExpr(payload)
	case "throw":
		inner, err := l.expr(payload)
		if err != nil {
			return nil, err
		}
		return &ir.Throw{Value: inner}, nil
	case "try":
		return l.tryExpr(payload)
	case "cast", "implicitcast", "safecast", "instanceof", "notinstanceof":
		return l.typeOpExpr(form, payload)
	case "tounit":
		inner, err := l.expr(payload)
		if err != nil {
			return nil, err
		}
		return &ir.TypeOp{Op: ir.ImplicitCoercionToUnit, Arg: inner, Target: ir.TypeOf(l.builtins.Unit)}, nil
	case "enum":
		return l.enumExpr(payload)
	case "lambda":
		return l.lambdaExpr(payload)
	case "vararg":
		return l.varargExpr(payload)
	}
	return nil, fmt.Errorf("unknown expression form %q at line %d", form, node.Line)
}

func (l *loader) constExpr(form string, payload *yaml.Node) (ir.Expr, error) {
	b := l.builtins
	switch form {
	case "null":
		return &ir.Const{Kind: ir.KindNull, Typ: ir.NullableOf(b.Nothing)}, nil
	case "unit":
		return &ir.Const{Kind: ir.KindUnit, Typ: ir.TypeOf(b.Unit)}, nil
	case "boolean":
		var v bool
		if err := payload.Decode(&v); err != nil {
			return nil, err
		}
		return &ir.Const{Kind: ir.KindBoolean, Value: v, Typ: ir.TypeOf(b.Boolean)}, nil
	case "char":
		var s string
		if err := payload.Decode(&s); err != nil {
			return nil, err
		}
		runes := []rune(s)
		if len(runes) != 1 {
			return nil, fmt.Errorf("char literal %q must hold exactly one character", s)
		}
		return &ir.Const{Kind: ir.KindChar, Value: runes[0], Typ: ir.TypeOf(b.Char)}, nil
	case "string":
		var s string
		if err := payload.Decode(&s); err != nil {
			return nil, err
		}
		return &ir.Const{Kind: ir.KindString, Value: s, Typ: ir.TypeOf(b.String)}, nil
	case "float":
		var v float32
		if err := payload.Decode(&v); err != nil {
			return nil, err
		}
		return &ir.Const{Kind: ir.KindFloat, Value: v, Typ: ir.TypeOf(b.Float)}, nil
	case "double":
		var v float64
		if err := payload.Decode(&v); err != nil {
			return nil, err
		}
		return &ir.Const{Kind: ir.KindDouble, Value: v, Typ: ir.TypeOf(b.Double)}, nil
	}
	var v int64
	if err := payload.Decode(&v); err != nil {
		return nil, err
	}
	switch form {
	case "byte":
		return &ir.Const{Kind: ir.KindByte, Value: int8(v), Typ: ir.TypeOf(b.Byte)}, nil
	case "short":
		return &ir.Const{Kind: ir.KindShort, Value: int16(v), Typ: ir.TypeOf(b.Short)}, nil
	case "long":
		return &ir.Const{Kind: ir.KindLong, Value: v, Typ: ir.TypeOf(b.Long)}, nil
	default:
		return &ir.Const{Kind: ir.KindInt, Value: int32(v), Typ: ir.TypeOf(b.Int)}, nil
	}
}

// unsignedConstExpr produces a constant typed by the unsigned class; the
// evaluator synthesizes the wrapping constructor call.
func (l *loader) unsignedConstExpr(form string, payload *yaml.Node) (ir.Expr, error) {
	var v int64
	if err := payload.Decode(&v); err != nil {
		return nil, err
	}
	b := l.builtins
	switch form {
	case "ubyte":
		return &ir.Const{Kind: ir.KindByte, Value: int8(v), Typ: ir.TypeOf(b.UByte)}, nil
	case "ushort":
		return &ir.Const{Kind: ir.KindShort, Value: int16(v), Typ: ir.TypeOf(b.UShort)}, nil
	case "ulong":
		return &ir.Const{Kind: ir.KindLong, Value: v, Typ: ir.TypeOf(b.ULong)}, nil
	default:
		return &ir.Const{Kind: ir.KindInt, Value: int32(v), Typ: ir.TypeOf(b.UInt)}, nil
	}
}

func (l *loader) setExpr(payload *yaml.Node) (ir.Expr, error) {
	var spec struct {
		Name  string    `yaml:"name"`
		Value yaml.Node `yaml:"value"`
	}
	if err := payload.Decode(&spec); err != nil {
		return nil, err
	}
	sym, err := l.resolve(spec.Name)
	if err != nil {
		return nil, err
	}
	value, err := l.expr(&spec.Value)
	if err != nil {
		return nil, err
	}
	return &ir.SetValue{Symbol: sym, Value: value}, nil
}

func (l *loader) varExpr(payload *yaml.Node) (ir.Expr, error) {
	var spec struct {
		Name string    `yaml:"name"`
		Type string    `yaml:"type"`
		Init yaml.Node `yaml:"init"`
	}
	if err := payload.Decode(&spec); err != nil {
		return nil, err
	}
	var init ir.Expr
	if spec.Init.Kind != 0 {
		var err error
		init, err = l.expr(&spec.Init)
		if err != nil {
			return nil, err
		}
	}
	sym := &ir.Variable{Name: spec.Name, Typ: l.typeRef(spec.Type)}
	l.bind(sym)
	return &ir.VarDecl{Symbol: sym, Init: init}, nil
}

func (l *loader) fieldRef(className, fieldName string) (*ir.Field, error) {
	class, err := l.classRef(className)
	if err != nil {
		return nil, err
	}
	f := class.FindField(fieldName)
	if f == nil {
		return nil, fmt.Errorf("class %s has no field %q", className, fieldName)
	}
	return f, nil
}

func (l *loader) getFieldExpr(payload *yaml.Node) (ir.Expr, error) {
	var spec struct {
		Receiver yaml.Node `yaml:"receiver"`
		Class    string    `yaml:"class"`
		Field    string    `yaml:"field"`
	}
	if err := payload.Decode(&spec); err != nil {
		return nil, err
	}
	recv, err := l.expr(&spec.Receiver)
	if err != nil {
		return nil, err
	}
	f, err := l.fieldRef(spec.Class, spec.Field)
	if err != nil {
		return nil, err
	}
	return &ir.GetField{Receiver: recv, Field: f}, nil
}

func (l *loader) setFieldExpr(payload *yaml.Node) (ir.Expr, error) {
	var spec struct {
		Receiver yaml.Node `yaml:"receiver"`
		Class    string    `yaml:"class"`
		Field    string    `yaml:"field"`
		Value    yaml.Node `yaml:"value"`
	}
	if err := payload.Decode(&spec); err != nil {
		return nil, err
	}
	recv, err := l.expr(&spec.Receiver)
	if err != nil {
		return nil, err
	}
	f, err := l.fieldRef(spec.Class, spec.Field)
	if err != nil {
		return nil, err
	}
	value, err := l.expr(&spec.Value)
	if err != nil {
		return nil, err
	}
	return &ir.SetField{Receiver: recv, Field: f, Value: value}, nil
}

func (l *loader) callExpr(payload *yaml.Node) (ir.Expr, error) {
	var spec struct {
		Function  string      `yaml:"function"`
		Method    string      `yaml:"method"`
		Class     string      `yaml:"class"`
		Receiver  yaml.Node   `yaml:"receiver"`
		Args      []yaml.Node `yaml:"args"`
		Signature []string    `yaml:"signature"`
		Super     bool        `yaml:"super"`
	}
	if err := payload.Decode(&spec); err != nil {
		return nil, err
	}

	args := make([]ir.Expr, 0, len(spec.Args))
	for idx := range spec.Args {
		a, err := l.expr(&spec.Args[idx])
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}

	if spec.Function != "" {
		fn, ok := l.functions[spec.Function]
		if !ok {
			return nil, fmt.Errorf("unknown function %q", spec.Function)
		}
		return &ir.Call{Fn: fn, Args: args}, nil
	}

	class, err := l.classRef(spec.Class)
	if err != nil {
		return nil, err
	}
	fn, err := resolveMethod(class, spec.Method, len(args), spec.Signature)
	if err != nil {
		return nil, err
	}
	call := &ir.Call{Fn: fn, Args: args, Super: spec.Super}
	if spec.Receiver.Kind != 0 {
		recv, err := l.expr(&spec.Receiver)
		if err != nil {
			return nil, err
		}
		call.Dispatch = recv
	}
	return call, nil
}

// resolveMethod selects a member function by name and arity, walking the
// super chain. An explicit signature disambiguates same-arity overloads;
// without one, an overload whose parameters all match the receiver class is
// preferred (the homogeneous operator case).
func resolveMethod(class *ir.Class, name string, argc int, signature []string) (*ir.Function, error) {
	var fallback *ir.Function
	for cur := class; cur != nil; cur = cur.Super {
		for _, fn := range cur.Functions {
			if fn.Name != name || len(fn.Params) != argc {
				continue
			}
			if len(signature) > 0 {
				if matchesSignature(fn, signature) {
					return fn, nil
				}
				continue
			}
			homogeneous := true
			for _, p := range fn.Params {
				if p.Symbol.Typ.Class != cur {
					homogeneous = false
					break
				}
			}
			if homogeneous {
				return fn, nil
			}
			if fallback == nil {
				fallback = fn
			}
		}
		if fallback != nil {
			break
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, fmt.Errorf("class %s has no method %s/%d", class.Name, name, argc)
}

func matchesSignature(fn *ir.Function, signature []string) bool {
	if len(signature) != len(fn.Params) {
		return false
	}
	for idx, want := range signature {
		if fn.Params[idx].Symbol.Typ.Class.Name != want {
			return false
		}
	}
	return true
}

func (l *loader) newExpr(payload *yaml.Node) (ir.Expr, error) {
	var spec struct {
		Class string      `yaml:"class"`
		Args  []yaml.Node `yaml:"args"`
	}
	if err := payload.Decode(&spec); err != nil {
		return nil, err
	}
	class, err := l.classRef(spec.Class)
	if err != nil {
		return nil, err
	}
	if len(class.Constructors) == 0 {
		return nil, fmt.Errorf("class %s has no constructor", spec.Class)
	}
	args := make([]ir.Expr, 0, len(spec.Args))
	for idx := range spec.Args {
		a, err := l.expr(&spec.Args[idx])
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	ctor := class.Constructors[0]
	for _, cand := range class.Constructors {
		if len(cand.Params) == len(args) {
			ctor = cand
			break
		}
	}
	return &ir.ConstructorCall{Class: class, Ctor: ctor, Args: args}, nil
}

func (l *loader) concatExpr(payload *yaml.Node) (ir.Expr, error) {
	if payload.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("concat expects a sequence at line %d", payload.Line)
	}
	parts := make([]ir.Expr, 0, len(payload.Content))
	for _, item := range payload.Content {
		e, err := l.expr(item)
		if err != nil {
			return nil, err
		}
		parts = append(parts, e)
	}
	return &ir.StringConcat{Args: parts}, nil
}

func (l *loader) blockExpr(payload *yaml.Node) (ir.Expr, error) {
	if payload.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("block expects a sequence at line %d", payload.Line)
	}
	l.pushScope()
	defer l.popScope()
	stmts := make([]ir.Expr, 0, len(payload.Content))
	for _, item := range payload.Content {
		e, err := l.expr(item)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, e)
	}
	return &ir.Block{Stmts: stmts}, nil
}

func (l *loader) whileExpr(payload *yaml.Node) (ir.Expr, error) {
	var spec struct {
		Label string    `yaml:"label"`
		Cond  yaml.Node `yaml:"cond"`
		Body  yaml.Node `yaml:"body"`
	}
	if err := payload.Decode(&spec); err != nil {
		return nil, err
	}
	cond, err := l.expr(&spec.Cond)
	if err != nil {
		return nil, err
	}
	body, err := l.expr(&spec.Body)
	if err != nil {
		return nil, err
	}
	return &ir.While{Label: spec.Label, Cond: cond, Body: body}, nil
}

func (l *loader) whenExpr(payload *yaml.Node) (ir.Expr, error) {
	if payload.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("when expects a branch sequence at line %d", payload.Line)
	}
	when := &ir.When{}
	for _, item := range payload.Content {
		var spec struct {
			Cond yaml.Node `yaml:"cond"`
			Then yaml.Node `yaml:"then"`
			Else yaml.Node `yaml:"else"`
		}
		if err := item.Decode(&spec); err != nil {
			return nil, err
		}
		if spec.Else.Kind != 0 {
			result, err := l.expr(&spec.Else)
			if err != nil {
				return nil, err
			}
			when.Branches = append(when.Branches, &ir.Branch{
				Cond:   &ir.Const{Kind: ir.KindBoolean, Value: true, Typ: ir.TypeOf(l.builtins.Boolean)},
				Result: result,
			})
			continue
		}
		cond, err := l.expr(&spec.Cond)
		if err != nil {
			return nil, err
		}
		result, err := l.expr(&spec.Then)
		if err != nil {
			return nil, err
		}
		when.Branches = append(when.Branches, &ir.Branch{Cond: cond, Result: result})
	}
	return when, nil
}

func (l *loader) returnExpr(payload *yaml.Node) (ir.Expr, error) {
	if l.currentFn == nil {
		return nil, fmt.Errorf("return outside a function body at line %d", payload.Line)
	}
	value, err := l.expr(payload)
	if err != nil {
		return nil, err
	}
	return &ir.Return{Target: l.currentFn, Value: value}, nil
}

func (l *loader) tryExpr(payload *yaml.Node) (ir.Expr, error) {
	var spec struct {
		Body    yaml.Node `yaml:"body"`
		Catches []struct {
			Param string    `yaml:"param"`
			Class string    `yaml:"class"`
			Body  yaml.Node `yaml:"body"`
		} `yaml:"catches"`
		Finally yaml.Node `yaml:"finally"`
	}
	if err := payload.Decode(&spec); err != nil {
		return nil, err
	}
	body, err := l.expr(&spec.Body)
	if err != nil {
		return nil, err
	}
	try := &ir.Try{Body: body}
	for _, c := range spec.Catches {
		class, err := l.classRef(c.Class)
		if err != nil {
			return nil, err
		}
		param := &ir.Variable{Name: c.Param, Typ: ir.TypeOf(class)}
		l.pushScope()
		l.bind(param)
		cbody, err := l.expr(&c.Body)
		l.popScope()
		if err != nil {
			return nil, err
		}
		try.Catches = append(try.Catches, &ir.Catch{Param: param, Body: cbody})
	}
	if spec.Finally.Kind != 0 {
		finally, err := l.expr(&spec.Finally)
		if err != nil {
			return nil, err
		}
		try.Finally = finally
	}
	return try, nil
}

func (l *loader) typeOpExpr(form string, payload *yaml.Node) (ir.Expr, error) {
	var spec struct {
		Value yaml.Node `yaml:"value"`
		To    string    `yaml:"to"`
	}
	if err := payload.Decode(&spec); err != nil {
		return nil, err
	}
	value, err := l.expr(&spec.Value)
	if err != nil {
		return nil, err
	}
	target := l.typeRef(spec.To)
	op := map[string]ir.TypeOperator{
		"cast":          ir.Cast,
		"implicitcast":  ir.ImplicitCast,
		"safecast":      ir.SafeCast,
		"instanceof":    ir.InstanceOf,
		"notinstanceof": ir.NotInstanceOf,
	}[form]
	return &ir.TypeOp{Op: op, Arg: value, Target: target}, nil
}

func (l *loader) enumExpr(payload *yaml.Node) (ir.Expr, error) {
	var spec struct {
		Class string `yaml:"class"`
		Entry string `yaml:"entry"`
	}
	if err := payload.Decode(&spec); err != nil {
		return nil, err
	}
	class, err := l.classRef(spec.Class)
	if err != nil {
		return nil, err
	}
	entry := class.FindEntry(spec.Entry)
	if entry == nil {
		return nil, fmt.Errorf("enum %s has no entry %q", spec.Class, spec.Entry)
	}
	return &ir.EnumValue{Class: class, Entry: entry}, nil
}

func (l *loader) lambdaExpr(payload *yaml.Node) (ir.Expr, error) {
	var spec struct {
		Params []fieldDecl `yaml:"params"`
		Body   []yaml.Node `yaml:"body"`
	}
	if err := payload.Decode(&spec); err != nil {
		return nil, err
	}
	fn := ir.NewFunction(l.pkg, "<anonymous>", l.file, payload.Line, ir.NullableOf(l.builtins.Any))

	l.pushScope()
	defer l.popScope()
	for _, p := range spec.Params {
		l.bind(ir.AddParam(fn, p.Name, l.typeRef(p.Type), nil))
	}

	prevFn := l.currentFn
	l.currentFn = fn
	stmts := make([]ir.Expr, 0, len(spec.Body))
	for idx := range spec.Body {
		e, err := l.expr(&spec.Body[idx])
		if err != nil {
			l.currentFn = prevFn
			return nil, err
		}
		stmts = append(stmts, e)
	}
	l.currentFn = prevFn
	fn.Body = &ir.Block{Stmts: stmts}

	iface := l.builtins.FunctionIface(len(fn.Params))
	return &ir.FunctionExpr{Fn: fn, Iface: iface}, nil
}

func (l *loader) varargExpr(payload *yaml.Node) (ir.Expr, error) {
	var spec struct {
		Type     string      `yaml:"type"`
		Elements []yaml.Node `yaml:"elements"`
	}
	if err := payload.Decode(&spec); err != nil {
		return nil, err
	}
	vararg := &ir.Vararg{Elem: l.typeRef(spec.Type)}
	for idx := range spec.Elements {
		item := &spec.Elements[idx]
		if item.Kind == yaml.MappingNode && len(item.Content) >= 2 && item.Content[0].Value == "spread" {
			inner, err := l.expr(item.Content[1])
			if err != nil {
				return nil, err
			}
			vararg.Elements = append(vararg.Elements, &ir.Spread{Value: inner})
			continue
		}
		e, err := l.expr(item)
		if err != nil {
			return nil, err
		}
		vararg.Elements = append(vararg.Elements, e)
	}
	return vararg, nil
}
