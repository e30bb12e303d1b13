// Package irdoc loads serialized IR documents. A document declares enums,
// classes, and functions of one module fragment plus a main expression, the
// shape the fold driver hands to the evaluator. The YAML form mirrors the
// resolved tree: member calls name their owning class explicitly, so the
// loader resolves symbols without re-running a frontend.
package irdoc

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/irfold/internal/ir"
)

// Document is a loaded module fragment ready for evaluation.
type Document struct {
	Builtins *ir.Builtins
	Main     ir.Expr
}

type docFile struct {
	Package   string      `yaml:"package"`
	File      string      `yaml:"file"`
	Enums     []enumDecl  `yaml:"enums"`
	Classes   []classDecl `yaml:"classes"`
	Functions []funcDecl  `yaml:"functions"`
	Main      yaml.Node   `yaml:"main"`
}

type enumDecl struct {
	Name    string   `yaml:"name"`
	Entries []string `yaml:"entries"`
}

type classDecl struct {
	Name   string      `yaml:"name"`
	Data   bool        `yaml:"data"`
	Fields []fieldDecl `yaml:"fields"`
}

type fieldDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type funcDecl struct {
	Name    string      `yaml:"name"`
	Line    int         `yaml:"line"`
	Params  []fieldDecl `yaml:"params"`
	Returns string      `yaml:"returns"`
	Body    []yaml.Node `yaml:"body"`
}

// loader carries resolution state while building the tree.
type loader struct {
	builtins *ir.Builtins
	pkg      string
	file     string

	classes   map[string]*ir.Class
	functions map[string]*ir.Function
	scopes    []map[string]*ir.Variable

	// currentFn is the function whose body is being built; return
	// expressions target it.
	currentFn *ir.Function
}

// Load parses and resolves an IR document.
func Load(data []byte) (*Document, error) {
	var df docFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("irdoc: %w", err)
	}
	if df.Package == "" {
		df.Package = "main"
	}
	if df.File == "" {
		df.File = "Main.lang"
	}

	l := &loader{
		builtins:  ir.NewBuiltins(),
		pkg:       df.Package,
		file:      df.File,
		classes:   make(map[string]*ir.Class),
		functions: make(map[string]*ir.Function),
	}

	for _, e := range df.Enums {
		l.classes[e.Name] = ir.NewEnumClass(l.builtins, l.pkg, e.Name, l.file, e.Entries...)
	}
	for _, c := range df.Classes {
		if err := l.declareClass(c); err != nil {
			return nil, err
		}
	}
	// Declare function signatures before bodies so calls resolve forward.
	decls := make([]*ir.Function, len(df.Functions))
	for idx, f := range df.Functions {
		fn := ir.NewFunction(l.pkg, f.Name, l.file, f.Line, l.typeRef(f.Returns))
		for _, p := range f.Params {
			ir.AddParam(fn, p.Name, l.typeRef(p.Type), nil)
		}
		l.functions[f.Name] = fn
		decls[idx] = fn
	}
	for idx, f := range df.Functions {
		if err := l.buildFunctionBody(decls[idx], f.Body); err != nil {
			return nil, err
		}
	}

	if df.Main.Kind == 0 {
		return nil, fmt.Errorf("irdoc: document has no main expression")
	}
	l.pushScope()
	main, err := l.expr(&df.Main)
	if err != nil {
		return nil, err
	}
	return &Document{Builtins: l.builtins, Main: main}, nil
}

// declareClass builds a class whose primary constructor binds each parameter
// onto its same-named field, the shape a data-class declaration lowers to.
func (l *loader) declareClass(decl classDecl) error {
	c := ir.NewClass(l.builtins, l.pkg, decl.Name, l.file)
	c.Data = decl.Data
	l.classes[decl.Name] = c

	ctor := ir.AddConstructor(c, true)
	var stmts []ir.Expr
	for _, fd := range decl.Fields {
		f := ir.AddField(c, fd.Name, l.typeRef(fd.Type))
		sym := ir.AddParam(ctor, fd.Name, f.Typ, nil)
		stmts = append(stmts, &ir.SetField{
			Receiver: &ir.GetValue{Symbol: ctor.Dispatch},
			Field:    f,
			Value:    &ir.GetValue{Symbol: sym},
		})
	}
	stmts = append(stmts, &ir.InstanceInitializer{Class: c})
	ctor.Body = &ir.Block{Stmts: stmts}
	return nil
}

func (l *loader) buildFunctionBody(fn *ir.Function, body []yaml.Node) error {
	l.pushScope()
	defer l.popScope()
	for _, p := range fn.Params {
		l.bind(p.Symbol)
	}
	l.currentFn = fn
	defer func() { l.currentFn = nil }()

	stmts := make([]ir.Expr, 0, len(body))
	for idx := range body {
		e, err := l.expr(&body[idx])
		if err != nil {
			return fmt.Errorf("in function %s: %w", fn.Name, err)
		}
		stmts = append(stmts, e)
	}
	fn.Body = &ir.Block{Stmts: stmts}
	return nil
}

func (l *loader) classRef(name string) (*ir.Class, error) {
	if c, ok := l.classes[name]; ok {
		return c, nil
	}
	if c := l.builtins.Class(name); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("unknown class %q", name)
}

func (l *loader) typeRef(name string) *ir.Type {
	if name == "" {
		return ir.TypeOf(l.builtins.Unit)
	}
	nullable := false
	if name[len(name)-1] == '?' {
		nullable = true
		name = name[:len(name)-1]
	}
	c, err := l.classRef(name)
	if err != nil {
		c = l.builtins.Any
	}
	if nullable {
		return ir.NullableOf(c)
	}
	return ir.TypeOf(c)
}

func (l *loader) pushScope() {
	l.scopes = append(l.scopes, make(map[string]*ir.Variable))
}

func (l *loader) popScope() {
	l.scopes = l.scopes[:len(l.scopes)-1]
}

func (l *loader) bind(sym *ir.Variable) {
	l.scopes[len(l.scopes)-1][sym.Name] = sym
}

func (l *loader) resolve(name string) (*ir.Variable, error) {
	for idx := len(l.scopes) - 1; idx >= 0; idx-- {
		if sym, ok := l.scopes[idx][name]; ok {
			return sym, nil
		}
	}
	return nil, fmt.Errorf("unbound variable %q", name)
}
