package interpreter

import (
	"regexp"

	"github.com/funvibe/irfold/internal/config"
	"github.com/funvibe/irfold/internal/ir"
)

// The host bridge: for each IR class marked intrinsic, a constructor table,
// an instance-method table, a static-method table, and a companion accessor.
// Lookups must be total for marked classes — a miss is an internal error,
// never a source-language exception.

type intrinsicMethod func(i *Interpreter, recv *Wrapped, args []Value) ExecutionResult

type intrinsicStatic func(i *Interpreter, args []Value) ExecutionResult

type intrinsicEntry struct {
	construct func(i *Interpreter, ctor *ir.Function, args []Value) ExecutionResult
	methods   map[string]intrinsicMethod
	statics   map[string]intrinsicStatic
	companion func(i *Interpreter, class *ir.Class) Value
	valueOf   func(i *Interpreter, class *ir.Class, name string) Value
}

// intrinsicTable is keyed by fully-qualified class name. Immutable after
// init and shared across evaluator instances.
var intrinsicTable = map[string]*intrinsicEntry{
	config.RegexFQName: regexIntrinsic(),
}

func (i *Interpreter) intrinsicEntryFor(class *ir.Class) *intrinsicEntry {
	entry, ok := intrinsicTable[class.FQName]
	if !ok {
		internalf("class %s is marked intrinsic but has no host binding", class.FQName)
	}
	return entry
}

func (i *Interpreter) intrinsicConstruct(class *ir.Class, ctor *ir.Function, args []Value) ExecutionResult {
	entry := i.intrinsicEntryFor(class)
	if entry.construct == nil {
		internalf("intrinsic class %s has no host constructor", class.FQName)
	}
	return entry.construct(i, ctor, args)
}

func (i *Interpreter) intrinsicMethod(recv *Wrapped, fn *ir.Function, args []Value) ExecutionResult {
	entry := i.intrinsicEntryFor(recv.Class)
	method, ok := entry.methods[fn.Name]
	if !ok {
		internalf("intrinsic class %s has no host method %s", recv.Class.FQName, fn.Name)
	}
	return method(i, recv, args)
}

func (i *Interpreter) intrinsicStatic(fn *ir.Function, args []Value) ExecutionResult {
	entry := i.intrinsicEntryFor(fn.Parent)
	static, ok := entry.statics[fn.Name]
	if !ok {
		internalf("intrinsic class %s has no host static %s", fn.Parent.FQName, fn.Name)
	}
	return static(i, args)
}

func (i *Interpreter) intrinsicCompanion(class *ir.Class) Value {
	entry := i.intrinsicEntryFor(class)
	if entry.companion == nil {
		internalf("intrinsic class %s has no companion accessor", class.FQName)
	}
	return entry.companion(i, class)
}

func (i *Interpreter) intrinsicEnumValueOf(class *ir.Class, name string) Value {
	entry := i.intrinsicEntryFor(class)
	if entry.valueOf == nil {
		internalf("intrinsic enum %s has no host valueOf", class.FQName)
	}
	return entry.valueOf(i, class, name)
}

// hostRegex is the host object behind a Regex value. The anchored variant
// compiles lazily for whole-input matching.
type hostRegex struct {
	pattern  string
	re       *regexp.Regexp
	anchored *regexp.Regexp
}

func (r *hostRegex) String() string { return r.pattern }

func (r *hostRegex) entire() *regexp.Regexp {
	if r.anchored == nil {
		r.anchored = regexp.MustCompile(`\A(?:` + r.pattern + `)\z`)
	}
	return r.anchored
}

func regexIntrinsic() *intrinsicEntry {
	arg := func(args []Value, idx int) string {
		return args[idx].(*Primitive).Raw.(string)
	}
	return &intrinsicEntry{
		construct: func(i *Interpreter, ctor *ir.Function, args []Value) ExecutionResult {
			pattern := arg(args, 0)
			re, err := regexp.Compile(pattern)
			if err != nil {
				return i.raise(i.builtins.IllegalArgument, "invalid regular expression %q: %v", pattern, err)
			}
			i.stack.setReturn(&Wrapped{
				Host:  &hostRegex{pattern: pattern, re: re},
				Class: ctor.Parent,
			})
			return next
		},
		methods: map[string]intrinsicMethod{
			"matches": func(i *Interpreter, recv *Wrapped, args []Value) ExecutionResult {
				r := recv.Host.(*hostRegex)
				return i.finish(ir.KindBoolean, r.entire().MatchString(arg(args, 0)))
			},
			"containsMatchIn": func(i *Interpreter, recv *Wrapped, args []Value) ExecutionResult {
				r := recv.Host.(*hostRegex)
				return i.finish(ir.KindBoolean, r.re.MatchString(arg(args, 0)))
			},
			"replace": func(i *Interpreter, recv *Wrapped, args []Value) ExecutionResult {
				r := recv.Host.(*hostRegex)
				return i.finish(ir.KindString, r.re.ReplaceAllString(arg(args, 0), arg(args, 1)))
			},
			"find": func(i *Interpreter, recv *Wrapped, args []Value) ExecutionResult {
				r := recv.Host.(*hostRegex)
				loc := r.re.FindString(arg(args, 0))
				if loc == "" && !r.re.MatchString(arg(args, 0)) {
					i.stack.setReturn(i.nullValue())
					return next
				}
				return i.finish(ir.KindString, loc)
			},
			"pattern": func(i *Interpreter, recv *Wrapped, args []Value) ExecutionResult {
				return i.finish(ir.KindString, recv.Host.(*hostRegex).pattern)
			},
			"toString": func(i *Interpreter, recv *Wrapped, args []Value) ExecutionResult {
				return i.finish(ir.KindString, recv.Host.(*hostRegex).pattern)
			},
		},
	}
}
