package interpreter

import (
	"github.com/funvibe/irfold/internal/ir"
)

// binding ties an IR symbol to its current value. Symbol identity is pointer
// identity.
type binding struct {
	symbol *ir.Variable
	value  Value
}

// scope is one lexical level of bindings inside a frame. Sub-frames chain to
// their parent scope and inherit its visibility; full frames start a fresh
// chain.
type scope struct {
	bindings []binding
	parent   *scope
}

func (s *scope) lookup(symbol *ir.Variable) (*binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		for i := range cur.bindings {
			if cur.bindings[i].symbol == symbol {
				return &cur.bindings[i], true
			}
		}
	}
	return nil, false
}

// frame is one full call frame: a scope chain plus its stack-trace entry.
type frame struct {
	current *scope
	entry   string
}

// callStack owns all evaluation state scoped to one interpret() run: the
// frame stack, the parallel stack-trace list, and the single return
// register threaded across frame boundaries.
type callStack struct {
	frames   []*frame
	maxDepth int

	// ret is the return register. Exactly one value occupies it across the
	// boundary of any step that completes with Next or Return.
	ret Value
}

func newCallStack(maxDepth int) *callStack {
	return &callStack{maxDepth: maxDepth}
}

// pushFrame opens a new full frame with its formatted trace entry. The
// caller must check the depth cap first via overflowed.
func (s *callStack) pushFrame(entry string) {
	s.frames = append(s.frames, &frame{current: &scope{}, entry: entry})
}

func (s *callStack) overflowed() bool {
	return len(s.frames) >= s.maxDepth
}

// popFrame drops the top frame on every exit path, including exceptions.
func (s *callStack) popFrame() {
	s.frames = s.frames[:len(s.frames)-1]
}

// pushSubFrame opens a child scope that inherits the current visibility.
func (s *callStack) pushSubFrame() {
	top := s.top()
	top.current = &scope{parent: top.current}
}

func (s *callStack) popSubFrame() {
	top := s.top()
	top.current = top.current.parent
}

func (s *callStack) top() *frame {
	return s.frames[len(s.frames)-1]
}

// declare binds a symbol in the innermost scope, shadowing any outer
// binding of the same symbol. Symbols match by identity, so a distinct
// symbol with an equal name shadows nothing.
func (s *callStack) declare(symbol *ir.Variable, v Value) {
	top := s.top()
	top.current.bindings = append(top.current.bindings, binding{symbol: symbol, value: v})
}

// load resolves a symbol, walking scopes innermost-out within the current
// full frame only.
func (s *callStack) load(symbol *ir.Variable) (Value, bool) {
	if len(s.frames) == 0 {
		return nil, false
	}
	if b, ok := s.top().current.lookup(symbol); ok {
		return b.value, true
	}
	return nil, false
}

// assign mutates an existing binding in the scope where it was found.
func (s *callStack) assign(symbol *ir.Variable, v Value) bool {
	if len(s.frames) == 0 {
		return false
	}
	if b, ok := s.top().current.lookup(symbol); ok {
		b.value = v
		return true
	}
	return false
}

// visibleBindings snapshots every binding visible from the innermost scope,
// outermost first. Used to seed lambda frames: closure values resolve
// through the enclosing frame at call time.
func (s *callStack) visibleBindings() []binding {
	if len(s.frames) == 0 {
		return nil
	}
	var scopes []*scope
	for cur := s.top().current; cur != nil; cur = cur.parent {
		scopes = append(scopes, cur)
	}
	var out []binding
	for i := len(scopes) - 1; i >= 0; i-- {
		out = append(out, scopes[i].bindings...)
	}
	return out
}

// setReturn stores v in the return register.
func (s *callStack) setReturn(v Value) { s.ret = v }

// returned reads the return register without clearing it.
func (s *callStack) returned() Value { return s.ret }

// frozenTrace captures the trace for an exception, innermost frame first,
// the way reports print it. The root frame has no entry and is skipped.
func (s *callStack) frozenTrace() []string {
	out := make([]string, 0, len(s.frames))
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].entry == "" {
			continue
		}
		out = append(out, s.frames[i].entry)
	}
	return out
}
