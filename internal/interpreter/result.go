package interpreter

import "github.com/funvibe/irfold/internal/ir"

// label is the control-flow tag carried by every evaluation step.
type label int

const (
	labelNext label = iota
	labelReturn
	labelBreak
	labelContinue
	labelBreakWhen
	labelException
)

func (l label) String() string {
	switch l {
	case labelNext:
		return "Next"
	case labelReturn:
		return "Return"
	case labelBreak:
		return "Break"
	case labelContinue:
		return "Continue"
	case labelBreakWhen:
		return "BreakWhen"
	case labelException:
		return "Exception"
	}
	return "?"
}

// ExecutionResult is the signal returned from every evaluation step. Only
// Next allows sequential evaluation to continue; any other label propagates
// to the caller unchanged, with the return register intact.
type ExecutionResult struct {
	label  label
	target *ir.Function // Return: the function being completed
	loop   string       // Break/Continue: optional loop label
}

var next = ExecutionResult{label: labelNext}

func returnOf(target *ir.Function) ExecutionResult {
	return ExecutionResult{label: labelReturn, target: target}
}

func breakOf(loop string) ExecutionResult {
	return ExecutionResult{label: labelBreak, loop: loop}
}

func continueOf(loop string) ExecutionResult {
	return ExecutionResult{label: labelContinue, loop: loop}
}

var breakWhen = ExecutionResult{label: labelBreakWhen}
var exception = ExecutionResult{label: labelException}

// isNext is the run-then-check combinator's test: a false result must be
// propagated unchanged.
func (r ExecutionResult) isNext() bool { return r.label == labelNext }

func (r ExecutionResult) isException() bool { return r.label == labelException }

// matchesLoop reports whether a Break/Continue signal targets the loop with
// the given label. An unlabeled signal matches the innermost loop.
func (r ExecutionResult) matchesLoop(loopLabel string) bool {
	return r.loop == "" || r.loop == loopLabel
}
