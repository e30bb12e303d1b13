package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/funvibe/irfold/internal/config"
	"github.com/funvibe/irfold/internal/interpreter"
	"github.com/funvibe/irfold/internal/ir"
	"github.com/funvibe/irfold/internal/irdoc"
	"github.com/funvibe/irfold/internal/logger"
)

func main() {
	var (
		help        bool
		verbose     bool
		noColor     bool
		maxCommands int
		maxDepth    int
	)
	flag.BoolVar(&help, "h", false, "Show help")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&noColor, "n", false, "No color")
	flag.IntVar(&maxCommands, "max-commands", config.DefaultMaxCommands, "Command limit per evaluation")
	flag.IntVar(&maxDepth, "max-stack", config.DefaultMaxStackDepth, "Call-stack depth limit")
	flag.Parse()
	args := flag.Args()

	logger.Init(verbose, noColor)

	if help {
		fmt.Printf("Usage: %s [options] <file%s>...\n", os.Args[0], config.IRDocFileExt)
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}
	if len(args) == 0 {
		log.Fatal("No input file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	exitCode := 0
	for _, path := range args {
		if !evaluateFile(path, maxCommands, maxDepth) {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

// evaluateFile loads one IR document, evaluates its main expression in a
// fresh evaluator instance, and prints the result. Returns false when the
// evaluation surfaced an error node.
func evaluateFile(path string, maxCommands, maxDepth int) bool {
	run := uuid.NewString()[:8]
	log.Info("evaluating", "run", run, "file", path)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("cannot read document", "run", run, "error", err)
		return false
	}
	doc, err := irdoc.Load(data)
	if err != nil {
		log.Error("cannot load document", "run", run, "error", err)
		return false
	}

	interp := interpreter.New(doc.Builtins,
		interpreter.WithMaxCommands(maxCommands),
		interpreter.WithMaxStackDepth(maxDepth),
	)
	result := interp.Interpret(doc.Main)

	switch out := result.(type) {
	case *ir.Const:
		fmt.Printf("%s = %v\n", path, renderConst(out))
		return true
	case *ir.ErrorExpr:
		fmt.Printf("%s: error:%s\n", path, out.Description)
		return false
	default:
		log.Error("unexpected result node", "run", run, "node", fmt.Sprintf("%T", result))
		return false
	}
}

func renderConst(c *ir.Const) string {
	switch c.Kind {
	case ir.KindString:
		return fmt.Sprintf("%q", c.Value)
	case ir.KindNull:
		return "null"
	case ir.KindUnit:
		return "Unit"
	case ir.KindChar:
		return fmt.Sprintf("%q", string(c.Value.(rune)))
	default:
		return fmt.Sprintf("%v", c.Value)
	}
}
