package expression

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// File is the environment a filter expression evaluates against.
type File struct {
	Name  string
	Dir   string
	Path  string
	Size  int64
	UID   uint32
	GID   uint32
	Perms uint32
}

type CompiledExpression struct {
	Text    string
	Program *vm.Program
}

// Compile compiles filter expressions against the File environment.
// Every expression must evaluate to a boolean.
func Compile(texts []string) ([]CompiledExpression, error) {
	compiled := make([]CompiledExpression, 0, len(texts))
	for _, t := range texts {
		program, err := expr.Compile(t, expr.Env(File{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile expression %q: %w", t, err)
		}
		compiled = append(compiled, CompiledExpression{Text: t, Program: program})
	}
	return compiled, nil
}

// CheckFileSingleMatch reports whether any expression matches the file,
// returning the text of the first match.
func CheckFileSingleMatch(f File, expressions []CompiledExpression) (bool, string, error) {
	for _, expression := range expressions {
		result, err := expr.Run(expression.Program, f)
		if err != nil {
			return false, "", fmt.Errorf("check expression: %w", err)
		}

		expResult, ok := result.(bool)
		if !ok {
			return false, "", fmt.Errorf("expression %q did not evaluate to a boolean", expression.Text)
		}

		if expResult {
			return true, expression.Text, nil
		}
	}

	return false, "", nil
}
