// Package guard inspects a suggested command before it runs. Findings are
// advisory: nothing here stops the user from executing a command.
package guard

import (
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Violation describes a problem found in a command.
type Violation struct {
	Rule    string
	Message string
	Fatal   bool
}

func parse(cmd string) (*syntax.File, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	return parser.Parse(strings.NewReader(cmd), "")
}

// CheckSyntax parses cmd as bash and reports a non-fatal violation when it
// does not parse.
func CheckSyntax(cmd string) *Violation {
	if strings.TrimSpace(cmd) == "" {
		return &Violation{Rule: "syntax", Message: "Empty command"}
	}

	if _, err := parse(cmd); err != nil {
		msg := err.Error()
		var perr syntax.ParseError
		if errors.As(err, &perr) {
			msg = fmt.Sprintf("line %d, column %d: %s", perr.Pos.Line(), perr.Pos.Col(), perr.Text)
		}
		return &Violation{Rule: "syntax", Message: "Command may not be valid bash: " + msg}
	}
	return nil
}

// Programs lists the command names invoked by cmd, in order of first
// appearance. Names built from expansions are skipped. It returns nil when cmd
// does not parse.
func Programs(cmd string) []string {
	prog, err := parse(cmd)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	syntax.Walk(prog, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		name := call.Args[0].Lit()
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		return true
	})
	return names
}
