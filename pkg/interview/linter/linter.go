package linter

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Result is the linter verdict for a code submission.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Modules whose import is blocked during an interview: process control, shell
// access and dynamic evaluation. Matched against the top-level module name.
var deniedImports = map[string]struct{}{
	"os":         {},
	"subprocess": {},
	"sys":        {},
	"shutil":     {},
	"eval":       {},
	"exec":       {},
}

// LintSecurity statically checks submitted code before it may reach the
// sandbox. Only Python has AST-level checking; other languages pass through
// unchecked. That asymmetry is intentional and relied upon by callers.
//
// The parse is fail-closed: code that does not produce a clean syntax tree is
// rejected outright.
func LintSecurity(ctx context.Context, code, language string) Result {
	switch strings.ToLower(language) {
	case "python", "py":
	default:
		return Result{Valid: true}
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	src := []byte(code)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return Result{Valid: false, Error: fmt.Sprintf("Syntax Error: %v", err)}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return Result{Valid: false, Error: "Syntax Error: code could not be parsed"}
	}

	return walk(root, src)
}

// walk visits the tree depth-first and returns on the first violation found.
func walk(root *sitter.Node, src []byte) Result {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch node.Type() {
		case "import_statement":
			// import os, import os.path, import subprocess as sp
			for i := 0; i < int(node.NamedChildCount()); i++ {
				child := node.NamedChild(i)
				name := importedName(child, src)
				if name == "" {
					continue
				}
				if _, banned := deniedImports[topLevel(name)]; banned {
					return Result{Valid: false, Error: fmt.Sprintf("Security Violation: '%s' is banned in this interview.", name)}
				}
			}

		case "import_from_statement":
			// from os.path import join
			if module := node.ChildByFieldName("module_name"); module != nil {
				name := module.Content(src)
				if _, banned := deniedImports[topLevel(name)]; banned {
					return Result{Valid: false, Error: fmt.Sprintf("Security Violation: Module '%s' is banned.", name)}
				}
			}

		case "except_clause":
			if isSilentHandler(node, src) {
				return Result{Valid: false, Error: "Quality Check Failed: Do not use 'pass' in exception handlers. Handle the error."}
			}
		}

		for i := 0; i < int(node.NamedChildCount()); i++ {
			stack = append(stack, node.NamedChild(i))
		}
	}
	return Result{Valid: true}
}

// importedName extracts the dotted module name from an import_statement child.
func importedName(node *sitter.Node, src []byte) string {
	switch node.Type() {
	case "dotted_name":
		return node.Content(src)
	case "aliased_import":
		if name := node.ChildByFieldName("name"); name != nil {
			return name.Content(src)
		}
	}
	return ""
}

// isSilentHandler reports whether an except clause swallows the error with a
// body made up of nothing but pass statements.
func isSilentHandler(clause *sitter.Node, src []byte) bool {
	var body *sitter.Node
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		if child := clause.NamedChild(i); child.Type() == "block" {
			body = child
			break
		}
	}
	if body == nil {
		return false
	}

	statements := 0
	for i := 0; i < int(body.NamedChildCount()); i++ {
		switch body.NamedChild(i).Type() {
		case "pass_statement":
			statements++
		case "comment":
			// comments do not count as handling
		default:
			return false
		}
	}
	return statements > 0
}

func topLevel(module string) string {
	if idx := strings.IndexByte(module, '.'); idx >= 0 {
		return module[:idx]
	}
	return module
}
