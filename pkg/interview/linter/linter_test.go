package linter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLintSecurity_BannedImports(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		code string
		want string
	}{
		{
			name: "plain import",
			code: "import os\nprint('hi')",
			want: "Security Violation: 'os' is banned in this interview.",
		},
		{
			name: "dotted import resolves to top-level module",
			code: "import os.path\nprint(os.path.sep)",
			want: "Security Violation: 'os.path' is banned in this interview.",
		},
		{
			name: "aliased import",
			code: "import subprocess as sp\nsp.run(['ls'])",
			want: "Security Violation: 'subprocess' is banned in this interview.",
		},
		{
			name: "from-import",
			code: "from os.path import join\nprint(join('a', 'b'))",
			want: "Security Violation: Module 'os.path' is banned.",
		},
		{
			name: "from-import top level",
			code: "from shutil import rmtree",
			want: "Security Violation: Module 'shutil' is banned.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := LintSecurity(ctx, tc.code, "python")
			assert.False(t, res.Valid)
			assert.Equal(t, tc.want, res.Error)
		})
	}
}

func TestLintSecurity_SilentExceptionHandler(t *testing.T) {
	code := `
def solution(n):
    try:
        return 10 / n
    except ZeroDivisionError:
        pass
`
	res := LintSecurity(context.Background(), code, "python")
	assert.False(t, res.Valid)
	assert.Equal(t, "Quality Check Failed: Do not use 'pass' in exception handlers. Handle the error.", res.Error)
}

func TestLintSecurity_HandledExceptionPasses(t *testing.T) {
	code := `
def solution(n):
    try:
        return 10 / n
    except ZeroDivisionError:
        return 0
`
	res := LintSecurity(context.Background(), code, "python")
	assert.True(t, res.Valid)
	assert.Empty(t, res.Error)
}

func TestLintSecurity_SyntaxErrorFailsClosed(t *testing.T) {
	res := LintSecurity(context.Background(), "def solution(:\n    return", "python")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error, "Syntax Error")
}

func TestLintSecurity_CleanCodePasses(t *testing.T) {
	code := `
import math

def solution(n):
    return math.sqrt(abs(n))

print(solution(16))
`
	res := LintSecurity(context.Background(), code, "python")
	assert.True(t, res.Valid)
}

func TestLintSecurity_NonPythonPassesThrough(t *testing.T) {
	// Only Python gets AST checks; other languages go straight to the sandbox
	code := "const os = require('os');\nconsole.log(os.platform());"
	res := LintSecurity(context.Background(), code, "javascript")
	assert.True(t, res.Valid)
}

func TestLintSecurity_PyAliasIsChecked(t *testing.T) {
	res := LintSecurity(context.Background(), "import sys", "py")
	assert.False(t, res.Valid)
}

func TestLintSecurity_Deterministic(t *testing.T) {
	code := "import os"
	first := LintSecurity(context.Background(), code, "python")
	second := LintSecurity(context.Background(), code, "python")
	assert.Equal(t, first, second)
}
