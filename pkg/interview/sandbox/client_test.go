package sandbox

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newPistonStub(t *testing.T, output, stderr string, hits *int, lastReq *executeRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		assert.Equal(t, "/execute", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		if lastReq != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(lastReq))
		}
		resp := executeResponse{}
		resp.Run.Output = output
		resp.Run.Stderr = stderr
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestExtractCodeBlocks(t *testing.T) {
	text := "First:\n```python\nprint(1)\n```\nThen:\n```js\nconsole.log(2)\n```\nAnd a bare fence:\n```\nignored\n```"

	blocks := ExtractCodeBlocks(text)
	if assert.Len(t, blocks, 2) {
		assert.Equal(t, "python", blocks[0].Language)
		assert.Equal(t, "print(1)\n", blocks[0].Code)
		assert.Equal(t, "js", blocks[1].Language)
	}

	assert.Nil(t, ExtractCodeBlocks("no code here"))
}

func TestExecute_LinterBlocksBeforeSandbox(t *testing.T) {
	hits := 0
	srv := newPistonStub(t, "should never run", "", &hits, nil)
	defer srv.Close()

	cli := NewClient(srv.URL, NewHarnessRegistry(), discardLogger())
	res := cli.Execute(context.Background(), "python", "import os\nprint(os.getcwd())", false, "")

	assert.True(t, res.Blocked)
	assert.True(t, strings.HasPrefix(res.Output, "[LINTER BLOCK]:"), res.Output)
	assert.Contains(t, res.Output, "Security Violation")
	assert.Equal(t, 0, hits, "blocked code must never reach the sandbox")
}

func TestExecute_NormalizesOutput(t *testing.T) {
	hits := 0
	srv := newPistonStub(t, "42\n", "", &hits, nil)
	defer srv.Close()

	cli := NewClient(srv.URL, NewHarnessRegistry(), discardLogger())
	res := cli.Execute(context.Background(), "python", "print(42)", false, "")

	assert.False(t, res.Blocked)
	assert.Equal(t, "42", res.Output)
	assert.Equal(t, 1, hits)
}

func TestExecute_StderrIsLabeled(t *testing.T) {
	hits := 0
	srv := newPistonStub(t, "partial", "boom", &hits, nil)
	defer srv.Close()

	cli := NewClient(srv.URL, NewHarnessRegistry(), discardLogger())
	res := cli.Execute(context.Background(), "python", "print('x')", false, "")

	assert.Contains(t, res.Output, "partial")
	assert.Contains(t, res.Output, "[STDERR]\nboom")
}

func TestExecute_EmptyOutput(t *testing.T) {
	hits := 0
	srv := newPistonStub(t, "", "", &hits, nil)
	defer srv.Close()

	cli := NewClient(srv.URL, NewHarnessRegistry(), discardLogger())
	res := cli.Execute(context.Background(), "python", "x = 1", false, "")

	assert.Equal(t, "No output from Sandbox.", res.Output)
}

func TestExecute_HarnessInjection(t *testing.T) {
	hits := 0
	var captured executeRequest
	srv := newPistonStub(t, "Test Run: Input(0) -> 0", "", &hits, &captured)
	defer srv.Close()

	cli := NewClient(srv.URL, NewHarnessRegistry(), discardLogger())
	cli.Execute(context.Background(), "python", "def solution(n):\n    return n", true, "Algorithms")

	if assert.Len(t, captured.Files, 1) {
		assert.Contains(t, captured.Files[0].Content, "def solution(n):")
		assert.Contains(t, captured.Files[0].Content, "ADVERSARIAL TEST SUITE")
		assert.Contains(t, captured.Files[0].Content, "solution(-1)")
	}
}

func TestExecute_NoHarnessWithoutRunTests(t *testing.T) {
	hits := 0
	var captured executeRequest
	srv := newPistonStub(t, "ok", "", &hits, &captured)
	defer srv.Close()

	cli := NewClient(srv.URL, NewHarnessRegistry(), discardLogger())
	cli.Execute(context.Background(), "python", "def solution(n):\n    return n", false, "")

	if assert.Len(t, captured.Files, 1) {
		assert.NotContains(t, captured.Files[0].Content, "ADVERSARIAL")
	}
}

func TestExecute_LanguageAliasResolved(t *testing.T) {
	hits := 0
	var captured executeRequest
	srv := newPistonStub(t, "ok", "", &hits, &captured)
	defer srv.Close()

	cli := NewClient(srv.URL, NewHarnessRegistry(), discardLogger())
	cli.Execute(context.Background(), "js", "console.log(1)", false, "")

	assert.Equal(t, "javascript", captured.Language)
	assert.Equal(t, "latest", captured.Version)
}

func TestExecute_TransportFailureIsReportedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force connection refused

	cli := NewClient(srv.URL, NewHarnessRegistry(), discardLogger())
	res := cli.Execute(context.Background(), "python", "print(1)", false, "")

	assert.False(t, res.Blocked, "transport failures are not linter blocks")
	assert.True(t, strings.HasPrefix(res.Output, "execution failed:"), res.Output)
}

func TestExecute_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cli := NewClient(srv.URL, NewHarnessRegistry(), discardLogger())
	res := cli.Execute(context.Background(), "python", "print(1)", false, "")

	assert.Contains(t, res.Output, "execution failed: sandbox returned status 429")
}

func TestHarnessRegistry_TopicOverride(t *testing.T) {
	reg := NewHarnessRegistry()
	reg.Register("python", "SQL Basics", "# sql probe")

	assert.Equal(t, "# sql probe", reg.Lookup("python", "SQL Basics"))
	assert.Equal(t, "# sql probe", reg.Lookup("Python", "sql basics"), "lookups are case-insensitive")
	assert.Contains(t, reg.Lookup("python", "Graphs"), "solution(0)", "unknown topic falls back to the language default")
	assert.Empty(t, reg.Lookup("rust", "Graphs"))
}
