package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"ai-interview-be/pkg/interview/linter"
)

// CodeBlock is one fenced block extracted from a candidate message.
type CodeBlock struct {
	Language string
	Code     string
}

var fencedBlockPattern = regexp.MustCompile("(?s)```(\\w+)\\s*\\n(.*?)```")

// ExtractCodeBlocks pulls every fenced code block out of a message, in
// encounter order. Blocks without a language tag are ignored.
func ExtractCodeBlocks(text string) []CodeBlock {
	matches := fencedBlockPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	blocks := make([]CodeBlock, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, CodeBlock{Language: m[1], Code: m[2]})
	}
	return blocks
}

// Aliases the execution backend does not know about.
var languageAliases = map[string]string{
	"py": "python",
	"js": "javascript",
	"ts": "typescript",
}

// Execution is the outcome of one submission. Blocked means the linter
// rejected the code and Output carries the blocking message instead of a
// sandbox transcript; blocked code never produces execution output.
type Execution struct {
	Output  string
	Blocked bool
}

// Client submits candidate code to a Piston-compatible execution service.
//
// Every submission passes through the security linter first; there is no
// other path into the sandbox. Execute never returns an error: transport and
// runtime failures come back as reported text so a broken sandbox cannot
// break an interview turn.
type Client struct {
	baseURL    string
	httpClient *http.Client
	harnesses  *HarnessRegistry
	logger     *log.Logger
}

// NewClient creates a sandbox client for the given Piston base URL.
func NewClient(baseURL string, harnesses *HarnessRegistry, logger *log.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		harnesses: harnesses,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type executeRequest struct {
	Language string        `json:"language"`
	Version  string        `json:"version"`
	Files    []executeFile `json:"files"`
}

type executeFile struct {
	Content string `json:"content"`
}

type executeResponse struct {
	Run struct {
		Output string `json:"output"`
		Stderr string `json:"stderr"`
	} `json:"run"`
	Message string `json:"message"`
}

// Execute lints, optionally augments with a hidden harness, runs the code
// remotely and returns the normalized transcript.
func (c *Client) Execute(ctx context.Context, language, code string, runTests bool, topic string) Execution {
	// 1. Security gate. Blocked code never leaves the process.
	if res := linter.LintSecurity(ctx, code, language); !res.Valid {
		c.logger.Printf("[SANDBOX] Linter blocked %s submission: %s", language, res.Error)
		return Execution{Output: fmt.Sprintf("[LINTER BLOCK]: %s", res.Error), Blocked: true}
	}

	// 2. Adversarial harness injection. The harness rides along invisibly;
	// only its execution result is ever echoed back.
	finalCode := code
	if runTests {
		if harness := c.harnesses.Lookup(language, topic); harness != "" {
			finalCode += "\n" + harness
		}
	}

	// 3. Remote execution.
	target := strings.ToLower(language)
	if alias, ok := languageAliases[target]; ok {
		target = alias
	}

	payload := executeRequest{
		Language: target,
		Version:  "latest",
		Files:    []executeFile{{Content: finalCode}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Execution{Output: fmt.Sprintf("execution failed: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewBuffer(body))
	if err != nil {
		return Execution{Output: fmt.Sprintf("execution failed: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("[SANDBOX] Execution request failed: %v", err)
		return Execution{Output: fmt.Sprintf("execution failed: %v", err)}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return Execution{Output: fmt.Sprintf("execution failed: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return Execution{Output: fmt.Sprintf("execution failed: sandbox returned status %d", resp.StatusCode)}
	}

	// 4. Normalize.
	var result executeResponse
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return Execution{Output: fmt.Sprintf("execution failed: %v", err)}
	}

	out := result.Run.Output
	if result.Run.Stderr != "" {
		out += "\n[STDERR]\n" + result.Run.Stderr
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return Execution{Output: "No output from Sandbox."}
	}
	return Execution{Output: out}
}
