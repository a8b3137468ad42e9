package sandbox

import (
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
)

// defaultPythonHarness probes the candidate's solution with edge cases that
// were not part of the visible task. It assumes the interview convention that
// the entry point is a function named `solution`.
const defaultPythonHarness = `
# --- ADVERSARIAL TEST SUITE (HIDDEN) ---
try:
    print(f"Test Run: Input(0) -> {solution(0)}")
    print(f"Test Run: Input(-1) -> {solution(-1)}")
except NameError:
    print("Error: You must define a function named 'solution'.")
except Exception as e:
    print(f"Runtime Error: {e}")
`

// HarnessRegistry holds hidden test harnesses keyed by language and topic.
// Topic-specific harnesses win over the language default. Entries never
// expire; the cache gives us cheap concurrent-safe lookups.
type HarnessRegistry struct {
	store *cache.Cache
}

// NewHarnessRegistry creates a registry pre-seeded with the Python default.
func NewHarnessRegistry() *HarnessRegistry {
	r := &HarnessRegistry{store: cache.New(cache.NoExpiration, 0)}
	r.Register("python", "", defaultPythonHarness)
	return r
}

// Register installs a harness for a language, optionally scoped to a topic.
func (r *HarnessRegistry) Register(language, topic, harness string) {
	r.store.Set(harnessKey(language, topic), harness, cache.NoExpiration)
}

// Lookup returns the harness for language/topic, falling back to the language
// default. Empty string means no harness exists and nothing is injected.
func (r *HarnessRegistry) Lookup(language, topic string) string {
	if v, found := r.store.Get(harnessKey(language, topic)); found {
		return v.(string)
	}
	if v, found := r.store.Get(harnessKey(language, "")); found {
		return v.(string)
	}
	return ""
}

func harnessKey(language, topic string) string {
	return fmt.Sprintf("%s|%s", strings.ToLower(language), strings.ToLower(topic))
}
