package generation

import (
	"context"
	"strings"
	"sync"
)

// MockProvider returns canned output without calling any service. It is used for
// local runs (provider "mock") and in tests, and records every instruction it receives.
type MockProvider struct {
	// Response is returned verbatim when set; otherwise a small fenced HTML guide is produced.
	Response string
	// Err, when set, is returned instead of a response.
	Err error

	mu    sync.Mutex
	calls []string
}

func (m *MockProvider) Complete(_ context.Context, instruction string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, instruction)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if m.Response != "" {
		return m.Response, nil
	}

	var sb strings.Builder
	sb.WriteString("```html\n<!DOCTYPE html>\n<html>\n<head><style>body { font-family: 'Merriweather', serif; }</style></head>\n<body>\n")
	sb.WriteString("<h2>PREFACE</h2>\n<p>Sample guide generated without a provider.</p>\n")
	sb.WriteString("<pre>")
	sb.WriteString(firstLine(instruction))
	sb.WriteString("</pre>\n</body>\n</html>\n```\n")
	return sb.String(), nil
}

// Calls returns the instructions received so far.
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
