package correctness

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"codecoach/internal/recommend"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

var logicVerdict = &recommend.Verdict{LogicErrors: []string{"returns the first pair twice"}}

func TestResolve(t *testing.T) {
	req := Request{Code: "def f(): pass", Language: "python"}
	tests := []struct {
		name      string
		checker   Checker
		timeout   time.Duration
		available bool
		reason    string
	}{
		{"nil checker", nil, time.Second, false, "no correctness checker"},
		{"verdict", Static{Verdict: logicVerdict}, time.Second, true, ""},
		{"error", Static{Err: errors.New("boom")}, time.Second, false, "failed: boom"},
		{"malformed", Static{Verdict: &recommend.Verdict{}}, time.Second, false, "malformed"},
		{"nil verdict", Static{}, time.Second, false, "malformed"},
		{"timeout", Static{Verdict: logicVerdict, Delay: time.Minute}, 20 * time.Millisecond, false, "timed out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(context.Background(), tt.checker, req, tt.timeout)
			if got.Available != tt.available {
				t.Fatalf("Available = %v, want %v (reason %q)", got.Available, tt.available, got.Reason)
			}
			if tt.available && got.Verdict == nil {
				t.Error("Verdict is nil")
			}
			if !tt.available && got.Verdict != nil {
				t.Errorf("Verdict = %+v, want nil", got.Verdict)
			}
			if !strings.Contains(got.Reason, tt.reason) {
				t.Errorf("Reason = %q, want substring %q", got.Reason, tt.reason)
			}
		})
	}
}

func TestResolveParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := Resolve(ctx, Static{Verdict: logicVerdict, Delay: time.Second}, Request{}, time.Minute)
	if got.Available {
		t.Errorf("Available = true for cancelled context")
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		logic   int
	}{
		{"plain", `{"is_correct": false, "logic_errors": ["off by one"]}`, false, 1},
		{"fenced", "```json\n{\"is_correct\": true}\n```", false, 0},
		{"bare fence", "```\n{\"logic_errors\": [\"a\", \"b\"]}\n```", false, 2},
		{"not json", "looks fine to me", true, 0},
		{"empty object", "{}", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVerdict(tt.content)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedVerdict) {
					t.Errorf("err = %v, want ErrMalformedVerdict", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVerdict: %v", err)
			}
			if len(v.LogicErrors) != tt.logic {
				t.Errorf("len(LogicErrors) = %d, want %d", len(v.LogicErrors), tt.logic)
			}
		})
	}
}

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			fmt.Fprint(w, `{"error": {"message": "unavailable", "type": "server_error"}}`)
			return
		}
		body := strings.ReplaceAll(content, `"`, `\"`)
		body = strings.ReplaceAll(body, "\n", `\n`)
		fmt.Fprintf(w, `{"id": "1", "object": "chat.completion", "model": "test", "choices": [{"index": 0, "message": {"role": "assistant", "content": "%s"}, "finish_reason": "stop"}]}`, body)
	}))
}

func TestOpenAICheckerCheck(t *testing.T) {
	srv := chatServer(t, "```json\n{\"is_correct\": false, \"runtime_errors\": [\"index out of range\"]}\n```", http.StatusOK)
	defer srv.Close()

	c, err := NewOpenAIChecker(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1", RatePerMinute: 600})
	if err != nil {
		t.Fatalf("NewOpenAIChecker: %v", err)
	}
	out := Resolve(context.Background(), c, Request{Code: "x = a[10]", Language: "python"}, 5*time.Second)
	if !out.Available {
		t.Fatalf("Available = false: %s", out.Reason)
	}
	if got := out.Verdict.RuntimeErrors; len(got) != 1 || got[0] != "index out of range" {
		t.Errorf("RuntimeErrors = %v", got)
	}
}

func TestOpenAICheckerBreakerOpens(t *testing.T) {
	srv := chatServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	c, err := NewOpenAIChecker(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1", RatePerMinute: 6000})
	if err != nil {
		t.Fatalf("NewOpenAIChecker: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := c.Check(context.Background(), "", "python", ""); err == nil {
			t.Fatalf("call %d succeeded against failing server", i)
		}
	}
	_, err = c.Check(context.Background(), "", "python", "")
	if !strings.Contains(err.Error(), "circuit breaker is open") {
		t.Errorf("err = %v, want open breaker", err)
	}
}

func TestNewOpenAICheckerRequiresKey(t *testing.T) {
	if _, err := NewOpenAIChecker(OpenAIConfig{}); err == nil {
		t.Error("expected error for missing api key")
	}
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt("print(1)", "python", "prints one")
	for _, want := range []string{"```python\nprint(1)\n```", "Expected behavior: prints one", `"logic_errors"`} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
