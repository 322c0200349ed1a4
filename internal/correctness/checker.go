// Package correctness obtains optional correctness verdicts for a
// submission from an external reviewer. The engine works without one.
package correctness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codecoach/internal/recommend"
)

// Request is the submission under review.
type Request struct {
	Code             string
	Language         string
	ExpectedBehavior string
}

// Checker produces a correctness verdict.
type Checker interface {
	Check(ctx context.Context, code, language, expectedBehavior string) (*recommend.Verdict, error)
}

// Outcome is the result of Resolve. Verdict is nil unless Available.
type Outcome struct {
	Verdict   *recommend.Verdict
	Available bool
	Reason    string
}

// ErrMalformedVerdict is returned when a response carries no judgment.
var ErrMalformedVerdict = errors.New("malformed verdict")

// Resolve asks checker for a verdict within timeout. A nil checker, an
// error, an elapsed timeout or a malformed verdict all yield an
// unavailable outcome; Resolve itself never fails.
func Resolve(ctx context.Context, checker Checker, req Request, timeout time.Duration) Outcome {
	if checker == nil {
		return Outcome{Reason: "no correctness checker configured"}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   *recommend.Verdict
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := checker.Check(ctx, req.Code, req.Language, req.ExpectedBehavior)
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		return Outcome{Reason: fmt.Sprintf("correctness check timed out: %v", ctx.Err())}
	case r := <-done:
		if r.err != nil {
			return Outcome{Reason: fmt.Sprintf("correctness check failed: %v", r.err)}
		}
		if !r.v.Valid() {
			return Outcome{Reason: ErrMalformedVerdict.Error()}
		}
		return Outcome{Verdict: r.v, Available: true}
	}
}

// DefaultTimeout bounds a single correctness check.
const DefaultTimeout = 20 * time.Second

// Static returns a fixed verdict or error. It honours ctx while waiting
// out Delay.
type Static struct {
	Verdict *recommend.Verdict
	Err     error
	Delay   time.Duration
}

// Check implements Checker.
func (s Static) Check(ctx context.Context, _, _, _ string) (*recommend.Verdict, error) {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Verdict, nil
}
