// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/trustmanager"
)

// Question is printed after the failure description.
const Question = "Trust this certificate? [o]nce, [a]lways, [d]eny: "

// Retry is printed when a line typed for an abandoned prompt is dropped.
const Retry = "Previous answer discarded, answer again: "

// read is one outstanding line read.
type read struct {
	done chan struct{}
	line string
	err  error
	// abandoned reads belong to a prompt whose caller gave up; their answer
	// must not be applied to a later certificate.
	abandoned bool
}

// Terminal is a [trustmanager.DecisionCallback] reading answers line by line.
//
// Answers "o"/"once" trust once, "a"/"always" trust always; anything else,
// end of input or a done context denies. A single reader goroutine is kept
// per outstanding line, so a prompt abandoned on cancellation does not leave
// two readers competing for input.
//
// Thread Safety: Safe for concurrent use, but prompts interleave unless the
// terminal is wrapped with [trustmanager.Serialize].
type Terminal struct {
	mu      sync.Mutex
	in      *bufio.Reader
	out     io.Writer
	pending *read
}

// NewTerminal creates a terminal prompt reading answers from in and writing
// questions to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Decide prints the escalation and waits for an answer.
func (t *Terminal) Decide(ctx context.Context, esc *trustmanager.Escalation) (trustmanager.Decision, error) {
	if err := t.render(esc); err != nil {
		return trustmanager.Deny, err
	}

	for {
		r := t.request()
		select {
		case <-ctx.Done():
			t.abandon(r)
			fmt.Fprintln(t.out)
			return trustmanager.Deny, ctx.Err()
		case <-r.done:
		}

		if t.finish(r) {
			// Answer typed for an earlier, abandoned prompt.
			if r.err == nil {
				if _, err := io.WriteString(t.out, Retry); err != nil {
					return trustmanager.Deny, err
				}
			}
			continue
		}
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return trustmanager.Deny, fmt.Errorf("prompt: failed to read answer: %w", r.err)
		}
		return ParseAnswer(r.line), nil
	}
}

func (t *Terminal) render(esc *trustmanager.Escalation) error {
	var b strings.Builder
	if esc.Detail != nil {
		b.WriteString(esc.Detail.Message)
	} else {
		fmt.Fprintf(&b, "%v\n\n", esc.Failure)
	}
	anchor := esc.Anchor()
	fmt.Fprintf(&b, "Issuer:\t%s\nSHA-256:\t%s\n\n%s", anchor.Subject, esc.Alias, Question)

	_, err := io.WriteString(t.out, b.String())
	return err
}

// request returns the outstanding read, starting one if there is none.
func (t *Terminal) request() *read {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending == nil {
		r := &read{done: make(chan struct{})}
		t.pending = r
		go func() {
			r.line, r.err = t.in.ReadString('\n')
			close(r.done)
		}()
	}
	return t.pending
}

func (t *Terminal) abandon(r *read) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r.abandoned = true
}

// finish retires a completed read and reports whether it was abandoned.
func (t *Terminal) finish(r *read) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == r {
		t.pending = nil
	}
	return r.abandoned
}

// ParseAnswer maps a typed answer to a decision. Unknown answers deny.
func ParseAnswer(answer string) trustmanager.Decision {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "o", "once":
		return trustmanager.TrustOnce
	case "a", "always":
		return trustmanager.TrustAlways
	default:
		return trustmanager.Deny
	}
}
