package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tailored-agentic-units/provisionality/app"
)

// message is one line of input.
type message struct {
	Scope string `json:"scope"`
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// dispatchMessages reads newline-delimited messages from r and dispatches
// each on its scope's topic. Blank lines are skipped. It returns the number
// of messages dispatched.
func dispatchMessages(ctx context.Context, a *app.App, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for line := 1; scanner.Scan(); line++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var msg message
		if err := json.Unmarshal(raw, &msg); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		if msg.Scope == "" {
			msg.Scope = app.ScopeApp
		}
		if msg.Topic == "" {
			return n, fmt.Errorf("line %d: topic is required", line)
		}

		c, err := a.Scope(msg.Scope)
		if err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}

		c.Topic(msg.Topic).Dispatch(ctx, msg.Data)
		n++
	}
	return n, scanner.Err()
}

// snapshot collects the State of every container by scope name.
func snapshot(a *app.App) map[string]map[string]any {
	return map[string]map[string]any{
		app.ScopeApp:     a.State().Snapshot(),
		app.ScopeSession: a.Session().State().Snapshot(),
		app.ScopeClient:  a.Client().State().Snapshot(),
	}
}
