// Package confirm holds destructive actions until the user confirms them.
package confirm

import (
	"context"
	"errors"
	"sync"
)

// ErrNothingPending is returned by Confirm when no action is waiting.
var ErrNothingPending = errors.New("no action awaiting confirmation")

// Action is a deferred destructive operation.
type Action func(ctx context.Context) error

// State is the externally visible gate state.
type State struct {
	IsOpen  bool   `json:"isOpen"`
	Message string `json:"message"`
}

// Gate holds at most one pending action. A new request replaces any pending
// one. The zero value is an idle gate.
type Gate struct {
	mu      sync.Mutex
	message string
	action  Action
}

// Request stores action behind message, replacing whatever was pending.
func (g *Gate) Request(message string, action Action) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.message = message
	g.action = action
}

// Confirm runs the pending action and closes the gate. The gate is closed
// before the action runs, so the action may itself request a new
// confirmation.
func (g *Gate) Confirm(ctx context.Context) error {
	g.mu.Lock()
	action := g.action
	g.message, g.action = "", nil
	g.mu.Unlock()
	if action == nil {
		return ErrNothingPending
	}
	return action(ctx)
}

// Cancel discards the pending action without running it.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.message, g.action = "", nil
}

// Dismiss is Cancel for callers closing the prompt without an answer.
func (g *Gate) Dismiss() { g.Cancel() }

// State reports whether an action is pending and its message.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return State{IsOpen: g.action != nil, Message: g.message}
}
