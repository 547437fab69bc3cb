package confirm

import (
	"context"
	"errors"
	"testing"
)

func TestZeroGateIsIdle(t *testing.T) {
	var g Gate
	if st := g.State(); st.IsOpen || st.Message != "" {
		t.Fatalf("expected idle gate, got %+v", st)
	}
	if err := g.Confirm(context.Background()); !errors.Is(err, ErrNothingPending) {
		t.Fatalf("expected ErrNothingPending, got %v", err)
	}
}

func TestConfirmRunsActionOnce(t *testing.T) {
	var g Gate
	calls := 0
	g.Request("delete?", func(context.Context) error {
		calls++
		return nil
	})
	if st := g.State(); !st.IsOpen || st.Message != "delete?" {
		t.Fatalf("expected open gate, got %+v", st)
	}
	if err := g.Confirm(context.Background()); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
	if g.State().IsOpen {
		t.Fatalf("gate should close after confirm")
	}
	if err := g.Confirm(context.Background()); !errors.Is(err, ErrNothingPending) {
		t.Fatalf("second confirm should find nothing, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("action ran twice")
	}
}

func TestLastRequestWins(t *testing.T) {
	var g Gate
	var ran []string
	g.Request("first", func(context.Context) error { ran = append(ran, "first"); return nil })
	g.Request("second", func(context.Context) error { ran = append(ran, "second"); return nil })
	if g.State().Message != "second" {
		t.Fatalf("expected second message")
	}
	if err := g.Confirm(context.Background()); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(ran) != 1 || ran[0] != "second" {
		t.Fatalf("expected only second action, got %v", ran)
	}
}

func TestCancelAndDismissDiscard(t *testing.T) {
	var g Gate
	ran := false
	g.Request("x", func(context.Context) error { ran = true; return nil })
	g.Cancel()
	if g.State().IsOpen {
		t.Fatalf("cancel should close the gate")
	}
	g.Request("y", func(context.Context) error { ran = true; return nil })
	g.Dismiss()
	if err := g.Confirm(context.Background()); !errors.Is(err, ErrNothingPending) {
		t.Fatalf("expected nothing pending, got %v", err)
	}
	if ran {
		t.Fatalf("discarded action ran")
	}
}

func TestConfirmReturnsActionError(t *testing.T) {
	var g Gate
	boom := errors.New("boom")
	g.Request("x", func(context.Context) error { return boom })
	if err := g.Confirm(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected action error, got %v", err)
	}
	if g.State().IsOpen {
		t.Fatalf("gate should close even when the action fails")
	}
}

func TestActionMayRequestAgain(t *testing.T) {
	var g Gate
	g.Request("outer", func(context.Context) error {
		g.Request("inner", func(context.Context) error { return nil })
		return nil
	})
	if err := g.Confirm(context.Background()); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if st := g.State(); !st.IsOpen || st.Message != "inner" {
		t.Fatalf("expected inner request pending, got %+v", st)
	}
}
