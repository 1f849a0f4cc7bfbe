package scheduler

import (
	"context"
	"testing"
)

func TestRegister(t *testing.T) {
	s := New(context.Background(), func() error { return nil })
	if err := s.Register("0 30 16 * * 1-5"); err != nil {
		t.Fatalf("valid six-field cron spec rejected: %v", err)
	}
	if err := s.Register("not a cron spec"); err == nil {
		t.Fatal("malformed cron spec must error")
	}
}

func TestRunRefresh_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	s := New(ctx, func() error { called = true; return nil })
	s.runRefresh()
	if called {
		t.Fatal("a cancelled context must suppress the refresh")
	}
}

func TestRunRefresh_InvokesCallback(t *testing.T) {
	called := false
	s := New(context.Background(), func() error { called = true; return nil })
	s.runRefresh()
	if !called {
		t.Fatal("refresh callback not invoked")
	}
}
