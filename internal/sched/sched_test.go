package sched

import (
	"context"
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)

func TestManual_RunsInDueOrder(t *testing.T) {
	m := NewManual(epoch)
	var got []string

	m.Schedule("b", 2*time.Second, func() { got = append(got, "b") })
	m.Schedule("a", time.Second, func() { got = append(got, "a") })
	m.Schedule("c", 5*time.Second, func() { got = append(got, "c") })

	m.Advance(3 * time.Second)

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected [a b], got %v", got)
	}
	if !m.Pending("c") {
		t.Error("expected c still pending")
	}
	if !m.Now().Equal(epoch.Add(3 * time.Second)) {
		t.Errorf("expected clock at +3s, got %v", m.Now().Sub(epoch))
	}
}

func TestManual_ScheduleReplacesPendingTask(t *testing.T) {
	m := NewManual(epoch)
	fired := ""

	m.Schedule("layer", time.Second, func() { fired = "first" })
	m.Schedule("layer", 2*time.Second, func() { fired = "second" })

	m.Advance(time.Second)
	if fired != "" {
		t.Fatalf("replaced task fired: %q", fired)
	}
	m.Advance(time.Second)
	if fired != "second" {
		t.Errorf("expected second, got %q", fired)
	}
}

func TestManual_CancelDropsTask(t *testing.T) {
	m := NewManual(epoch)
	fired := false
	m.Schedule("x", time.Second, func() { fired = true })

	if !m.Cancel("x") {
		t.Error("expected cancel to report a pending task")
	}
	if m.Cancel("x") {
		t.Error("expected second cancel to report nothing pending")
	}
	m.Advance(time.Minute)
	if fired {
		t.Error("cancelled task fired")
	}
}

func TestManual_SelfReschedulingTask(t *testing.T) {
	m := NewManual(epoch)
	count := 0
	var tick func()
	tick = func() {
		count++
		m.Schedule("tick", time.Second, tick)
	}
	m.Schedule("tick", time.Second, tick)

	m.Advance(5 * time.Second)

	if count != 5 {
		t.Errorf("expected 5 ticks, got %d", count)
	}
}

func TestLoop_CallRunsOnLoop(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	ran := false
	if err := l.Call(ctx, func() { ran = true }); err != nil {
		t.Fatalf("call: %v", err)
	}
	if !ran {
		t.Error("expected fn to run")
	}
}

func TestLoop_CancelledTimerDoesNotFire(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	fired := make(chan string, 2)
	if err := l.Call(ctx, func() {
		l.Schedule("k", 20*time.Millisecond, func() { fired <- "stale" })
		l.Schedule("k", 40*time.Millisecond, func() { fired <- "fresh" })
	}); err != nil {
		t.Fatalf("call: %v", err)
	}

	select {
	case got := <-fired:
		if got != "fresh" {
			t.Fatalf("expected fresh, got %s", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for timer")
	}

	select {
	case got := <-fired:
		t.Fatalf("unexpected extra fire: %s", got)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestLoop_CallAfterStop(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	if err := l.Call(context.Background(), func() {}); err != ErrStopped {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}
