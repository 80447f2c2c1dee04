package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/tmorell/inkwell/pkg/core"
)

func TestSourceBridgesEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 2)
	src := NewSource(in)

	if err := src.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	in <- core.Event{Type: core.EventCreate, ID: "java-generics"}
	in <- core.Event{Type: core.EventDelete, ID: "old-draft"}

	want := []string{"CREATE java-generics", "DELETE old-draft"}
	for i, expected := range want {
		select {
		case e := <-src.Events():
			if e.String() != expected {
				t.Errorf("event %d: got %q, want %q", i, e.String(), expected)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	// Closing the input ends the bridge and closes the output.
	close(in)
	select {
	case _, ok := <-src.Events():
		if ok {
			t.Error("expected closed output channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("output channel never closed")
	}
}
