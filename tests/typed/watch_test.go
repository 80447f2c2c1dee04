package typed_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tmorell/inkwell"
	"github.com/tmorell/inkwell/pkg/core"
	"github.com/tmorell/inkwell/pkg/typed"
)

type articleMeta struct {
	Title  string `json:"title"`
	Layout string `json:"layout"`
}

// TestTypedWatch verifies that the typed repository exposes the same event
// stream as the raw service: a typed Save surfaces on the channel.
func TestTypedWatch(t *testing.T) {
	tmpDir := t.TempDir()

	repo, err := inkwell.OpenTyped[articleMeta](tmpDir, inkwell.WithVersioning(false))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := repo.Watch(ctx, "")
	require.NoError(t, err)
	time.Sleep(200 * time.Millisecond)

	doc := &typed.DocumentModel[articleMeta]{
		ID:      "streams-api-intro",
		Content: "The Streams API turns collection pipelines into declarative code.",
		Data:    articleMeta{Title: "Intro to Streams", Layout: "PostLayout"},
	}
	go func() {
		if err := repo.Save(context.Background(), doc); err != nil {
			t.Errorf("save failed: %v", err)
		}
	}()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case e := <-events:
			if e.ID != "streams-api-intro" {
				t.Logf("skipping event %s %s", e.Type, e.ID)
				continue
			}
			if e.Type != core.EventCreate && e.Type != core.EventModify {
				t.Fatalf("expected create/modify, got %s", e.Type)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for typed save event")
		}
	}
}
