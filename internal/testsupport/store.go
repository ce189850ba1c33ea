package testsupport

import (
	"context"
	"testing"

	"subsync/internal/config"
	"subsync/internal/segstore"
)

// MustOpenStore opens a segstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *segstore.Store {
	t.Helper()

	store, err := segstore.Open(cfg)
	if err != nil {
		t.Fatalf("segstore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// SeedInterview creates an interview row for tests.
func SeedInterview(t testing.TB, store *segstore.Store, id, sourceLanguage string) {
	t.Helper()

	err := store.UpsertInterview(context.Background(), &segstore.Interview{
		ID:             id,
		Title:          "Test Interview " + id,
		SourceLanguage: sourceLanguage,
	})
	if err != nil {
		t.Fatalf("UpsertInterview: %v", err)
	}
}
