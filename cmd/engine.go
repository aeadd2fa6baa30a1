package cmd

import (
	"fmt"

	"github.com/iksnae/chatsession/internal"
)

// newGenerator builds the response generator for commands that talk to the assistant
var newGenerator = func() internal.Generator {
	return internal.NewTemplateGenerator(nil)
}

// openStore opens the configured slot and loads the session collection.
// The returned cleanup closes the backing database.
func openStore() (*internal.SessionStore, func(), error) {
	if settings == nil {
		if err := loadSettings(); err != nil {
			return nil, nil, err
		}
	}

	if ephemeral {
		internal.LogDebug("Using in-memory session storage")
		return internal.OpenSessionStore(internal.NewMemorySlot(0), settings.StorageKey), func() {}, nil
	}

	slot, err := internal.OpenSQLiteSlot(settings.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session database: %w", err)
	}
	cleanup := func() {
		if err := slot.Close(); err != nil {
			internal.LogWarn("Failed to close database: %v", err)
		}
	}

	store := internal.NewSessionStore(slot, settings.StorageKey)
	if err := store.Load(); err != nil {
		internal.LogWarn("Starting with an empty session list: %v", err)
	}
	return store, cleanup, nil
}

// openEngine opens the store and wraps it in an engine using the configured turn policy
func openEngine() (*internal.Engine, func(), error) {
	store, cleanup, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	policy := settings.TurnPolicy()
	if noLatency {
		policy = policy.WithoutLatency()
	}

	engine := internal.NewEngine(store, newGenerator(), policy)
	return engine, func() {
		engine.Close()
		cleanup()
	}, nil
}

// warnIfNotSaved reports a non-fatal persistence failure
func warnIfNotSaved(err error) error {
	if err == nil {
		return nil
	}
	if internal.IsWriteWarning(err) {
		internal.PrintWarning(fmt.Sprintf("Changes were not saved: %v", err))
		return nil
	}
	return err
}

// findSession returns the session with id or a not-found error naming the list command
func findSession(store *internal.SessionStore, id string) (*internal.ChatSession, error) {
	session, ok := store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s (use 'chatsession list' to see available sessions)", internal.ErrSessionNotFound, id)
	}
	return session, nil
}
