package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreCorrupt marks a persisted blob that exists but cannot be decoded
	ErrStoreCorrupt = errors.New("persisted sessions are corrupt")

	// ErrStoreWriteFailed marks a persistence failure; the in-memory change still applied
	ErrStoreWriteFailed = errors.New("failed to persist sessions")

	// ErrSessionNotFound is returned when an operation needs a session that does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrTurnInFlight rejects a turn while another one is still thinking
	ErrTurnInFlight = errors.New("a response is already in progress")

	// ErrControllerClosed rejects operations on a retired controller
	ErrControllerClosed = errors.New("controller is closed")

	// ErrOffline rejects submissions while the controller is marked offline
	ErrOffline = errors.New("assistant is offline")

	// ErrEmptyInput rejects blank submissions
	ErrEmptyInput = errors.New("message is empty")

	// ErrNothingToRegenerate rejects regeneration on a conversation with fewer than two messages
	ErrNothingToRegenerate = errors.New("nothing to regenerate")
)

// StorageError represents errors accessing the backing database
type StorageError struct {
	Path string
	Op   string // "open", "read", "write"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors decoding the persisted blob
type ParseError struct {
	Source string // "kv"
	Key    string // storage key
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports parse errors as store corruption
func (e *ParseError) Is(target error) bool {
	return target == ErrStoreCorrupt
}

// StoreWriteError is a non-fatal warning: the in-memory mutation applied but the blob was not saved
type StoreWriteError struct {
	Key string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store write failed [%s]: %v", e.Key, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}

// Is reports write errors as ErrStoreWriteFailed
func (e *StoreWriteError) Is(target error) bool {
	return target == ErrStoreWriteFailed
}

// GenerationError wraps a response generator failure for a session
type GenerationError struct {
	SessionID string
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation error [%s]: %v", e.SessionID, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
