package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"codelingo/internal/catalog"
)

// SlotKey names the persistence slot holding the serialized AppState.
const SlotKey = "codelingo_state_v1"

// ErrPersistenceRead marks a saved state that could not be read or parsed.
// Load still returns a usable default state alongside it.
var ErrPersistenceRead = errors.New("persisted state unreadable")

// Repository loads and saves AppState through a Store slot.
type Repository struct {
	store   Store
	catalog *catalog.Catalog
	now     func() time.Time
	hearts  int
}

func NewRepository(store Store, cat *catalog.Catalog) *Repository {
	return &Repository{store: store, catalog: cat, now: time.Now}
}

// WithStartingHearts sets the heart count of a first-run state. Zero keeps
// DefaultHearts.
func (r *Repository) WithStartingHearts(n int) *Repository {
	r.hearts = n
	return r
}

func (r *Repository) Default() *AppState {
	st := Default(r.catalog)
	if r.hearts > 0 {
		st.Hearts = r.hearts
	}
	return st
}

// Load never fails to produce a state: an empty slot yields defaults and a
// nil error, an unreadable slot yields defaults and an error wrapping
// ErrPersistenceRead that callers are expected to log and ignore.
func (r *Repository) Load(ctx context.Context) (*AppState, error) {
	raw, err := r.store.ReadSlot(ctx, SlotKey)
	if err != nil {
		return r.Default(), fmt.Errorf("%w: read slot: %v", ErrPersistenceRead, err)
	}
	if len(raw) == 0 {
		return r.Default(), nil
	}
	st, err := decode(raw, r.Default(), r.catalog)
	if err != nil {
		return r.Default(), fmt.Errorf("%w: %v", ErrPersistenceRead, err)
	}
	return st, nil
}

func (r *Repository) Save(ctx context.Context, st *AppState) error {
	if st == nil {
		return errors.New("save: nil state")
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := r.store.WriteSlot(ctx, SlotKey, raw, r.now()); err != nil {
		return fmt.Errorf("write state slot: %w", err)
	}
	return nil
}

// Clear discards the slot and the attempt history.
func (r *Repository) Clear(ctx context.Context) error {
	if err := r.store.DeleteSlot(ctx, SlotKey); err != nil {
		return fmt.Errorf("delete state slot: %w", err)
	}
	if err := r.store.ClearAttempts(ctx); err != nil {
		return fmt.Errorf("clear attempts: %w", err)
	}
	return nil
}

func (r *Repository) RecordAttempt(ctx context.Context, a Attempt) error {
	return r.store.RecordAttempt(ctx, a)
}

func (r *Repository) Summary(ctx context.Context) (Summary, error) {
	return r.store.GetSummary(ctx)
}
