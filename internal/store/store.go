// Package store persists flight records as an append-only log.
//
// Every write appends a row. Soft deletion appends a tombstone copy of the
// latest row with Deleted set. Reads fold the rows of each flight: the
// latest row wins and a deleted flag, once written, sticks.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

var (
	ErrFlightNotFound = errors.New("flight not found")
	ErrMissingID      = errors.New("flight id and user id are required")
)

// Store is the persistence collaborator of the enrichment pipeline.
type Store interface {
	Insert(ctx context.Context, rec models.FlightRecord) error
	// QueryByUser returns the user's flights in insertion order.
	QueryByUser(ctx context.Context, userID string, includeDeleted bool) ([]models.FlightRecord, error)
	Get(ctx context.Context, flightID string) (models.FlightRecord, error)
	// MarkDeleted appends a tombstone. Deleting a deleted flight is a no-op.
	MarkDeleted(ctx context.Context, flightID string) error
	// Purge removes every row of the flight.
	Purge(ctx context.Context, flightID string) error
}

// fold collapses appended rows into one record per flight, preserving the
// order in which flights first appeared.
func fold(rows []models.FlightRecord) []models.FlightRecord {
	index := make(map[string]int, len(rows))
	out := make([]models.FlightRecord, 0, len(rows))
	for _, r := range rows {
		i, ok := index[r.FlightID]
		if !ok {
			index[r.FlightID] = len(out)
			out = append(out, r)
			continue
		}
		deleted := out[i].Deleted || r.Deleted
		out[i] = r
		out[i].Deleted = deleted
	}
	return out
}

func filterDeleted(recs []models.FlightRecord, includeDeleted bool) []models.FlightRecord {
	if includeDeleted {
		return recs
	}
	live := recs[:0]
	for _, r := range recs {
		if !r.Deleted {
			live = append(live, r)
		}
	}
	return live
}

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

// Memory is an in-process Store with the same append-only semantics as the
// database store.
type Memory struct {
	mu   sync.RWMutex
	rows []models.FlightRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Insert(_ context.Context, rec models.FlightRecord) error {
	if rec.FlightID == "" || rec.UserID == "" {
		return ErrMissingID
	}
	m.mu.Lock()
	m.rows = append(m.rows, rec)
	m.mu.Unlock()
	return nil
}

func (m *Memory) QueryByUser(_ context.Context, userID string, includeDeleted bool) ([]models.FlightRecord, error) {
	m.mu.RLock()
	var rows []models.FlightRecord
	for _, r := range m.rows {
		if r.UserID == userID {
			rows = append(rows, r)
		}
	}
	m.mu.RUnlock()
	return filterDeleted(fold(rows), includeDeleted), nil
}

func (m *Memory) Get(_ context.Context, flightID string) (models.FlightRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest(flightID)
}

func (m *Memory) latest(flightID string) (models.FlightRecord, error) {
	var rows []models.FlightRecord
	for _, r := range m.rows {
		if r.FlightID == flightID {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return models.FlightRecord{}, ErrFlightNotFound
	}
	return fold(rows)[0], nil
}

func (m *Memory) MarkDeleted(_ context.Context, flightID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.latest(flightID)
	if err != nil {
		return err
	}
	if rec.Deleted {
		return nil
	}
	rec.Deleted = true
	m.rows = append(m.rows, rec)
	return nil
}

func (m *Memory) Purge(_ context.Context, flightID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.FlightID != flightID {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(m.rows) {
		return ErrFlightNotFound
	}
	m.rows = kept
	return nil
}
