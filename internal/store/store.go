// Package store persists pot game snapshots.
//
// A Store never fails a Load because of what it finds on disk: a missing,
// corrupt or invalid snapshot restores as pot.DefaultState.
package store

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lox/potgame/internal/pot"
)

// Store loads and saves the snapshot of a single game.
type Store interface {
	Load(ctx context.Context) (pot.State, error)
	Save(ctx context.Context, s pot.State) error
	Clear(ctx context.Context) error
}

//go:embed schemas
var schemaFiles embed.FS

const schemaURL = "https://potgame.local/schemas/state.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func stateSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		data, err := schemaFiles.ReadFile("schemas/state.json")
		if err != nil {
			schemaErr = fmt.Errorf("failed to read state schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
			schemaErr = fmt.Errorf("failed to add state schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Encode serialises a snapshot.
func Encode(s pot.State) ([]byte, error) {
	return json.MarshalIndent(s.Clone(), "", "  ")
}

// Restore decodes and checks a stored snapshot. The shape is checked
// against the embedded JSON schema, then the game invariants with
// pot.Validate.
func Restore(data []byte) (pot.State, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return pot.DefaultState(), fmt.Errorf("invalid JSON: %w", err)
	}

	sch, err := stateSchema()
	if err != nil {
		return pot.DefaultState(), err
	}
	if err := sch.Validate(doc); err != nil {
		return pot.DefaultState(), fmt.Errorf("snapshot does not match schema: %w", err)
	}

	var s pot.State
	if err := json.Unmarshal(data, &s); err != nil {
		return pot.DefaultState(), fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := pot.Validate(s); err != nil {
		return pot.DefaultState(), err
	}
	return s.Clone(), nil
}

// Memory keeps the encoded snapshot in memory. It goes through Encode and
// Restore like File does, so tests see the same round trip.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load implements Store.
func (m *Memory) Load(ctx context.Context) (pot.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return pot.DefaultState(), nil
	}
	s, err := Restore(m.data)
	if err != nil {
		return pot.DefaultState(), nil
	}
	return s, nil
}

// Save implements Store.
func (m *Memory) Save(ctx context.Context, s pot.State) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Clear implements Store.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

// Raw returns the stored bytes, nil when empty.
func (m *Memory) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Clone(m.data)
}

// SetRaw replaces the stored bytes, for simulating a damaged store.
func (m *Memory) SetRaw(data []byte) {
	m.mu.Lock()
	m.data = bytes.Clone(data)
	m.mu.Unlock()
}
