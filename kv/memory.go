package kv

import (
	"context"
	"sync"
)

// Faults makes a Memory store fail on demand. A nil error disables the
// fault for that operation.
type Faults struct {
	Get    error
	Set    error
	Remove error
}

// Memory is an in-process Store. Nothing survives the process; it backs
// tests and throwaway runs.
type Memory struct {
	mu     sync.Mutex
	data   map[string]string
	faults Faults
	sets   int
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// SetFaults replaces the injected failures.
func (m *Memory) SetFaults(f Faults) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults = f
}

// Sets returns how many successful Set calls the store has served.
func (m *Memory) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.faults.Get != nil {
		return "", false, m.faults.Get
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.faults.Set != nil {
		return m.faults.Set
	}
	m.data[key] = value
	m.sets++
	return nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.faults.Remove != nil {
		return m.faults.Remove
	}
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error { return nil }
