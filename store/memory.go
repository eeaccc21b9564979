package store

import (
	"context"
	"sync"
)

// Memory is an in-process store, used for fake mode and tests.
type Memory struct {
	mu     sync.Mutex
	values map[string]any
	fail   map[string]error
	calls  []string
}

func NewMemory() *Memory {
	return &Memory{values: map[string]any{}, fail: map[string]error{}}
}

// Put stores v at path without going through a typed setter.
func (m *Memory) Put(path string, v any) {
	m.mu.Lock()
	m.values[path] = v
	m.mu.Unlock()
}

// Value returns what is stored at path.
func (m *Memory) Value(path string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[path]
	return v, ok
}

// Fail makes every call on path return err. A nil err clears it.
func (m *Memory) Fail(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, path)
		return
	}
	m.fail[path] = err
}

// Calls lists the paths touched so far, in order.
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Memory) get(path string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, path)
	if err := m.fail[path]; err != nil {
		return nil, err
	}
	return m.values[path], nil
}

func (m *Memory) set(path string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, path)
	if err := m.fail[path]; err != nil {
		return err
	}
	m.values[path] = v
	return nil
}

func (m *Memory) GetBool(ctx context.Context, path string) (bool, error) {
	v, err := m.get(path)
	if err != nil {
		return false, err
	}
	return asBool(v)
}

func (m *Memory) GetInt(ctx context.Context, path string) (int, error) {
	v, err := m.get(path)
	if err != nil {
		return 0, err
	}
	return asInt(v)
}

func (m *Memory) SetString(ctx context.Context, path, v string) error {
	return m.set(path, v)
}

func (m *Memory) SetFloat(ctx context.Context, path string, v float64) error {
	if err := checkFloat(v); err != nil {
		return err
	}
	return m.set(path, v)
}
