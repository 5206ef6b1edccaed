package userservice

import (
	"context"
	"sync"
)

// Memory is an in-memory UserService backed by a map, sufficient for
// tests and small single-node deployments. An unassigned user
// resolves to the empty group name, which the scheduler treats the
// same as "group does not exist".
type Memory struct {
	mu     sync.RWMutex
	groups map[string]string
}

// NewMemory constructs a Memory UserService, optionally seeded with
// initial username -> group assignments.
func NewMemory(initial map[string]string) *Memory {
	m := &Memory{groups: make(map[string]string, len(initial))}
	for username, group := range initial {
		m.groups[username] = group
	}
	return m
}

var _ UserService = (*Memory)(nil)
var _ Assigner = (*Memory)(nil)

// GroupOf returns username's current group, or the empty string if
// unassigned.
func (m *Memory) GroupOf(_ context.Context, username string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.groups[username], nil
}

// Assign sets or replaces username's group, creating the user if it
// did not already have one.
func (m *Memory) Assign(_ context.Context, username, group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[username] = group
	return nil
}
