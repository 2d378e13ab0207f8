// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package statemachine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ErrInvalidTransition is matched by every error returned for a transition
// that is not in the table.
var ErrInvalidTransition = errors.New("invalid transition")

// Event names the trigger of a transition.
type Event string

// TransitionHook runs after a transition has been accepted.
type TransitionHook[T comparable] func(ctx context.Context, from, to T, event Event) error

// StateHook runs after a transition into a specific state has been accepted.
type StateHook[T comparable] func(ctx context.Context, state T) error

// TransitionValidator may veto a transition that the table allows.
type TransitionValidator[T comparable] func(ctx context.Context, from, to T, event Event) error

// TransitionError describes a rejected transition.
type TransitionError[T comparable] struct {
	From  T
	To    T
	Event Event
	Err   error
}

func (e *TransitionError[T]) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transition %v → %v rejected: %v", e.From, e.To, e.Err)
	}
	if e.Event != "" {
		return fmt.Sprintf("invalid transition: %v → %v on %s", e.From, e.To, e.Event)
	}
	return fmt.Sprintf("invalid transition: %v → %v", e.From, e.To)
}

func (e *TransitionError[T]) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidTransition
}

type transitionKey[T comparable] struct {
	From  T
	Event Event
}

// Machine is a transition table for entities whose current state lives
// elsewhere (a database row, for instance). It holds no current state, so a
// single Machine is shared by every entity of a kind and is safe for
// concurrent use once configured.
type Machine[T comparable] struct {
	mu sync.RWMutex

	initial          T
	validTransitions map[T][]T
	eventTransitions map[transitionKey[T]]T
	terminal         map[T]bool

	validators   []TransitionValidator[T]
	onTransition []TransitionHook[T]
	onEnter      map[T][]StateHook[T]
}

// New creates a Machine whose entities start in initial.
func New[T comparable](initial T) *Machine[T] {
	return &Machine[T]{
		initial:          initial,
		validTransitions: make(map[T][]T),
		eventTransitions: make(map[transitionKey[T]]T),
		terminal:         make(map[T]bool),
		onEnter:          make(map[T][]StateHook[T]),
	}
}

// Initial returns the state new entities start in.
func (m *Machine[T]) Initial() T {
	return m.initial
}

// Allow registers valid transitions from a source state.
func (m *Machine[T]) Allow(from T, to ...T) *Machine[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, target := range to {
		if !slices.Contains(m.validTransitions[from], target) {
			m.validTransitions[from] = append(m.validTransitions[from], target)
		}
	}
	return m
}

// On registers an event-driven transition; it also allows from → to.
func (m *Machine[T]) On(from T, event Event, to T) *Machine[T] {
	m.Allow(from, to)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventTransitions[transitionKey[T]{From: from, Event: event}] = to
	return m
}

// Terminal marks states no transition may leave.
func (m *Machine[T]) Terminal(states ...T) *Machine[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range states {
		m.terminal[s] = true
	}
	return m
}

// AddValidator adds a validator consulted after the table check.
func (m *Machine[T]) AddValidator(v TransitionValidator[T]) *Machine[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validators = append(m.validators, v)
	return m
}

// OnTransition registers a hook run for every accepted transition.
func (m *Machine[T]) OnTransition(h TransitionHook[T]) *Machine[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTransition = append(m.onTransition, h)
	return m
}

// OnEnter registers a hook run for accepted transitions into state.
func (m *Machine[T]) OnEnter(state T, h StateHook[T]) *Machine[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnter[state] = append(m.onEnter[state], h)
	return m
}

// IsTerminal reports whether state was marked terminal.
func (m *Machine[T]) IsTerminal(state T) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.terminal[state]
}

// CanTransition reports whether the table allows from → to.
func (m *Machine[T]) CanTransition(from, to T) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.canTransition(from, to)
}

func (m *Machine[T]) canTransition(from, to T) bool {
	if m.terminal[from] {
		return false
	}
	return slices.Contains(m.validTransitions[from], to)
}

// ValidNextStates returns every state reachable from from in one step.
func (m *Machine[T]) ValidNextStates(from T) []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.terminal[from] {
		return nil
	}
	return slices.Clone(m.validTransitions[from])
}

// Target resolves the state an event leads to from from.
func (m *Machine[T]) Target(from T, event Event) (T, error) {
	m.mu.RLock()
	to, ok := m.eventTransitions[transitionKey[T]{From: from, Event: event}]
	terminal := m.terminal[from]
	m.mu.RUnlock()
	if !ok || terminal {
		var zero T
		return zero, &TransitionError[T]{From: from, Event: event}
	}
	return to, nil
}

// Transition checks from → to against the table and the validators, then
// runs the transition and enter hooks. The caller persists the new state.
func (m *Machine[T]) Transition(ctx context.Context, from, to T, event Event) error {
	m.mu.RLock()
	allowed := m.canTransition(from, to)
	validators := slices.Clone(m.validators)
	transitionHooks := slices.Clone(m.onTransition)
	enterHooks := slices.Clone(m.onEnter[to])
	m.mu.RUnlock()

	if !allowed {
		return &TransitionError[T]{From: from, To: to, Event: event}
	}
	for _, v := range validators {
		if err := v(ctx, from, to, event); err != nil {
			return &TransitionError[T]{From: from, To: to, Event: event, Err: err}
		}
	}
	for _, h := range transitionHooks {
		if err := h(ctx, from, to, event); err != nil {
			return fmt.Errorf("transition hook failed: %w", err)
		}
	}
	for _, h := range enterHooks {
		if err := h(ctx, to); err != nil {
			return fmt.Errorf("enter hook failed for state %v: %w", to, err)
		}
	}
	return nil
}

// Fire resolves event from from and performs the transition.
func (m *Machine[T]) Fire(ctx context.Context, from T, event Event) (T, error) {
	to, err := m.Target(from, event)
	if err != nil {
		return to, err
	}
	if err := m.Transition(ctx, from, to, event); err != nil {
		var zero T
		return zero, err
	}
	return to, nil
}

// ToDot exports the table in Graphviz DOT format.
func (m *Machine[T]) ToDot(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", name)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=circle];\n")
	b.WriteString("  start [shape=point];\n")
	fmt.Fprintf(&b, "  start -> \"%v\";\n", m.initial)

	for state := range m.terminal {
		fmt.Fprintf(&b, "  \"%v\" [shape=doublecircle];\n", state)
	}
	for from, tos := range m.validTransitions {
		for _, to := range tos {
			var labels []string
			for key, target := range m.eventTransitions {
				if key.From == from && target == to {
					labels = append(labels, string(key.Event))
				}
			}
			slices.Sort(labels)
			if len(labels) > 0 {
				fmt.Fprintf(&b, "  \"%v\" -> \"%v\" [label=\"%s\"];\n", from, to, strings.Join(labels, ", "))
			} else {
				fmt.Fprintf(&b, "  \"%v\" -> \"%v\";\n", from, to)
			}
		}
	}
	b.WriteString("}\n")
	return b.String()
}
