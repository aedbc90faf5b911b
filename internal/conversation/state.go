package conversation

import (
	"fmt"
	"strings"
)

// Role identifies the author of a conversation message.
type Role string

// Message roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. Messages are immutable once
// appended. IsError marks locally generated failure notices; it is never
// sent to the assist endpoint.
type Message struct {
	Role         Role
	Content      string
	ComponentIDs []string
	IsError      bool
}

// ErrSubmitInFlight is returned by BeginSubmit while a previous submission
// has not finished. The caller must serialize submissions; at most one
// request per conversation is in flight at a time.
var ErrSubmitInFlight = fmt.Errorf("a submission is already in flight")

// State holds a conversation for the lifetime of a session: the append-only
// message history, the component ids staged for the next message, and the
// most recent non-empty reference set for follow-up continuity.
//
// State is single-threaded by contract. All interaction with it happens on
// the host editor's event loop, so it carries no locks.
type State struct {
	history        []Message
	pending        []string
	pendingSet     map[string]struct{}
	lastReferenced []string
	submitting     bool
}

// NewState creates an empty conversation.
func NewState() *State {
	return &State{pendingSet: make(map[string]struct{})}
}

// StageComponent adds a component id to the pending selection. Returns false
// when the id is blank or already staged.
func (s *State) StageComponent(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if _, ok := s.pendingSet[id]; ok {
		return false
	}
	s.pendingSet[id] = struct{}{}
	s.pending = append(s.pending, id)
	return true
}

// UnstageComponent removes a component id from the pending selection.
// Returns false when the id was not staged.
func (s *State) UnstageComponent(id string) bool {
	if _, ok := s.pendingSet[id]; !ok {
		return false
	}
	delete(s.pendingSet, id)
	for i, staged := range s.pending {
		if staged == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
	return true
}

// Pending returns a copy of the staged component ids in insertion order.
func (s *State) Pending() []string {
	return append([]string(nil), s.pending...)
}

// LastReferenced returns a copy of the most recent non-empty reference set.
func (s *State) LastReferenced() []string {
	return append([]string(nil), s.lastReferenced...)
}

// History returns a copy of the message history.
func (s *State) History() []Message {
	return append([]Message(nil), s.history...)
}

// Append adds a message to the history.
func (s *State) Append(msg Message) {
	s.history = append(s.history, msg)
}

// Submitting reports whether a submission is in flight.
func (s *State) Submitting() bool {
	return s.submitting
}

// BeginSubmit transitions the conversation into the submitting phase and
// returns the effective reference set for the outgoing message: the pending
// selection when non-empty, otherwise the last referenced set so a follow-up
// with no new selection still carries its context forward. A non-empty
// pending selection becomes the new last referenced set and is cleared
// atomically. Returns ErrSubmitInFlight when already submitting.
func (s *State) BeginSubmit() ([]string, error) {
	if s.submitting {
		return nil, ErrSubmitInFlight
	}
	s.submitting = true
	if len(s.pending) > 0 {
		s.lastReferenced = s.pending
		s.pending = nil
		s.pendingSet = make(map[string]struct{})
	}
	return append([]string(nil), s.lastReferenced...), nil
}

// FinishSubmit returns the conversation to the idle phase.
func (s *State) FinishSubmit() {
	s.submitting = false
}
