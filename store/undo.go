package store

import (
	"github.com/vavavavavavavavava/pubsubtk/topic"
)

// history tracks per-path undo/redo stacks. The undo stack keeps the
// invariant that its top entry always equals the current value at the
// path, so the stack length is history depth + 1.
type history struct {
	enabled map[string]bool
	undo    map[string][]any
	redo    map[string][]any
	max     map[string]int
	active  bool // true while an undo/redo is being applied
}

const defaultMaxHistory = 10

func newHistory() *history {
	return &history{
		enabled: make(map[string]bool),
		undo:    make(map[string][]any),
		redo:    make(map[string][]any),
		max:     make(map[string]int),
	}
}

// EnableUndoRedo starts tracking history for path, seeding the stack with
// the current value. maxHistory bounds how many past values are kept;
// values <= 0 use the default of 10. Enabling a path that does not
// currently resolve starts with an empty stack.
func (s *Store[S]) EnableUndoRedo(path string, maxHistory int) {
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	s.hist.enabled[path] = true
	s.hist.max[path] = maxHistory

	if cur, err := resolveValue(s.root(), path); err == nil {
		s.hist.undo[path] = []any{deepCopyAny(cur.Interface())}
	} else {
		s.hist.undo[path] = nil
	}
	s.hist.redo[path] = nil

	s.emitUndoStatus(path)
}

// DisableUndoRedo stops tracking path and drops its history.
func (s *Store[S]) DisableUndoRedo(path string) {
	delete(s.hist.enabled, path)
	delete(s.hist.undo, path)
	delete(s.hist.redo, path)
	delete(s.hist.max, path)
}

// capture records the post-mutation value for tracked paths. A fresh
// mutation invalidates the redo stack.
func (s *Store[S]) capture(path string, newValue any) {
	if !s.hist.enabled[path] || s.hist.active {
		return
	}

	stack := append(s.hist.undo[path], deepCopyAny(newValue))
	if limit := s.hist.max[path] + 1; len(stack) > limit {
		stack = stack[len(stack)-limit:]
	}
	s.hist.undo[path] = stack
	s.hist.redo[path] = nil

	s.emitUndoStatus(path)
}

// Undo restores the previous value at path through the normal update
// path, so the usual change and refresh notifications fire. A path with
// no history to unwind is a no-op.
func (s *Store[S]) Undo(path string) error {
	if !s.hist.enabled[path] {
		return nil
	}
	stack := s.hist.undo[path]
	if len(stack) < 2 {
		return nil
	}

	cur := stack[len(stack)-1]
	prev := stack[len(stack)-2]
	s.hist.redo[path] = append(s.hist.redo[path], cur)
	s.hist.undo[path] = stack[:len(stack)-1]

	s.hist.active = true
	err := s.Update(path, deepCopyAny(prev))
	s.hist.active = false
	if err != nil {
		return err
	}

	s.emitUndoStatus(path)
	return nil
}

// Redo re-applies the most recently undone value at path.
func (s *Store[S]) Redo(path string) error {
	if !s.hist.enabled[path] {
		return nil
	}
	stack := s.hist.redo[path]
	if len(stack) == 0 {
		return nil
	}

	next := stack[len(stack)-1]
	s.hist.redo[path] = stack[:len(stack)-1]
	s.hist.undo[path] = append(s.hist.undo[path], next)

	s.hist.active = true
	err := s.Update(path, deepCopyAny(next))
	s.hist.active = false
	if err != nil {
		return err
	}

	s.emitUndoStatus(path)
	return nil
}

func (s *Store[S]) emitUndoStatus(path string) {
	undo := s.hist.undo[path]
	redo := s.hist.redo[path]
	undoCount := len(undo) - 1
	if undoCount < 0 {
		undoCount = 0
	}
	s.bus.Publish(topic.UndoStatus.Of(path), UndoStatusPayload{
		CanUndo:   len(undo) > 1,
		CanRedo:   len(redo) > 0,
		UndoCount: undoCount,
		RedoCount: len(redo),
	})
}
