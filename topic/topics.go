// Package topic defines the topic scheme used by the state store's
// notification bus.
//
// Topics are hierarchical strings: a fixed category prefix joined with the
// dotted state path the notification concerns, e.g.
//
//	state.changed.todos
//	state.updated.user.profile.name
//
// Subscribers match on the exact topic string. There is no wildcard or
// prefix matching: an observer of "state.changed.todos" is not notified
// when "state.changed.todos.0.done" fires.
package topic

// Topic is a notification category. Concatenate with a state path via Of
// to produce the full topic string notifications are published under.
type Topic string

const (
	// StateChanged carries an old/new payload for a scalar update at a path.
	StateChanged Topic = "state.changed"

	// StateUpdated is the payload-free refresh signal emitted alongside
	// every mutation. Subscribe here when the handler only needs to know
	// that something at the path changed.
	StateUpdated Topic = "state.updated"

	// ListAdded carries the appended item and its post-append index.
	ListAdded Topic = "state.list_added"

	// DictAdded carries the inserted key and value.
	DictAdded Topic = "state.dict_added"

	// Mutation is the fixed catch-all record topic. Every successful
	// mutation publishes a structured record here with no path suffix,
	// so journaling observers can see all traffic despite exact-topic
	// matching. Subscribe with string(topic.Mutation) directly.
	Mutation Topic = "state.mutation"

	// UndoStatus reports per-path undo/redo availability after any
	// history change.
	UndoStatus Topic = "undo.status_changed"
)

// Command topics let any component drive a store through the bus instead
// of holding a direct reference. The store subscribes to these at
// construction; they carry no path suffix — the path travels in the
// payload.
const (
	CmdUpdateState Topic = "command.update_state"
	CmdAddToList   Topic = "command.add_to_list"
	CmdAddToDict   Topic = "command.add_to_dict"
	CmdReplace     Topic = "command.replace_state"
	CmdEnableUndo  Topic = "command.enable_undo_redo"
	CmdDisableUndo Topic = "command.disable_undo_redo"
	CmdUndo        Topic = "command.undo"
	CmdRedo        Topic = "command.redo"
)

// Of returns the full topic string for a category at the given path.
func (t Topic) Of(path string) string {
	if path == "" {
		return string(t)
	}
	return string(t) + "." + path
}

// String returns the category prefix without a path.
func (t Topic) String() string {
	return string(t)
}
