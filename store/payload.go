package store

// ChangePayload is the detailed payload for a scalar update: the value
// before and after the assignment.
type ChangePayload struct {
	OldValue any
	NewValue any
}

// ListAddPayload is the detailed payload for a sequence append. Index is
// the zero-based, post-append index of the new item.
type ListAddPayload struct {
	Item  any
	Index int
}

// DictAddPayload is the detailed payload for a mapping insertion.
type DictAddPayload struct {
	Key   string
	Value any
}

// UndoStatusPayload reports per-path history availability.
type UndoStatusPayload struct {
	CanUndo   bool
	CanRedo   bool
	UndoCount int
	RedoCount int
}

// MutationOp identifies the kind of mutation in a Mutation record.
type MutationOp string

const (
	OpUpdate  MutationOp = "update"
	OpListAdd MutationOp = "list_add"
	OpDictAdd MutationOp = "dict_add"
	OpReplace MutationOp = "replace"
)

// Mutation is the structured record published on topic.Mutation after
// every successful mutation. Journaling observers persist these; Replay
// feeds them back through ApplyJSONMutation.
type Mutation struct {
	Op    MutationOp `json:"op"`
	Path  string     `json:"path,omitempty"`
	Key   string     `json:"key,omitempty"`
	Index int        `json:"index,omitempty"`
	Value any        `json:"value"`
}

// UpdateCommand is the payload for topic.CmdUpdateState.
type UpdateCommand struct {
	Path  string
	Value any
}

// AddToListCommand is the payload for topic.CmdAddToList.
type AddToListCommand struct {
	Path string
	Item any
}

// AddToDictCommand is the payload for topic.CmdAddToDict.
type AddToDictCommand struct {
	Path  string
	Key   string
	Value any
}

// UndoCommand is the payload for topic.CmdUndo, CmdRedo and
// CmdDisableUndo.
type UndoCommand struct {
	Path string
}

// EnableUndoCommand is the payload for topic.CmdEnableUndo.
type EnableUndoCommand struct {
	Path       string
	MaxHistory int
}
