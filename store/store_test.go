package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vavavavavavavavava/pubsubtk/bus"
	"github.com/vavavavavavavavava/pubsubtk/topic"
)

func newSeededStore(t *testing.T) *Store[testState] {
	t.Helper()
	return New(WithInitialState(seededState()))
}

// recorder collects every message delivered to it, in order.
type recorder struct {
	msgs []bus.Message
}

func (r *recorder) handle(m bus.Message) {
	r.msgs = append(r.msgs, m)
}

func TestUpdate_AssignsAndNotifies(t *testing.T) {
	s := newSeededStore(t)

	detailed := &recorder{}
	refresh := &recorder{}
	s.OnChange("user.profile.name", detailed.handle)
	s.OnRefresh("user.profile.name", refresh.handle)

	require.NoError(t, s.Update("user.profile.name", "bob"))

	assert.Equal(t, "bob", s.CurrentState().User.Profile.Name)

	require.Len(t, detailed.msgs, 1)
	payload := detailed.msgs[0].Payload.(ChangePayload)
	assert.Equal(t, "alice", payload.OldValue)
	assert.Equal(t, "bob", payload.NewValue)

	require.Len(t, refresh.msgs, 1)
	assert.Nil(t, refresh.msgs[0].Payload)
}

func TestUpdate_ExactlyOneDetailedOneRefresh(t *testing.T) {
	s := newSeededStore(t)

	detailed := &recorder{}
	refresh := &recorder{}
	s.OnChange("count", detailed.handle)
	s.OnRefresh("count", refresh.handle)

	require.NoError(t, s.Update("count", 6))

	assert.Len(t, detailed.msgs, 1)
	assert.Len(t, refresh.msgs, 1)
}

func TestUpdate_StructuralLiteralCoerced(t *testing.T) {
	s := newSeededStore(t)

	require.NoError(t, s.Update("user.profile", map[string]any{
		"name": "carol",
		"age":  41,
	}))

	got := s.CurrentState().User.Profile
	assert.Equal(t, "carol", got.Name)
	assert.Equal(t, 41, got.Age)
}

func TestUpdate_SliceElementCopyOnWrite(t *testing.T) {
	s := newSeededStore(t)

	before := s.CurrentState().Todos
	require.NoError(t, s.Update("todos.0.done", true))

	assert.True(t, s.CurrentState().Todos[0].Done)
	assert.False(t, before[0].Done, "snapshot taken before the update must not change")
}

func TestUpdate_UnknownPathFailsWithoutNotification(t *testing.T) {
	s := newSeededStore(t)

	rec := &recorder{}
	s.Bus().Subscribe(topic.Mutation.String(), rec.handle)

	err := s.Update("nonexistent.field", 1)
	assert.True(t, IsPathNotFound(err))
	assert.Empty(t, rec.msgs)
}

func TestUpdate_IncompatibleValueIsTypeMismatch(t *testing.T) {
	s := newSeededStore(t)

	err := s.Update("count", "not a number")
	assert.True(t, IsTypeMismatch(err))
	assert.Equal(t, 5, s.CurrentState().Count)
}

func TestUpdate_NilIntoScalarRejected(t *testing.T) {
	s := newSeededStore(t)

	err := s.Update("count", nil)
	assert.True(t, IsTypeMismatch(err))
}

func TestAddToList_AppendsWithIndexAndCopyOnWrite(t *testing.T) {
	s := newSeededStore(t)

	before := s.CurrentState().Todos
	added := &recorder{}
	refresh := &recorder{}
	s.OnListAdd("todos", added.handle)
	s.OnRefresh("todos", refresh.handle)

	require.NoError(t, s.AddToList("todos", testTodo{Title: "ship it"}))

	got := s.CurrentState().Todos
	require.Len(t, got, 2)
	assert.Equal(t, "ship it", got[1].Title)

	require.Len(t, added.msgs, 1)
	payload := added.msgs[0].Payload.(ListAddPayload)
	assert.Equal(t, 1, payload.Index, "index is the post-append position")
	assert.Equal(t, testTodo{Title: "ship it"}, payload.Item)

	assert.Len(t, refresh.msgs, 1)
	assert.Len(t, before, 1, "retained reference must keep its old length")
}

func TestAddToList_StructuralLiteralItem(t *testing.T) {
	s := newSeededStore(t)

	require.NoError(t, s.AddToList("todos", map[string]any{"title": "review", "done": true}))

	got := s.CurrentState().Todos
	require.Len(t, got, 2)
	assert.Equal(t, testTodo{Title: "review", Done: true}, got[1])
}

func TestAddToList_NonSequenceTarget(t *testing.T) {
	s := newSeededStore(t)

	rec := &recorder{}
	s.Bus().Subscribe(topic.Mutation.String(), rec.handle)

	err := s.AddToList("count", 1)
	assert.True(t, IsTypeMismatch(err))
	assert.Equal(t, 5, s.CurrentState().Count, "no mutation on failure")
	assert.Empty(t, rec.msgs, "no notification on failure")
}

func TestAddToDict_InsertsWithCopyOnWrite(t *testing.T) {
	s := newSeededStore(t)

	before := s.CurrentState().Counts
	added := &recorder{}
	s.OnDictAdd("counts", added.handle)

	require.NoError(t, s.AddToDict("counts", "views", 10))

	got := s.CurrentState().Counts
	assert.Equal(t, 10, got["views"])
	assert.Equal(t, 3, got["clicks"])

	require.Len(t, added.msgs, 1)
	payload := added.msgs[0].Payload.(DictAddPayload)
	assert.Equal(t, "views", payload.Key)
	assert.Equal(t, 10, payload.Value)

	_, ok := before["views"]
	assert.False(t, ok, "retained reference must not gain the new key")
}

func TestAddToDict_OverwritesExistingKey(t *testing.T) {
	s := newSeededStore(t)

	require.NoError(t, s.AddToDict("counts", "clicks", 4))
	assert.Equal(t, 4, s.CurrentState().Counts["clicks"])
}

func TestAddToDict_NonMappingTarget(t *testing.T) {
	s := newSeededStore(t)

	err := s.AddToDict("todos", "k", 1)
	assert.True(t, IsTypeMismatch(err))
}

func TestReplace_FanOutCoversEveryTopLevelField(t *testing.T) {
	s := newSeededStore(t)

	perField := map[string]*recorder{}
	for _, name := range []string{"user", "todos", "counts", "count"} {
		rec := &recorder{}
		perField[name] = rec
		s.OnChange(name, rec.handle)
		s.OnRefresh(name, rec.handle)
	}

	next := seededState()
	next.Count = 99
	// User, Todos, Counts left identical: the broadcast is not a diff.
	s.Replace(next)

	for name, rec := range perField {
		assert.Len(t, rec.msgs, 2, "field %q must get one detailed and one refresh", name)
	}
	assert.Equal(t, 99, s.CurrentState().Count)
}

func TestReplaceAny_WrongTypeRejected(t *testing.T) {
	s := newSeededStore(t)

	err := s.ReplaceAny(struct{ X int }{1})
	assert.True(t, IsTypeMismatch(err))
}

func TestCurrentState_IsDeepCopy(t *testing.T) {
	s := newSeededStore(t)

	snap := s.CurrentState()
	snap.User.Profile.Name = "mutated"
	snap.Todos[0].Done = true
	snap.Counts["clicks"] = 999

	cur := s.CurrentState()
	assert.Equal(t, "alice", cur.User.Profile.Name)
	assert.False(t, cur.Todos[0].Done)
	assert.Equal(t, 3, cur.Counts["clicks"])
}

func TestMutationRecord_PublishedForEveryOp(t *testing.T) {
	s := newSeededStore(t)

	rec := &recorder{}
	s.Bus().Subscribe(topic.Mutation.String(), rec.handle)

	require.NoError(t, s.Update("count", 1))
	require.NoError(t, s.AddToList("todos", testTodo{Title: "x"}))
	require.NoError(t, s.AddToDict("counts", "k", 2))
	s.Replace(seededState())

	require.Len(t, rec.msgs, 4)
	ops := make([]MutationOp, len(rec.msgs))
	for i, m := range rec.msgs {
		ops[i] = m.Payload.(Mutation).Op
	}
	assert.Equal(t, []MutationOp{OpUpdate, OpListAdd, OpDictAdd, OpReplace}, ops)
}

func TestCommandTopics_DriveMutations(t *testing.T) {
	s := newSeededStore(t)

	s.Bus().Publish(topic.CmdUpdateState.String(), UpdateCommand{Path: "count", Value: 7})
	assert.Equal(t, 7, s.CurrentState().Count)

	s.Bus().Publish(topic.CmdAddToList.String(), AddToListCommand{Path: "todos", Item: testTodo{Title: "via bus"}})
	assert.Len(t, s.CurrentState().Todos, 2)

	s.Bus().Publish(topic.CmdAddToDict.String(), AddToDictCommand{Path: "counts", Key: "bus", Value: 1})
	assert.Equal(t, 1, s.CurrentState().Counts["bus"])

	next := seededState()
	next.Count = 42
	s.Bus().Publish(topic.CmdReplace.String(), next)
	assert.Equal(t, 42, s.CurrentState().Count)
}

func TestTeardown_RemovesCommandSubscriptions(t *testing.T) {
	s := newSeededStore(t)

	s.Teardown()
	s.Bus().Publish(topic.CmdUpdateState.String(), UpdateCommand{Path: "count", Value: 7})
	assert.Equal(t, 5, s.CurrentState().Count, "commands must be inert after teardown")
}

func TestSharedBus_TwoStoresCoexist(t *testing.T) {
	type otherState struct {
		Label string `json:"label"`
	}

	shared := bus.New()
	s1 := New(WithBus[testState](shared), WithInitialState(seededState()))
	s2 := New(WithBus[otherState](shared))

	// Command topics are shared: both stores see the update command, one
	// resolves the path, the other logs a resolution failure and moves on.
	shared.Publish(topic.CmdUpdateState.String(), UpdateCommand{Path: "label", Value: "hi"})
	assert.Equal(t, "hi", s2.CurrentState().Label)
	assert.Equal(t, 5, s1.CurrentState().Count)
}
