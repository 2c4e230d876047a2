package store

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/vavavavavavavavava/pubsubtk/bus"
	"github.com/vavavavavavavavava/pubsubtk/topic"
)

// Store owns one instance of the state model S and is its sole mutation
// authority. All mutations go through Update, AddToList, AddToDict or
// Replace; every success publishes notifications on the bus keyed by the
// mutated path.
//
// S must be a struct type. New panics otherwise.
type Store[S any] struct {
	bus    *bus.Bus
	logger *slog.Logger
	state  *S
	hist   *history
	subs   []bus.Subscription
}

// Option configures a Store.
type Option[S any] func(*Store[S])

// WithBus attaches the store to an existing bus so it shares topics with
// other components. Defaults to a fresh bus.
func WithBus[S any](b *bus.Bus) Option[S] {
	return func(s *Store[S]) { s.bus = b }
}

// WithLogger sets the logger for command-handler failures and debug
// tracing. Defaults to slog.Default.
func WithLogger[S any](l *slog.Logger) Option[S] {
	return func(s *Store[S]) { s.logger = l }
}

// WithInitialState seeds the store with a pre-built model instead of the
// zero value of S.
func WithInitialState[S any](initial S) Option[S] {
	return func(s *Store[S]) {
		cp := deepCopyValue(reflect.ValueOf(initial)).Interface().(S)
		s.state = &cp
	}
}

// New creates a store holding the zero value of S and subscribes it to
// the command topics so any bus participant can drive mutations.
func New[S any](opts ...Option[S]) *Store[S] {
	if reflect.TypeOf((*S)(nil)).Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("store: state model must be a struct type, got %s", reflect.TypeOf((*S)(nil)).Elem()))
	}

	var zero S
	s := &Store[S]{
		state:  &zero,
		logger: slog.Default(),
		hist:   newHistory(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = bus.New(bus.WithLogger(s.logger))
	}
	s.setupSubscriptions()
	return s
}

// Bus returns the bus this store publishes on.
func (s *Store[S]) Bus() *bus.Bus {
	return s.bus
}

// CurrentState returns a deep copy of the current state. Mutating the
// copy has no effect on the store.
func (s *Store[S]) CurrentState() S {
	return deepCopyValue(reflect.ValueOf(*s.state)).Interface().(S)
}

// root returns the live, addressable state value.
func (s *Store[S]) root() reflect.Value {
	return reflect.ValueOf(s.state).Elem()
}

// Update assigns a new value to the field at path and publishes a
// detailed change notification plus a refresh notification.
//
// If the declared field type is a struct and value is a map[string]any of
// compatible shape, the map is coerced into the struct first, so
// structural literals are accepted, not just pre-built instances.
func (s *Store[S]) Update(path string, value any) error {
	root := s.root()
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	old, err := resolveValue(root, path)
	if err != nil {
		return err
	}
	oldVal := old.Interface()

	var newVal any
	if _, err := setPath(root, segs, path, func(decl reflect.Type, _ reflect.Value) (reflect.Value, error) {
		nv, err := coerce(decl, value, path, string(OpUpdate))
		if err != nil {
			return reflect.Value{}, err
		}
		newVal = nv.Interface()
		return nv, nil
	}); err != nil {
		return err
	}

	s.capture(path, newVal)
	s.bus.Publish(topic.StateChanged.Of(path), ChangePayload{OldValue: oldVal, NewValue: newVal})
	s.bus.Publish(topic.StateUpdated.Of(path), nil)
	s.bus.Publish(topic.Mutation.String(), Mutation{Op: OpUpdate, Path: path, Value: newVal})
	return nil
}

// AddToList appends item to the sequence at path. The stored slice is
// copied before the append, so references retained from earlier snapshots
// keep their old contents. The notification carries the appended item and
// its post-append index.
func (s *Store[S]) AddToList(path string, item any) error {
	root := s.root()
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	cur, err := resolveValue(root, path)
	if err != nil {
		return err
	}
	decl, err := declaredType(root, path)
	if err != nil {
		return err
	}

	sliceT := decl
	if sliceT.Kind() == reflect.Interface {
		cv := deref(cur)
		if cv.Kind() != reflect.Slice {
			return &TypeError{Path: path, Op: string(OpListAdd), Want: "slice", Got: describeValue(cv)}
		}
		sliceT = cv.Type()
	}
	if sliceT.Kind() != reflect.Slice {
		return &TypeError{Path: path, Op: string(OpListAdd), Want: "slice", Got: decl.String()}
	}

	itemV, err := coerce(sliceT.Elem(), item, path, string(OpListAdd))
	if err != nil {
		return err
	}

	index := 0
	var newList reflect.Value
	if _, err := setPath(root, segs, path, func(_ reflect.Type, oldv reflect.Value) (reflect.Value, error) {
		ov := deref(oldv)
		n := 0
		if ov.IsValid() && ov.Kind() == reflect.Slice {
			n = ov.Len()
		}
		cp := reflect.MakeSlice(sliceT, n, n+1)
		if n > 0 {
			reflect.Copy(cp, ov)
		}
		cp = reflect.Append(cp, itemV)
		index = cp.Len() - 1
		newList = cp
		return cp, nil
	}); err != nil {
		return err
	}

	s.capture(path, newList.Interface())
	s.bus.Publish(topic.ListAdded.Of(path), ListAddPayload{Item: itemV.Interface(), Index: index})
	s.bus.Publish(topic.StateUpdated.Of(path), nil)
	s.bus.Publish(topic.Mutation.String(), Mutation{Op: OpListAdd, Path: path, Index: index, Value: itemV.Interface()})
	return nil
}

// AddToDict inserts (or overwrites) key in the mapping at path. The
// stored map is copied before the insertion.
func (s *Store[S]) AddToDict(path string, key string, value any) error {
	root := s.root()
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	cur, err := resolveValue(root, path)
	if err != nil {
		return err
	}
	decl, err := declaredType(root, path)
	if err != nil {
		return err
	}

	mapT := decl
	if mapT.Kind() == reflect.Interface {
		cv := deref(cur)
		if cv.Kind() != reflect.Map {
			return &TypeError{Path: path, Op: string(OpDictAdd), Want: "map", Got: describeValue(cv)}
		}
		mapT = cv.Type()
	}
	if mapT.Kind() != reflect.Map {
		return &TypeError{Path: path, Op: string(OpDictAdd), Want: "map", Got: decl.String()}
	}
	if mapT.Key().Kind() != reflect.String {
		return &TypeError{Path: path, Op: string(OpDictAdd), Want: "string-keyed map", Got: mapT.String()}
	}

	keyV := reflect.ValueOf(key).Convert(mapT.Key())
	valV, err := coerce(mapT.Elem(), value, path, string(OpDictAdd))
	if err != nil {
		return err
	}

	var newMap reflect.Value
	if _, err := setPath(root, segs, path, func(_ reflect.Type, oldv reflect.Value) (reflect.Value, error) {
		ov := deref(oldv)
		size := 0
		if ov.IsValid() && ov.Kind() == reflect.Map && !ov.IsNil() {
			size = ov.Len()
		}
		cp := reflect.MakeMapWithSize(mapT, size+1)
		if size > 0 {
			iter := ov.MapRange()
			for iter.Next() {
				cp.SetMapIndex(iter.Key(), iter.Value())
			}
		}
		cp.SetMapIndex(keyV, valV)
		newMap = cp
		return cp, nil
	}); err != nil {
		return err
	}

	s.capture(path, newMap.Interface())
	s.bus.Publish(topic.DictAdded.Of(path), DictAddPayload{Key: key, Value: valV.Interface()})
	s.bus.Publish(topic.StateUpdated.Of(path), nil)
	s.bus.Publish(topic.Mutation.String(), Mutation{Op: OpDictAdd, Path: path, Key: key, Value: valV.Interface()})
	return nil
}

// Replace swaps in a whole new state instance and broadcasts a detailed
// plus a refresh notification for every top-level field, including
// unchanged ones. This is an "everything may have changed" signal, not a
// diff.
func (s *Store[S]) Replace(newState S) {
	oldRoot := s.root()
	tbl := tableFor(oldRoot.Type())

	oldVals := make([]any, len(tbl.names))
	for i, fi := range tbl.indexes {
		oldVals[i] = oldRoot.Field(fi).Interface()
	}

	cp := deepCopyValue(reflect.ValueOf(newState)).Interface().(S)
	*s.state = cp

	newRoot := s.root()
	for i, name := range tbl.names {
		s.bus.Publish(topic.StateChanged.Of(name), ChangePayload{
			OldValue: oldVals[i],
			NewValue: newRoot.Field(tbl.indexes[i]).Interface(),
		})
		s.bus.Publish(topic.StateUpdated.Of(name), nil)
	}
	s.bus.Publish(topic.Mutation.String(), Mutation{Op: OpReplace, Value: s.CurrentState()})
}

// ReplaceAny is the untyped replacement surface used by command handlers
// and replay. Instances of any type other than S are rejected.
func (s *Store[S]) ReplaceAny(v any) error {
	ns, ok := v.(S)
	if !ok {
		return &TypeError{Op: string(OpReplace), Want: reflect.TypeOf((*S)(nil)).Elem().String(), Got: fmt.Sprintf("%T", v)}
	}
	s.Replace(ns)
	return nil
}

// Teardown unsubscribes the store's command handlers from the bus.
func (s *Store[S]) Teardown() {
	for _, sub := range s.subs {
		if err := s.bus.Unsubscribe(sub); err != nil {
			s.logger.Error("store teardown", "err", err)
		}
	}
	s.subs = nil
}

func describeValue(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}
	return v.Type().String()
}

// setupSubscriptions wires the command topics to the mutation methods.
// Command handlers cannot return errors to the publisher, so failures are
// logged and otherwise dropped.
func (s *Store[S]) setupSubscriptions() {
	sub := func(t topic.Topic, h bus.Handler) {
		s.subs = append(s.subs, s.bus.Subscribe(t.String(), h))
	}
	sub(topic.CmdUpdateState, s.onCmdUpdate)
	sub(topic.CmdAddToList, s.onCmdAddToList)
	sub(topic.CmdAddToDict, s.onCmdAddToDict)
	sub(topic.CmdReplace, s.onCmdReplace)
	sub(topic.CmdEnableUndo, s.onCmdEnableUndo)
	sub(topic.CmdDisableUndo, s.onCmdDisableUndo)
	sub(topic.CmdUndo, s.onCmdUndo)
	sub(topic.CmdRedo, s.onCmdRedo)
}

func (s *Store[S]) onCmdUpdate(m bus.Message) {
	cmd, ok := m.Payload.(UpdateCommand)
	if !ok {
		s.logger.Error("update command: unexpected payload", "type", fmt.Sprintf("%T", m.Payload))
		return
	}
	if err := s.Update(cmd.Path, cmd.Value); err != nil {
		s.logger.Error("update command failed", "path", cmd.Path, "err", err)
	}
}

func (s *Store[S]) onCmdAddToList(m bus.Message) {
	cmd, ok := m.Payload.(AddToListCommand)
	if !ok {
		s.logger.Error("add_to_list command: unexpected payload", "type", fmt.Sprintf("%T", m.Payload))
		return
	}
	if err := s.AddToList(cmd.Path, cmd.Item); err != nil {
		s.logger.Error("add_to_list command failed", "path", cmd.Path, "err", err)
	}
}

func (s *Store[S]) onCmdAddToDict(m bus.Message) {
	cmd, ok := m.Payload.(AddToDictCommand)
	if !ok {
		s.logger.Error("add_to_dict command: unexpected payload", "type", fmt.Sprintf("%T", m.Payload))
		return
	}
	if err := s.AddToDict(cmd.Path, cmd.Key, cmd.Value); err != nil {
		s.logger.Error("add_to_dict command failed", "path", cmd.Path, "err", err)
	}
}

func (s *Store[S]) onCmdReplace(m bus.Message) {
	if err := s.ReplaceAny(m.Payload); err != nil {
		s.logger.Error("replace command failed", "err", err)
	}
}

func (s *Store[S]) onCmdEnableUndo(m bus.Message) {
	cmd, ok := m.Payload.(EnableUndoCommand)
	if !ok {
		s.logger.Error("enable_undo command: unexpected payload", "type", fmt.Sprintf("%T", m.Payload))
		return
	}
	s.EnableUndoRedo(cmd.Path, cmd.MaxHistory)
}

func (s *Store[S]) onCmdDisableUndo(m bus.Message) {
	cmd, ok := m.Payload.(UndoCommand)
	if !ok {
		s.logger.Error("disable_undo command: unexpected payload", "type", fmt.Sprintf("%T", m.Payload))
		return
	}
	s.DisableUndoRedo(cmd.Path)
}

func (s *Store[S]) onCmdUndo(m bus.Message) {
	cmd, ok := m.Payload.(UndoCommand)
	if !ok {
		s.logger.Error("undo command: unexpected payload", "type", fmt.Sprintf("%T", m.Payload))
		return
	}
	if err := s.Undo(cmd.Path); err != nil {
		s.logger.Error("undo command failed", "path", cmd.Path, "err", err)
	}
}

func (s *Store[S]) onCmdRedo(m bus.Message) {
	cmd, ok := m.Payload.(UndoCommand)
	if !ok {
		s.logger.Error("redo command: unexpected payload", "type", fmt.Sprintf("%T", m.Payload))
		return
	}
	if err := s.Redo(cmd.Path); err != nil {
		s.logger.Error("redo command failed", "path", cmd.Path, "err", err)
	}
}

// OnChange subscribes h to the detailed change topic for path.
func (s *Store[S]) OnChange(path string, h bus.Handler) bus.Subscription {
	return s.bus.Subscribe(topic.StateChanged.Of(path), h)
}

// OnRefresh subscribes h to the payload-free refresh topic for path.
func (s *Store[S]) OnRefresh(path string, h bus.Handler) bus.Subscription {
	return s.bus.Subscribe(topic.StateUpdated.Of(path), h)
}

// OnListAdd subscribes h to the sequence-append topic for path.
func (s *Store[S]) OnListAdd(path string, h bus.Handler) bus.Subscription {
	return s.bus.Subscribe(topic.ListAdded.Of(path), h)
}

// OnDictAdd subscribes h to the mapping-insert topic for path.
func (s *Store[S]) OnDictAdd(path string, h bus.Handler) bus.Subscription {
	return s.bus.Subscribe(topic.DictAdded.Of(path), h)
}

// OnUndoStatus subscribes h to history status reports for path.
func (s *Store[S]) OnUndoStatus(path string, h bus.Handler) bus.Subscription {
	return s.bus.Subscribe(topic.UndoStatus.Of(path), h)
}
