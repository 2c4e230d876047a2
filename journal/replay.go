package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/sjson"

	"github.com/vavavavavavavavava/pubsubtk/store"
)

// Applier is the typed replay target. *store.Store[S] satisfies it for
// any state model S.
type Applier interface {
	ApplyJSONMutation(op store.MutationOp, path, key string, value json.RawMessage) error
}

// Replay applies every journaled mutation to target in seq order and
// returns how many were applied. Replayed mutations go through the
// normal mutation path, so subscribers on the target's bus observe the
// same notifications the original run produced.
//
// Replay stops at the first mutation that fails to apply: a journal that
// no longer matches the model schema is surfaced, not skipped over.
func (j *Journal) Replay(ctx context.Context, target Applier) (int, error) {
	records, err := j.Records(ctx)
	if err != nil {
		return 0, err
	}

	for i, r := range records {
		if err := target.ApplyJSONMutation(r.Op, r.Path, r.Key, r.Value); err != nil {
			return i, fmt.Errorf("replay seq %d: %w", r.Seq, err)
		}
	}
	return len(records), nil
}

// ReplayDocument folds the journal into a plain JSON document without
// needing the state model's Go type: updates set the raw value at the
// path, list adds set it at the recorded index, dict adds at the
// recorded key, and a replace swaps the whole document. base is the
// starting document; pass []byte("{}") for an empty state.
//
// Path segments containing dots are not supported here; the typed Replay
// does not share that limitation.
func (j *Journal) ReplayDocument(ctx context.Context, base []byte) ([]byte, error) {
	records, err := j.Records(ctx)
	if err != nil {
		return nil, err
	}

	doc := base
	for _, r := range records {
		switch r.Op {
		case store.OpUpdate:
			doc, err = sjson.SetRawBytes(doc, r.Path, r.Value)
		case store.OpListAdd:
			doc, err = sjson.SetRawBytes(doc, r.Path+"."+strconv.Itoa(r.Index), r.Value)
		case store.OpDictAdd:
			doc, err = sjson.SetRawBytes(doc, r.Path+"."+r.Key, r.Value)
		case store.OpReplace:
			doc = []byte(r.Value)
		default:
			return nil, fmt.Errorf("replay seq %d: unknown op %q", r.Seq, r.Op)
		}
		if err != nil {
			return nil, fmt.Errorf("replay seq %d: %w", r.Seq, err)
		}
	}
	return doc, nil
}
