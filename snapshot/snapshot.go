// Package snapshot exports and imports store state. A snapshot is the
// model's own serialized form (JSON or YAML); importing one goes through
// whole-model replacement, so the usual per-field broadcast fires.
//
// Snapshots use the same dotted-path addressing as the store itself:
// Query resolves "user.profile.name" against an exported JSON document.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/vavavavavavavavava/pubsubtk/store"
)

// ExportJSON serializes the store's current state as indented JSON.
func ExportJSON[S any](st *store.Store[S]) ([]byte, error) {
	data, err := json.MarshalIndent(st.CurrentState(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	return data, nil
}

// ImportJSON decodes a JSON snapshot into a fresh model instance and
// replaces the store's state with it.
func ImportJSON[S any](st *store.Store[S], data []byte) error {
	var ns S
	if err := json.Unmarshal(data, &ns); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	st.Replace(ns)
	return nil
}

// ExportYAML serializes the store's current state as YAML.
func ExportYAML[S any](st *store.Store[S]) ([]byte, error) {
	data, err := yaml.Marshal(st.CurrentState())
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	return data, nil
}

// ImportYAML decodes a YAML snapshot and replaces the store's state.
func ImportYAML[S any](st *store.Store[S], data []byte) error {
	var ns S
	if err := yaml.Unmarshal(data, &ns); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	st.Replace(ns)
	return nil
}

// Query resolves a dotted path against an exported JSON snapshot and
// returns the match. A path not present in the document is a PathError,
// mirroring live-store resolution.
func Query(data []byte, path string) (gjson.Result, error) {
	if path == "" {
		return gjson.Result{}, &store.PathError{Path: path, Message: "empty path"}
	}
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return gjson.Result{}, &store.PathError{Path: path, Message: "not present in snapshot"}
	}
	return res, nil
}
