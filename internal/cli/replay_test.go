package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vavavavavavavavava/pubsubtk/journal"
	"github.com/vavavavavavavavava/pubsubtk/store"
)

func seedJournal(t *testing.T, mutations []store.Mutation) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := journal.Open(path)
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	for _, m := range mutations {
		require.NoError(t, j.Append(ctx, m))
	}
	return path
}

func TestReplayFoldsJournal(t *testing.T) {
	dbPath := seedJournal(t, []store.Mutation{
		{Op: store.OpUpdate, Path: "user.name", Value: "alice"},
		{Op: store.OpListAdd, Path: "tags", Value: "admin", Index: 0},
		{Op: store.OpUpdate, Path: "count", Value: 5},
	})

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"alice"`)
	assert.Contains(t, buf.String(), `"count": 5`)
}

func TestReplayJSONFormat(t *testing.T) {
	dbPath := seedJournal(t, []store.Mutation{
		{Op: store.OpUpdate, Path: "count", Value: 5},
	})

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), data["mutations"])
}

func TestReplayWithBaseSnapshot(t *testing.T) {
	dbPath := seedJournal(t, []store.Mutation{
		{Op: store.OpUpdate, Path: "count", Value: 9},
	})
	basePath := writeFile(t, t.TempDir(), "base.json", `{"name": "keep", "count": 1}`)

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--base", basePath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"keep"`)
	assert.Contains(t, buf.String(), `"count": 9`)
}

func TestReplayMissingDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "nope.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLogListsMutations(t *testing.T) {
	dbPath := seedJournal(t, []store.Mutation{
		{Op: store.OpUpdate, Path: "user.name", Value: "alice"},
		{Op: store.OpDictAdd, Path: "counts", Key: "clicks", Value: 3},
	})

	buf := &bytes.Buffer{}
	cmd := NewLogCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "user.name")
	assert.Contains(t, buf.String(), "counts[clicks]")
}

func TestLogEmptyJournal(t *testing.T) {
	dbPath := seedJournal(t, nil)

	buf := &bytes.Buffer{}
	cmd := NewLogCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "empty")
}

func TestLogJSONFormat(t *testing.T) {
	dbPath := seedJournal(t, []store.Mutation{
		{Op: store.OpUpdate, Path: "count", Value: 5},
	})

	buf := &bytes.Buffer{}
	cmd := NewLogCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	entries, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)
}
