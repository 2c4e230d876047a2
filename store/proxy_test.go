package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxy_RoundTrip(t *testing.T) {
	s := newSeededStore(t)

	p, err := s.State().At("user", "profile", "name")
	require.NoError(t, err)
	assert.Equal(t, "user.profile.name", p.String())
}

func TestProxy_ChainedCallsAccumulate(t *testing.T) {
	s := newSeededStore(t)

	u, err := s.State().At("user")
	require.NoError(t, err)
	p, err := u.At("profile")
	require.NoError(t, err)
	assert.Equal(t, "user.profile", p.String())
}

func TestProxy_UnknownSegmentFailsEagerly(t *testing.T) {
	s := newSeededStore(t)

	_, err := s.State().At("user", "nope", "name")
	require.Error(t, err)
	assert.True(t, IsPathNotFound(err))

	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "nope", pe.Segment)
	assert.Equal(t, "user.nope", pe.Path)
}

func TestProxy_ValidatesAgainstLiveState(t *testing.T) {
	s := newSeededStore(t)

	// todos.1 does not exist yet.
	_, err := s.State().At("todos", "1")
	assert.True(t, IsPathNotFound(err))

	require.NoError(t, s.AddToList("todos", testTodo{Title: "second"}))

	p, err := s.State().At("todos", "1")
	require.NoError(t, err)
	assert.Equal(t, "todos.1", p.String())
}

func TestProxy_StringFeedsUpdate(t *testing.T) {
	s := newSeededStore(t)

	p := s.State().MustAt("user", "profile", "age")
	require.NoError(t, s.Update(p.String(), 31))
	assert.Equal(t, 31, s.CurrentState().User.Profile.Age)
}

func TestMustAt_PanicsOnUnknownSegment(t *testing.T) {
	s := newSeededStore(t)

	assert.Panics(t, func() { s.State().MustAt("ghost") })
}

func TestPathOf_JoinsAndValidates(t *testing.T) {
	s := newSeededStore(t)

	path, err := s.PathOf("counts", "clicks")
	require.NoError(t, err)
	assert.Equal(t, "counts.clicks", path)

	_, err = s.PathOf("counts", "missing")
	assert.True(t, IsPathNotFound(err))
}
