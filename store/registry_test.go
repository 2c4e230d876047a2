package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObtain_SameTypeReturnsIdenticalInstance(t *testing.T) {
	r := NewRegistry()

	s1 := Obtain[testState](r)
	s2 := Obtain[testState](r)
	assert.Same(t, s1, s2)
}

func TestObtain_DistinctTypesGetDistinctStores(t *testing.T) {
	type otherState struct {
		Label string `json:"label"`
	}
	r := NewRegistry()

	s1 := Obtain[testState](r)
	s2 := Obtain[otherState](r)
	assert.NotEqual(t, any(s1), any(s2))
}

func TestObtain_OptionsOnlyApplyOnCreation(t *testing.T) {
	r := NewRegistry()

	s1 := Obtain(r, WithInitialState(seededState()))
	s2 := Obtain(r, WithInitialState(testState{Count: 999}))

	assert.Same(t, s1, s2)
	assert.Equal(t, 5, s2.CurrentState().Count)
}

func TestLookup_OnlyAfterObtain(t *testing.T) {
	r := NewRegistry()

	_, ok := Lookup[testState](r)
	assert.False(t, ok)

	created := Obtain[testState](r)
	found, ok := Lookup[testState](r)
	require.True(t, ok)
	assert.Same(t, created, found)
}

func TestReset_ForgetsStores(t *testing.T) {
	r := NewRegistry()

	s1 := Obtain[testState](r)
	r.Reset()
	s2 := Obtain[testState](r)
	assert.NotSame(t, s1, s2)
}

func TestDefaultRegistry_IsStable(t *testing.T) {
	assert.Same(t, DefaultRegistry(), DefaultRegistry())
}
