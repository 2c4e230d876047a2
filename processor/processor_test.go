package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	tornDown bool
}

func (p *fakeProcessor) Teardown() { p.tornDown = true }

func TestRegister_ReturnsGivenName(t *testing.T) {
	r := NewRegistry()

	key := r.Register("CounterProcessor", &fakeProcessor{})
	assert.Equal(t, "CounterProcessor", key)
}

func TestRegister_DuplicateNamesSuffixed(t *testing.T) {
	r := NewRegistry()

	first := r.Register("Counter", &fakeProcessor{})
	second := r.Register("Counter", &fakeProcessor{})
	third := r.Register("Counter", &fakeProcessor{})

	assert.Equal(t, "Counter", first)
	assert.Equal(t, "Counter_1", second)
	assert.Equal(t, "Counter_2", third)
	assert.Equal(t, []string{"Counter", "Counter_1", "Counter_2"}, r.Names())
}

func TestDelete_CallsTeardown(t *testing.T) {
	r := NewRegistry()

	p := &fakeProcessor{}
	r.Register("Counter", p)

	require.NoError(t, r.Delete("Counter"))
	assert.True(t, p.tornDown)

	_, ok := r.Get("Counter")
	assert.False(t, ok)
}

func TestDelete_UnknownNameFailsLoudly(t *testing.T) {
	r := NewRegistry()

	err := r.Delete("Ghost")
	require.Error(t, err)

	var nre *NotRegisteredError
	require.ErrorAs(t, err, &nre)
	assert.Equal(t, "Ghost", nre.Name)
}

func TestTeardownAll(t *testing.T) {
	r := NewRegistry()

	p1 := &fakeProcessor{}
	p2 := &fakeProcessor{}
	r.Register("A", p1)
	r.Register("B", p2)

	r.TeardownAll()
	assert.True(t, p1.tornDown)
	assert.True(t, p2.tornDown)
	assert.Empty(t, r.Names())
}
