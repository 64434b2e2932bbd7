package change

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// push appends a value to a *[]string trace; its inverse pops it.
type push struct {
	value string
	undo  bool
}

func (p push) Apply(state any) error {
	trace, ok := state.(*[]string)
	if !ok {
		return fmt.Errorf("unexpected state %T", state)
	}
	if p.undo {
		n := len(*trace)
		if n == 0 || (*trace)[n-1] != p.value {
			return fmt.Errorf("cannot undo %q", p.value)
		}
		*trace = (*trace)[:n-1]
		return nil
	}
	*trace = append(*trace, p.value)
	return nil
}

func (p push) Invert() Change { return push{value: p.value, undo: !p.undo} }

func (p push) String() string {
	if p.undo {
		return "-" + p.value
	}
	return "+" + p.value
}

func seededLog(values ...string) *Log {
	l := NewLog()
	for _, v := range values {
		l.Append(push{value: v})
	}
	return l
}

func TestLogAppendReturnsPreviousLength(t *testing.T) {
	l := NewLog()
	assert.Equal(t, 0, l.Append(push{value: "a"}))
	assert.Equal(t, 1, l.Append(push{value: "b"}))
	assert.Equal(t, 2, l.Len())
}

func TestLogSlice(t *testing.T) {
	l := seededLog("a", "b", "c", "d")

	got, err := l.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []Change{push{value: "b"}, push{value: "c"}}, got)

	empty, err := l.Slice(4, 4)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLogSliceRejectsInvalidBounds(t *testing.T) {
	l := seededLog("a", "b")

	cases := []struct {
		name   string
		lo, hi int
	}{
		{"inverted", 2, 1},
		{"past end", 0, 3},
		{"negative", -1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.Slice(tc.lo, tc.hi)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRange))
		})
	}
}

func TestLogAt(t *testing.T) {
	l := seededLog("a")
	c, err := l.At(0)
	require.NoError(t, err)
	assert.Equal(t, push{value: "a"}, c)

	_, err = l.At(1)
	assert.ErrorIs(t, err, ErrRange)
}

func TestCompositeAppliesInOrder(t *testing.T) {
	l := seededLog("a", "b", "c")
	changes, err := l.Slice(0, 3)
	require.NoError(t, err)

	var trace []string
	require.NoError(t, l.Compose(changes).Apply(&trace))
	assert.Equal(t, []string{"a", "b", "c"}, trace)
}

func TestCompositeInvertReversesOrder(t *testing.T) {
	l := seededLog("a", "b", "c")
	changes, err := l.Slice(0, 3)
	require.NoError(t, err)
	comp := l.Compose(changes)

	trace := []string{"a", "b", "c"}
	require.NoError(t, comp.Invert().Apply(&trace))
	assert.Empty(t, trace)
	assert.Equal(t, "[-c, -b, -a]", Describe(comp.Invert()))
}

func TestCompositeStopsAtFirstFailure(t *testing.T) {
	comp := NewComposite([]Change{push{value: "a"}, push{value: "x", undo: true}, push{value: "b"}})

	var trace []string
	err := comp.Apply(&trace)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply change 2 of 3")
	assert.Equal(t, []string{"a"}, trace)
}

func TestNewCompositeCopiesInput(t *testing.T) {
	input := []Change{push{value: "a"}}
	comp := NewComposite(input)
	input[0] = push{value: "z"}

	assert.Equal(t, []Change{push{value: "a"}}, comp.Changes())
}

func TestIsNoOp(t *testing.T) {
	assert.True(t, IsNoOp(NoOp))
	assert.True(t, IsNoOp(nil))
	assert.True(t, IsNoOp(NewComposite(nil)))
	assert.False(t, IsNoOp(push{value: "a"}))
	assert.Equal(t, NoOp, NoOp.Invert())
}
