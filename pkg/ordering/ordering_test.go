package ordering

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReorder(t *testing.T) {
	tests := []struct {
		name    string
		current []uint
		moves   []Move
		want    []uint
	}{
		{
			name:    "No moves",
			current: []uint{1, 2, 3},
			moves:   nil,
			want:    []uint{1, 2, 3},
		},
		{
			name:    "No-op move keeps order",
			current: []uint{1, 2, 3},
			moves:   []Move{{ID: 2, Position: 1}},
			want:    []uint{1, 2, 3},
		},
		{
			name:    "Move to front",
			current: []uint{1, 2, 3, 4},
			moves:   []Move{{ID: 3, Position: 0}},
			want:    []uint{3, 1, 2, 4},
		},
		{
			name:    "Move to back",
			current: []uint{1, 2, 3, 4},
			moves:   []Move{{ID: 1, Position: 3}},
			want:    []uint{2, 3, 4, 1},
		},
		{
			name:    "Negative target clamps to front",
			current: []uint{1, 2, 3},
			moves:   []Move{{ID: 3, Position: -5}},
			want:    []uint{3, 1, 2},
		},
		{
			name:    "Overflowing target clamps to back",
			current: []uint{1, 2, 3},
			moves:   []Move{{ID: 1, Position: 99}},
			want:    []uint{2, 3, 1},
		},
		{
			name:    "Sequential moves apply in order",
			current: []uint{1, 2, 3, 4},
			moves:   []Move{{ID: 4, Position: 0}, {ID: 2, Position: 3}},
			want:    []uint{4, 1, 3, 2},
		},
		{
			name:    "Swap neighbours",
			current: []uint{1, 2},
			moves:   []Move{{ID: 2, Position: 0}},
			want:    []uint{2, 1},
		},
		{
			name:    "Single member group",
			current: []uint{7},
			moves:   []Move{{ID: 7, Position: 4}},
			want:    []uint{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reorder(tt.current, tt.moves)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReorder_ResultIsAlwaysPermutation(t *testing.T) {
	current := []uint{10, 20, 30, 40, 50}
	moves := []Move{
		{ID: 50, Position: 0},
		{ID: 10, Position: 4},
		{ID: 30, Position: -1},
		{ID: 20, Position: 100},
	}

	got, err := Reorder(current, moves)
	require.NoError(t, err)
	require.Len(t, got, len(current))

	seen := make(map[uint]bool, len(got))
	for _, id := range got {
		seen[id] = true
	}
	for _, id := range current {
		assert.True(t, seen[id], "id %d missing from result", id)
	}
}

func TestReorder_UnknownIDs(t *testing.T) {
	current := []uint{1, 2, 3}
	moves := []Move{
		{ID: 9, Position: 0},
		{ID: 2, Position: 1},
		{ID: 8, Position: 2},
	}

	got, err := Reorder(current, moves)
	assert.Nil(t, got)

	var unknownErr *UnknownIDsError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, []uint{8, 9}, unknownErr.IDs)
}

func TestReorder_DoesNotMutateInput(t *testing.T) {
	current := []uint{1, 2, 3}
	_, err := Reorder(current, []Move{{ID: 3, Position: 0}})
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3}, current)
}

func TestNextRank(t *testing.T) {
	assert.Equal(t, 0, NextRank(nil))

	max := 0
	assert.Equal(t, 1, NextRank(&max))

	max = 41
	assert.Equal(t, 42, NextRank(&max))
}
