// Package ordering implements dense-rank reordering for sortable rows.
//
// Rows belonging to one logical group (an attribute's values, a product
// type's attribute bindings) carry a sort_order that is always a dense
// permutation of 0..n-1. Callers load the group in rank order, compute the
// new sequence in memory with Reorder, and persist it by renumbering every
// member to its index in one batched write.
package ordering

import (
	"fmt"
	"sort"
)

// Move describes one reordering operation: place the entity with ID at
// the given target position. Targets outside [0, n-1] are clamped.
type Move struct {
	ID       uint
	Position int
}

// UnknownIDsError reports move targets that are not members of the group.
type UnknownIDsError struct {
	IDs []uint
}

func (e *UnknownIDsError) Error() string {
	return fmt.Sprintf("ordering: unknown entity ids %v", e.IDs)
}

// Reorder returns a new dense ordering of current after applying moves.
//
// current must hold the group members in their existing rank order. Each
// move removes its entity from the sequence and reinserts it at the target
// position; moves are applied in the order given. The result is always a
// permutation of current, so renumbering by index keeps ranks dense no
// matter what positions the caller supplied.
func Reorder(current []uint, moves []Move) ([]uint, error) {
	index := make(map[uint]int, len(current))
	for i, id := range current {
		index[id] = i
	}

	var unknown []uint
	for _, m := range moves {
		if _, ok := index[m.ID]; !ok {
			unknown = append(unknown, m.ID)
		}
	}
	if len(unknown) > 0 {
		sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
		return nil, &UnknownIDsError{IDs: unknown}
	}

	result := make([]uint, len(current))
	copy(result, current)

	for _, m := range moves {
		from := -1
		for i, id := range result {
			if id == m.ID {
				from = i
				break
			}
		}

		target := m.Position
		if target < 0 {
			target = 0
		}
		if target > len(result)-1 {
			target = len(result) - 1
		}

		if target == from {
			continue
		}

		result = append(result[:from], result[from+1:]...)
		result = append(result[:target], append([]uint{m.ID}, result[target:]...)...)
	}

	return result, nil
}

// NextRank returns the rank for a row appended to a group whose current
// maximum rank is max, or 0 for an empty group (max == nil).
func NextRank(max *int) int {
	if max == nil {
		return 0
	}
	return *max + 1
}
