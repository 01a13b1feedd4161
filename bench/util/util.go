package util

import "sort"

// SortedKeys returns the keys of a count map in ascending order.
func SortedKeys(counts map[int]int) []int {
	keys := make([]int, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	return keys
}
