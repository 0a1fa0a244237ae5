// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package sliceutil provides small generic slice helpers shared across
// the module. All helpers are pure: input slices are never modified in
// place.
package sliceutil

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Contains reports whether v is an element of xs.
func Contains[T comparable](xs []T, v T) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Partition splits xs into the elements satisfying pred and those that do
// not, preserving relative order.
func Partition[T any](xs []T, pred func(T) bool) (yes, no []T) {
	for _, x := range xs {
		if pred(x) {
			yes = append(yes, x)
		} else {
			no = append(no, x)
		}
	}
	return yes, no
}

// SortedUnique returns a sorted copy of xs with duplicates removed.
func SortedUnique[T constraints.Ordered](xs []T) []T {
	out := slices.Clone(xs)
	slices.Sort(out)
	return slices.Compact(out)
}
