// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"sort"
	"strings"

	"github.com/jcodagnone/prospecta/utils/textutils"
)

// duplicateDistanceMeters is how close two candidates must be to count as the
// same physical place even when their names differ.
const duplicateDistanceMeters = 100

// MergeDedup folds the candidates of one term into a unique, ordered list.
// Two candidates are the same place when their names match case-insensitively
// or they sit within 100m of each other; the first occurrence wins, so the
// provider priority is whatever order the caller concatenated the slices in.
func MergeDedup(candidates []Candidate) []Candidate {
	unique := make([]Candidate, 0, len(candidates))

	for _, candidate := range candidates {
		if !containsDuplicate(unique, candidate) {
			unique = append(unique, candidate)
		}
	}

	sort.SliceStable(unique, func(i, j int) bool {
		pi, pj := candidatePriority(unique[i]), candidatePriority(unique[j])
		if pi != pj {
			return pi < pj
		}

		return unique[i].Name < unique[j].Name
	})

	return unique
}

func containsDuplicate(unique []Candidate, candidate Candidate) bool {
	for i := range unique {
		if strings.EqualFold(unique[i].Name, candidate.Name) {
			return true
		}

		if unique[i].Point.HaversineDistance(&candidate.Point) < duplicateDistanceMeters {
			return true
		}
	}

	return false
}

// candidatePriority buckets candidates so the most promising prospects come
// first: schools and gyms, then hotels and clubs, then everything else.
func candidatePriority(c Candidate) int {
	folded := textutils.LowerASCIIFolding(c.Name)

	switch {
	case strings.Contains(folded, "escola") || strings.Contains(folded, "academia"):
		return 1
	case strings.Contains(folded, "hotel") || strings.Contains(folded, "clube"):
		return 2
	default:
		return 3
	}
}
