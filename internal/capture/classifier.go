// Package capture implements the quick-capture flow: a free-text entry is
// classified as simple or complex and submitted through a single round trip
// that ends with exactly one user-facing notification.
package capture

import (
	"strings"
	"unicode/utf16"
)

const (
	// LongInputThreshold is the length above which an entry is considered long.
	LongInputThreshold = 60

	// MinSubtasks and MaxSubtasks bound the subtask count reported for split entries.
	MinSubtasks = 3
	MaxSubtasks = 6
)

// Classification is the result of classifying a capture entry.
type Classification struct {
	ShouldSplit  bool `json:"should_split"`
	SubtaskCount int  `json:"subtask_count,omitempty"` // zero unless ShouldSplit
}

// Classify decides whether text looks like several items and, only when it
// does, estimates how many subtasks it would break into. It is pure and never
// fails.
//
// The keyword "then" marks an entry as multi-item but does not add to the
// count; only commas and " and " do.
func Classify(text string) Classification {
	lowered := strings.ToLower(text)

	hasMultipleItems := strings.Contains(lowered, ",") ||
		strings.Contains(lowered, " and ") ||
		strings.Contains(lowered, "then")
	isLongInput := textLength(text) > LongInputThreshold

	if !hasMultipleItems && !isLongInput {
		return Classification{}
	}

	count := strings.Count(lowered, ",") + strings.Count(lowered, " and ") + 1
	return Classification{
		ShouldSplit:  true,
		SubtaskCount: clamp(count, MinSubtasks, MaxSubtasks),
	}
}

// textLength counts UTF-16 code units, the unit the capture surface uses for
// string length.
func textLength(text string) int {
	return len(utf16.Encode([]rune(text)))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
