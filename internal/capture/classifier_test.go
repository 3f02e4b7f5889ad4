package capture

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestClassifyScenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		split bool
		count int
	}{
		{"short single item", "buy milk", false, 0},
		{"comma separated", "buy milk, walk dog, call mom", true, 3},
		{"and separated", "plan party and buy cake and invite friends", true, 3},
		{"long without delimiters", strings.Repeat("x", 70), true, 3},
		{"exactly sixty chars", strings.Repeat("x", 60), false, 0},
		{"sixty one chars", strings.Repeat("x", 61), true, 3},
		{"then only", "wash car then", true, 3},
		{"then inside a word", "go to athens", true, 3},
		{"four commas", "a, b, c, d, e", true, 5},
		{"many delimiters clamp", "a, b, c, d, e, f, g and h and i", true, 6},
		{"upper case AND", "Eggs AND Bacon", true, 3},
		{"and without spaces", "bandana", false, 0},
		{"empty", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.input)
			if got.ShouldSplit != tt.split {
				t.Errorf("ShouldSplit = %v, want %v", got.ShouldSplit, tt.split)
			}
			if got.SubtaskCount != tt.count {
				t.Errorf("SubtaskCount = %d, want %d", got.SubtaskCount, tt.count)
			}
		})
	}
}

func TestClassifyCountsUTF16Units(t *testing.T) {
	// 31 emoji are 62 UTF-16 code units but only 31 runes.
	input := strings.Repeat("\U0001F600", 31)
	if !Classify(input).ShouldSplit {
		t.Error("expected long emoji input to be split")
	}

	// 60 two-byte runes stay at 60 code units.
	input = strings.Repeat("é", 60)
	if Classify(input).ShouldSplit {
		t.Error("expected 60 accented characters not to be split")
	}
}

func TestClassifyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("split entries report between 3 and 6 subtasks", prop.ForAll(
		func(s string) bool {
			c := Classify(s)
			if !c.ShouldSplit {
				return true
			}
			return c.SubtaskCount >= MinSubtasks && c.SubtaskCount <= MaxSubtasks
		},
		gen.AnyString(),
	))

	properties.Property("entries that are not split carry no subtask count", prop.ForAll(
		func(s string) bool {
			c := Classify(s)
			return c.ShouldSplit || c.SubtaskCount == 0
		},
		gen.AnyString(),
	))

	properties.Property("any comma forces a split", prop.ForAll(
		func(prefix, suffix string) bool {
			return Classify(prefix + "," + suffix).ShouldSplit
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("short entries without delimiters are not split", prop.ForAll(
		func(s string) bool {
			return !Classify(s).ShouldSplit
		},
		gen.RegexMatch(`^[a-df-z]{0,60}$`),
	))

	properties.Property("entries longer than 60 units are split", prop.ForAll(
		func(s string) bool {
			return Classify(s).ShouldSplit
		},
		gen.RegexMatch(`^[a-z]{61,120}$`),
	))

	properties.Property("count follows the number of comma separated items", prop.ForAll(
		func(n int) bool {
			items := make([]string, n)
			for i := range items {
				items[i] = "item"
			}
			want := clamp(n, MinSubtasks, MaxSubtasks)
			return Classify(strings.Join(items, ", ")).SubtaskCount == want
		},
		gen.IntRange(2, 12),
	))

	properties.Property("matching ignores case", prop.ForAll(
		func(s string) bool {
			return Classify(s) == Classify(strings.ToUpper(s))
		},
		gen.RegexMatch(`^[a-zA-Z ,]{0,80}$`),
	))

	properties.Property("then forces a split", prop.ForAll(
		func(s string) bool {
			return Classify(s + "then").ShouldSplit
		},
		gen.RegexMatch(`^[a-z,]{0,40}$`),
	))

	properties.Property("then does not add to the count", prop.ForAll(
		func(s string) bool {
			return Classify(s+", then").SubtaskCount == Classify(s+",").SubtaskCount
		},
		gen.RegexMatch(`^[a-z,]{0,40}$`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
