package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// shapedTree draws mappings that always agree on the kind of value under a
// key, so leaf-level properties can be compared across sources.
func shapedTree() *rapid.Generator[map[string]any] {
	return rapid.Custom(func(rt *rapid.T) map[string]any {
		tree := make(map[string]any)

		for _, key := range []string{"a", "b", "c"} {
			if rapid.Bool().Draw(rt, "has_"+key) {
				tree[key] = rapid.Int64Range(-100, 100).Draw(rt, key)
			}
		}

		if rapid.Bool().Draw(rt, "has_nested") {
			nested := make(map[string]any)

			for _, key := range []string{"x", "y"} {
				if rapid.Bool().Draw(rt, "has_n"+key) {
					nested[key] = rapid.StringMatching(`[a-z]{1,4}`).Draw(rt, "n"+key)
				}
			}

			tree["n"] = nested
		}

		if rapid.Bool().Draw(rt, "has_list") {
			tree["list"] = []any{rapid.Int64().Draw(rt, "item")}
		}

		return tree
	})
}

func drawTrees(rt *rapid.T) []any {
	maps := rapid.SliceOfN(shapedTree(), 1, 5).Draw(rt, "trees")

	trees := make([]any, len(maps))
	for i, tree := range maps {
		trees[i] = tree
	}

	return trees
}

func TestProperty_MergeIsPairwiseReduction(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		trees := drawTrees(rt)

		for _, strategy := range []Strategy{LastWins, FirstWins} {
			expected := trees[0]
			for _, tree := range trees[1:] {
				expected = MergePair(expected, tree, strategy)
			}

			assert.Equal(rt, expected, Merge(trees, strategy))
		}
	})
}

func TestProperty_EmptyMappingIsNeutral(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		tree := shapedTree().Draw(rt, "tree")

		assert.Equal(rt, tree, Merge([]any{tree}, LastWins))
		assert.Equal(rt, tree, Merge([]any{map[string]any{}, tree}, LastWins))
		assert.Equal(rt, tree, Merge([]any{tree, map[string]any{}}, LastWins))
		assert.Equal(rt, tree, Merge([]any{tree, map[string]any{}}, FirstWins))
	})
}

func TestProperty_LastWinsIsAssociative(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		a := shapedTree().Draw(rt, "a")
		b := shapedTree().Draw(rt, "b")
		c := shapedTree().Draw(rt, "c")

		left := MergePair(MergePair(a, b, LastWins), c, LastWins)
		right := MergePair(a, MergePair(b, c, LastWins), LastWins)

		assert.Equal(rt, left, right)
	})
}

func TestProperty_OriginsAgreeWithMerge(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		trees := drawTrees(rt)

		entries := make([]SourceEntry, len(trees))
		for i := range trees {
			entries[i] = SourceEntry{Index: i, LoaderType: "json"}
		}

		for _, strategy := range []Strategy{LastWins, FirstWins} {
			merged := Merge(trees, strategy)

			for _, origin := range FieldOrigins(trees, entries, strategy) {
				value, ok := Lookup(merged, SplitPath(origin.Key))
				if assert.True(rt, ok, origin.Key) {
					assert.Equal(rt, value, origin.Value, origin.Key)
				}

				winner, ok := Lookup(trees[origin.SourceIndex], SplitPath(origin.Key))
				if assert.True(rt, ok, origin.Key) {
					assert.Equal(rt, winner, origin.Value, origin.Key)
				}
			}
		}
	})
}
