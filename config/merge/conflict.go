package merge

// Contribution is one source's value for a conflicting path.
type Contribution struct {
	Source int
	Value  any
}

// Conflict is a path set by two or more sources at a terminal position.
type Conflict struct {
	Path    []string
	Sources []Contribution
}

type indexedTree struct {
	source int
	tree   map[string]any
}

// DetectConflicts walks the union of keys across values. A key present in at
// least two sources is descended into when every contribution is a mapping
// and reported otherwise. Equal values still conflict: the scan is based on
// presence, not equality. Keys present in one source never conflict.
func DetectConflicts(values []any) []Conflict {
	trees := make([]indexedTree, 0, len(values))

	for index, value := range values {
		node, ok := value.(map[string]any)
		if !ok {
			continue
		}

		trees = append(trees, indexedTree{source: index, tree: node})
	}

	var conflicts []Conflict

	collectConflicts(trees, nil, &conflicts)

	return conflicts
}

func collectConflicts(trees []indexedTree, parent []string, conflicts *[]Conflict) {
	union := make(map[string]any)
	for _, entry := range trees {
		for key := range entry.tree {
			union[key] = nil
		}
	}

	for _, key := range SortedKeys(union) {
		var contributions []Contribution

		allMaps := true

		for _, entry := range trees {
			value, ok := entry.tree[key]
			if !ok {
				continue
			}

			if _, isMap := value.(map[string]any); !isMap {
				allMaps = false
			}

			contributions = append(contributions, Contribution{Source: entry.source, Value: value})
		}

		if len(contributions) < 2 {
			continue
		}

		path := append(append([]string(nil), parent...), key)

		if allMaps {
			nested := make([]indexedTree, 0, len(contributions))
			for _, contribution := range contributions {
				nested = append(nested, indexedTree{
					source: contribution.Source,
					tree:   contribution.Value.(map[string]any), //nolint:forcetypeassert // checked above
				})
			}

			collectConflicts(nested, path, conflicts)

			continue
		}

		*conflicts = append(*conflicts, Conflict{Path: path, Sources: contributions})
	}
}
