package merge

// SourceEntry is a snapshot of one contributing source.
type SourceEntry struct {
	Index      int    `json:"index"`
	FilePath   string `json:"file_path,omitempty"`
	LoaderType string `json:"loader_type"`
	RawData    any    `json:"raw_data"`
}

// FieldOrigin records which source won a leaf of the merged result.
type FieldOrigin struct {
	Key              string `json:"key"`
	Value            any    `json:"value"`
	SourceIndex      int    `json:"source_index"`
	SourceFile       string `json:"source_file,omitempty"`
	SourceLoaderType string `json:"source_loader_type"`
}

type contributors struct {
	first      int
	firstValue any
	last       int
	lastValue  any
}

// FieldOrigins attributes every flattened leaf of trees to a source.
//
// FirstWins credits the earliest contributing source and LastWins (and
// RaiseOnConflict) the latest. The reported value is the winner's, so it
// always agrees with what Merge produced. The result is sorted by key.
// entries must be indexed like trees.
func FieldOrigins(trees []any, entries []SourceEntry, strategy Strategy) []FieldOrigin {
	seen := make(map[string]*contributors)

	for index, tree := range trees {
		for _, leaf := range Flatten(tree) {
			entry, ok := seen[leaf.Key]
			if !ok {
				seen[leaf.Key] = &contributors{
					first:      index,
					firstValue: leaf.Value,
					last:       index,
					lastValue:  leaf.Value,
				}

				continue
			}

			entry.last = index
			entry.lastValue = leaf.Value
		}
	}

	keys := make(map[string]any, len(seen))
	for key := range seen {
		keys[key] = nil
	}

	origins := make([]FieldOrigin, 0, len(seen))

	for _, key := range SortedKeys(keys) {
		entry := seen[key]

		winner, value := entry.last, entry.lastValue
		if strategy == FirstWins {
			winner, value = entry.first, entry.firstValue
		}

		origin := FieldOrigin{
			Key:         key,
			Value:       value,
			SourceIndex: winner,
		}

		if winner < len(entries) {
			origin.SourceFile = entries[winner].FilePath
			origin.SourceLoaderType = entries[winner].LoaderType
		}

		origins = append(origins, origin)
	}

	return origins
}
