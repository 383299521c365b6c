package merge

// Merge folds values left to right with MergePair.
//
// RaiseOnConflict is not a reduction of its own: callers gate it with
// DetectConflicts and the values then combine as LastWins.
// An empty input yields an empty mapping.
func Merge(values []any, strategy Strategy) any {
	if len(values) == 0 {
		return map[string]any{}
	}

	result := values[0]
	for _, value := range values[1:] {
		result = MergePair(result, value, strategy)
	}

	return result
}

// MergePair merges override into base.
//
// Two mappings merge key by key into a new mapping; base is never mutated.
// In every other case (lists, scalars, mapping against scalar) one operand
// is returned whole: override for LastWins, base for FirstWins.
func MergePair(base, override any, strategy Strategy) any {
	baseMap, baseIsMap := base.(map[string]any)
	overrideMap, overrideIsMap := override.(map[string]any)

	if !baseIsMap || !overrideIsMap {
		if strategy == FirstWins {
			return base
		}

		return override
	}

	result := make(map[string]any, len(baseMap)+len(overrideMap))
	for key, value := range baseMap {
		result[key] = value
	}

	for key, value := range overrideMap {
		existing, ok := result[key]
		if !ok {
			result[key] = value

			continue
		}

		result[key] = MergePair(existing, value, strategy)
	}

	return result
}
