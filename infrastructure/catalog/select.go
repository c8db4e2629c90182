package catalog

import (
	"errors"
	"fmt"
	"strings"

	"disk-sweep/domain/cleanup"
)

// Errors for target selection
var (
	ErrTargetNotFound  = errors.New("target not found")
	ErrAmbiguousTarget = errors.New("ambiguous target name")
)

// Lookup finds targets matching query: the full name, or any word of it
// ("npm" matches "NPM Cache"). An exact name match wins over word matches.
// Returns all matches - caller should handle ambiguity
func Lookup(targets []cleanup.Target, query string) ([]cleanup.Target, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, ErrTargetNotFound
	}

	var matches []cleanup.Target
	for _, t := range targets {
		name := strings.ToLower(t.Name())
		if name == query {
			return []cleanup.Target{t}, nil
		}
		for _, word := range strings.Fields(name) {
			if word == query {
				matches = append(matches, t)
				break
			}
		}
	}

	if len(matches) == 0 {
		return nil, ErrTargetNotFound
	}
	return matches, nil
}

// Select restricts targets to those named by queries, keeping catalog order.
// Queries may be comma-separated.
func Select(targets []cleanup.Target, queries []string) ([]cleanup.Target, error) {
	chosen := make(map[cleanup.Target]bool)

	for _, q := range queries {
		for _, query := range strings.Split(q, ",") {
			query = strings.TrimSpace(query)
			if query == "" {
				continue
			}

			matches, err := Lookup(targets, query)
			if err != nil {
				return nil, fmt.Errorf("target %q: %w", query, err)
			}

			if len(matches) > 1 {
				names := make([]string, len(matches))
				for i, m := range matches {
					names[i] = m.Name()
				}
				return nil, fmt.Errorf("%w: %q matches %s - use the full name",
					ErrAmbiguousTarget, query, strings.Join(names, ", "))
			}

			chosen[matches[0]] = true
		}
	}

	if len(chosen) == 0 {
		return nil, ErrTargetNotFound
	}

	selected := make([]cleanup.Target, 0, len(chosen))
	for _, t := range targets {
		if chosen[t] {
			selected = append(selected, t)
		}
	}
	return selected, nil
}
