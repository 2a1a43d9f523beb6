// Package strategy enumerates candidate chunking and concurrency
// configurations for availability querying.
package strategy

import "fmt"

// Strategy is one (chunk size, concurrency) configuration under test.
type Strategy struct {
	Name          string `json:"name"`
	ChunkSizeDays int    `json:"chunkSizeDays"`
	Concurrency   int    `json:"concurrency"`
}

// ChunkCount returns the number of chunks this strategy produces for a
// span of totalDays.
func (s Strategy) ChunkCount(totalDays int) int {
	return (totalDays + s.ChunkSizeDays - 1) / s.ChunkSizeDays
}

// Candidate menus for the default catalog.
var (
	defaultChunkSizes  = []int{1, 2, 3, 5, 7, 10, 14, 21, 30}
	defaultConcurrency = []int{1, 3, 5, 10, 20}
)

// name builds the catalog naming convention "<chunkSize>d-<concurrency>c".
func name(chunkSize, concurrency int) string {
	return fmt.Sprintf("%dd-%dc", chunkSize, concurrency)
}

func newStrategy(chunkSize, concurrency int) Strategy {
	return Strategy{
		Name:          name(chunkSize, concurrency),
		ChunkSizeDays: chunkSize,
		Concurrency:   concurrency,
	}
}

// GenerateDefault returns the full catalog: every chunk size from the fixed
// menu that fits within totalDays, crossed with the fixed concurrency menu.
// Pairings where the concurrency exceeds the number of chunks the pairing
// would produce are excluded, since the extra workers could never be used.
func GenerateDefault(totalDays int) []Strategy {
	var catalog []Strategy
	for _, chunkSize := range defaultChunkSizes {
		if chunkSize > totalDays {
			continue
		}
		chunks := (totalDays + chunkSize - 1) / chunkSize
		for _, concurrency := range defaultConcurrency {
			if concurrency > chunks {
				continue
			}
			catalog = append(catalog, newStrategy(chunkSize, concurrency))
		}
	}
	return catalog
}

// GenerateCapped is the alternative catalog policy: instead of a fixed
// concurrency menu, each chunk size is paired with concurrency levels capped
// at its own chunk count. This probes the maximal-parallelism point for every
// chunk size, which the fixed menu can miss.
func GenerateCapped(totalDays int) []Strategy {
	var catalog []Strategy
	for _, chunkSize := range defaultChunkSizes {
		if chunkSize > totalDays {
			continue
		}
		chunks := (totalDays + chunkSize - 1) / chunkSize
		for _, concurrency := range defaultConcurrency {
			capped := concurrency
			if capped > chunks {
				capped = chunks
			}
			catalog = appendUnique(catalog, newStrategy(chunkSize, capped))
		}
	}
	return catalog
}

// QuickStrategies is a reduced fixed catalog for fast iteration, spanning
// from maximal parallelism (1-day chunks) down to no parallelism at all
// (the whole span as a single chunk).
func QuickStrategies(totalDays int) []Strategy {
	quick := []Strategy{
		newStrategy(1, 20),
		newStrategy(3, 10),
		newStrategy(7, 5),
		newStrategy(14, 2),
		{Name: "whole-span", ChunkSizeDays: totalDays, Concurrency: 1},
	}

	// Keep only strategies that are feasible for the span.
	var catalog []Strategy
	for _, s := range quick {
		if s.ChunkSizeDays > totalDays {
			continue
		}
		if s.Concurrency > s.ChunkCount(totalDays) {
			continue
		}
		catalog = append(catalog, s)
	}
	return catalog
}

func appendUnique(catalog []Strategy, s Strategy) []Strategy {
	for _, existing := range catalog {
		if existing.Name == s.Name {
			return catalog
		}
	}
	return append(catalog, s)
}
