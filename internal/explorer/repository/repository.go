package repository

import (
	"context"
	"sort"

	"github.com/marsha5813/crge-historical-database/internal/explorer/model"
)

// EntryRepository is a credentialed view of the two parallel entry tables.
// Implementations make a single bounded attempt per call; failures propagate
// to the caller without retry, and a query matching nothing returns an empty
// slice, not an error.
type EntryRepository interface {
	// ListDistinctValues returns the distinct non-null values of column in
	// table, deduplicated and sorted ascending, prefixed with the sentinel
	// model.All.
	ListDistinctValues(ctx context.Context, table string, column string) ([]string, error)
	// GetEntries returns the rows of table matching filter, ordered ascending
	// by (section_num, entry_num).
	GetEntries(ctx context.Context, table string, filter model.FilterSpec) ([]*model.Entry, error)
}

// toOptionList turns raw column values into the option list shown in the UI:
// deduplicated, sorted ascending, model.All first.
func toOptionList(values []string) []string {
	seen := map[string]bool{}
	distinct := []string{}
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		distinct = append(distinct, v)
	}
	sort.Strings(distinct)
	return append([]string{model.All}, distinct...)
}
