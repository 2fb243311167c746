package repository

import (
	"github.com/pkg/errors"
)

const (
	countryCol    = "country"
	periodCol     = "period"
	sectionCol    = "section"
	sectionNumCol = "section_num"
	entryNumCol   = "entry_num"
	entryCol      = "entry"
)

// entryTables is the set of tables a repository will query. Table and column
// names end up in SQL identifiers and request paths, so anything outside
// these sets is rejected before a backend is contacted.
var entryTables = map[string]bool{
	"English":          true,
	"OriginalLanguage": true,
}

// optionColumns are the columns the UI builds filter option lists from.
var optionColumns = map[string]bool{
	countryCol: true,
	periodCol:  true,
	sectionCol: true,
}

func validateTable(table string) error {
	if !entryTables[table] {
		return errors.Errorf("unknown table %q", table)
	}
	return nil
}

func validateOptionColumn(column string) error {
	if !optionColumns[column] {
		return errors.Errorf("column %q cannot be used for filter options", column)
	}
	return nil
}
