package server

import (
	"github.com/marsha5813/crge-historical-database/internal/explorer/model"
)

// SectionGroup is one rendered group: a section heading and the entry bodies
// under it, in their incoming order.
type SectionGroup struct {
	Section string
	Entries []string
}

// ResultTable is one language's rendered result set.
type ResultTable struct {
	Label  string
	Groups []*SectionGroup
}

// GroupBySection partitions rows into groups by section, preserving the
// order sections first appear in the input. The input arrives sorted by
// (section_num, entry_num), so group order tracks section_num, not the
// section's name; rows within a group keep their incoming order.
func GroupBySection(rows []*model.Entry) []*SectionGroup {
	var groups []*SectionGroup
	index := map[string]*SectionGroup{}
	for _, row := range rows {
		group, ok := index[row.Section]
		if !ok {
			group = &SectionGroup{Section: row.Section}
			index[row.Section] = group
			groups = append(groups, group)
		}
		group.Entries = append(group.Entries, row.Entry)
	}
	return groups
}

func NewResultTable(label string, rows []*model.Entry) *ResultTable {
	return &ResultTable{Label: label, Groups: GroupBySection(rows)}
}
