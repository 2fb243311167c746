package model

const (
	TableEnglish          = "English"
	TableOriginalLanguage = "OriginalLanguage"
)

// All is the sentinel option meaning "no constraint on this field".
const All = "All"

// Entry is one bilingual historical-record row. The English and
// OriginalLanguage tables share this shape and are keyed so that ordering by
// (section_num, entry_num) lines the two tables up row for row.
type Entry struct {
	Country    string `db:"country" json:"country"`
	Period     string `db:"period" json:"period"`
	Section    string `db:"section" json:"section"`
	SectionNum int    `db:"section_num" json:"section_num"`
	EntryNum   int    `db:"entry_num" json:"entry_num"`
	Entry      string `db:"entry" json:"entry"`
}

// FilterSpec holds the four user-chosen filter values. Country, Period and
// Section use exact equality unless set to All; Search is a case-insensitive
// substring match against the entry body unless empty. Active predicates are
// ANDed.
type FilterSpec struct {
	Country string
	Period  string
	Section string
	Search  string
}

func (f FilterSpec) CountryActive() bool { return f.Country != "" && f.Country != All }

func (f FilterSpec) PeriodActive() bool { return f.Period != "" && f.Period != All }

func (f FilterSpec) SectionActive() bool { return f.Section != "" && f.Section != All }

func (f FilterSpec) SearchActive() bool { return f.Search != "" }
