package schema

// CoreChapterPageTable represents the 'core.chapterpage' side table.
//
// It stores one row per page for chapters whose page list is not embedded
// inline on the chapter row itself.
type CoreChapterPageTable struct {
	Table      string
	ID         string
	ChapterID  string
	PageNumber string
	PageURL    string
}

// CoreChapterPage is the schema definition for core.chapterpage
var CoreChapterPage = CoreChapterPageTable{
	Table:      "core.chapterpage",
	ID:         "id",
	ChapterID:  "chapterid",
	PageNumber: "pagenumber",
	PageURL:    "pageurl",
}

func (t CoreChapterPageTable) Columns() []string {
	return []string{t.ID, t.ChapterID, t.PageNumber, t.PageURL}
}
