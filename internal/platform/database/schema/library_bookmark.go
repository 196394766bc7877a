package schema

// LibraryBookmarkTable represents the 'library.bookmark' table
type LibraryBookmarkTable struct {
	Table         string
	UserID        string
	MangaID       string
	ChapterID     string
	ChapterNumber string
	PageNumber    string
	UpdatedAt     string
}

// LibraryBookmark is the schema definition for library.bookmark
var LibraryBookmark = LibraryBookmarkTable{
	Table:         "library.bookmark",
	UserID:        "userid",
	MangaID:       "mangaid",
	ChapterID:     "chapterid",
	ChapterNumber: "chapternumber",
	PageNumber:    "pagenumber",
	UpdatedAt:     "updatedat",
}

// Columns returns all standard column names
func (t LibraryBookmarkTable) Columns() []string {
	return []string{t.UserID, t.MangaID, t.ChapterID, t.ChapterNumber, t.PageNumber, t.UpdatedAt}
}
