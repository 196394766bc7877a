package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table          string
	ID             string
	MangaID        string
	ChapterNumber  string
	Title          string
	PageURLs       string
	ApprovalStatus string
	PublishedAt    string
	CreatedAt      string
	UpdatedAt      string
	DeletedAt      string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:          "core.chapter",
	ID:             "id",
	MangaID:        "mangaid",
	ChapterNumber:  "chapternumber",
	Title:          "title",
	PageURLs:       "pageurls",
	ApprovalStatus: "approvalstatus",
	PublishedAt:    "publishedat",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
	DeletedAt:      "deletedat",
}

// Columns returns all standard column names
func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.MangaID, t.ChapterNumber, t.Title, t.PageURLs,
		t.ApprovalStatus, t.PublishedAt, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
