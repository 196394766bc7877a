package schema

// CoreMangaTable represents the 'core.manga' table
type CoreMangaTable struct {
	Table          string
	ID             string
	Title          string
	Slug           string
	Status         string
	ApprovalStatus string
	ChapterCount   string
	CoverURL       string
	Description    string
	CreatedAt      string
	UpdatedAt      string
	DeletedAt      string
}

// CoreManga is the schema definition for core.manga
var CoreManga = CoreMangaTable{
	Table:          "core.manga",
	ID:             "id",
	Title:          "title",
	Slug:           "slug",
	Status:         "status",
	ApprovalStatus: "approvalstatus",
	ChapterCount:   "chaptercount",
	CoverURL:       "coverurl",
	Description:    "description",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
	DeletedAt:      "deletedat",
}

// Columns returns all standard column names
func (t CoreMangaTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Status, t.ApprovalStatus, t.ChapterCount,
		t.CoverURL, t.Description, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
