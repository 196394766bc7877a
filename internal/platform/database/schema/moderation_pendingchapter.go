package schema

// ModerationPendingChapterTable represents the 'moderation.pendingchapter'
// staging table for chapter submissions awaiting review.
type ModerationPendingChapterTable struct {
	Table         string
	ID            string
	MangaID       string
	ChapterNumber string
	Title         string
	Status        string
	Content       string
	SubmittedBy   string
	CreatedAt     string
	UpdatedAt     string
}

// ModerationPendingChapter is the schema definition for moderation.pendingchapter
var ModerationPendingChapter = ModerationPendingChapterTable{
	Table:         "moderation.pendingchapter",
	ID:            "id",
	MangaID:       "mangaid",
	ChapterNumber: "chapternumber",
	Title:         "title",
	Status:        "status",
	Content:       "content",
	SubmittedBy:   "submittedby",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

func (t ModerationPendingChapterTable) Columns() []string {
	return []string{
		t.ID, t.MangaID, t.ChapterNumber, t.Title, t.Status,
		t.Content, t.SubmittedBy, t.CreatedAt, t.UpdatedAt,
	}
}
