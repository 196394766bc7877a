package schema

// UserPreferencesTable represents the 'users.readingpreference' table
type UserPreferencesTable struct {
	Table        string
	UserID       string
	ReadingMode  string
	PageFit      string
	PreloadPages string
	DataSaver    string
	UpdatedAt    string
}

// UserPreferences is the schema definition for users.readingpreference
var UserPreferences = UserPreferencesTable{
	Table:        "users.readingpreference",
	UserID:       "userid",
	ReadingMode:  "readingmode",
	PageFit:      "pagefit",
	PreloadPages: "preloadpages",
	DataSaver:    "datasaver",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t UserPreferencesTable) Columns() []string {
	return []string{t.UserID, t.ReadingMode, t.PageFit, t.PreloadPages, t.DataSaver, t.UpdatedAt}
}
