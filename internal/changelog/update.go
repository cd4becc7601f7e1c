package changelog

// Update represents one changelog entry: a heading and its formatted bullets
type Update struct {
	Date    string `json:"date"`    // Heading text, used as the dedup key
	Content string `json:"content"` // Newline-delimited bullet text
}

// NewUpdate creates a new Update
func NewUpdate(date, content string) *Update {
	return &Update{
		Date:    date,
		Content: content,
	}
}

// FormatMessage formats an update as a chat message: bold heading, then content
func FormatMessage(u *Update) string {
	return "**" + u.Date + "**\n" + u.Content
}
