package notes

import "time"

// Separator joins appended fragments.
const Separator = "\n---\n"

// Note is a mutable text document shared by id. Notes do not expire.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
