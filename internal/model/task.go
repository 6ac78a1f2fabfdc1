package model

import "time"

// Task is a unit of work inside a dossier. Progress is a percentage in [0,100].
type Task struct {
	ID             int64     `json:"id"`
	DossierID      int64     `json:"dossier_id"`
	Name           string    `json:"name"`
	Progress       int       `json:"progress"`
	AssignedUserID *int64    `json:"assigned_user_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Comment is a note on a task, optionally mentioning a user and optionally private.
type Comment struct {
	ID              int64     `json:"id"`
	TaskID          int64     `json:"task_id"`
	AuthorID        int64     `json:"author_id"`
	Text            string    `json:"text"`
	MentionedUserID *int64    `json:"mentioned_user_id,omitempty"`
	IsPublic        bool      `json:"is_public"`
	CreatedAt       time.Time `json:"created_at"`
}
