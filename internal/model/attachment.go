package model

import "time"

// Attachment represents a file stored in object storage and linked to a dossier.
// It carries no persistence tags and is shared by the HTTP, service and storage layers.
type Attachment struct {
	ID          string    `json:"id"`
	DossierID   int64     `json:"dossier_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
