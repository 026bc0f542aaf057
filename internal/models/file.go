package models

import (
	"io"
	"time"

	"github.com/google/uuid"
)

const (
	FileKindImage = "image"
)

// File is the relational record; the bytes live in blob storage under
// ObjectKey. A record exists if and only if its blob does.
type File struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ObjectKey string    `json:"object_key"`
	Kind      string    `json:"kind"`
	AdminID   uuid.UUID `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileUpload carries an incoming multipart file to the file service.
type FileUpload struct {
	Name        string
	Reader      io.Reader
	Size        int64
	ContentType string
}

