package filestorage

import (
	"mime/multipart"
)

// Subdirectories for the two image kinds the API accepts
const (
	PathAvatars = "avatars"
	PathSelfies = "selfies"
)

// StoredFile describes a file after it has been written to storage
type StoredFile struct {
	Path     string // Path under the storage root, as stored in the database
	URL      string // Accessible URL for clients
	Filename string // Original filename
	FileSize int64  // Size in bytes
	MimeType string // MIME type reported by the upload
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFile stores an upload under the given subdirectory
	SaveFile(fileHeader *multipart.FileHeader, subPath string) (*StoredFile, error)

	// DeleteFile removes a stored file. Deleting a missing file is not an
	// error; compensating deletes may run after a partial failure.
	DeleteFile(filePath string) error

	// FullPath returns the filesystem path for a stored file path
	FullPath(filePath string) string
}
