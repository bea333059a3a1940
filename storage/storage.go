package storage

import "io"

// FileInfo is the metadata recorded for a stored document.
type FileInfo struct {
	ID       string
	Name     string
	Size     int64
	MimeType string
	Path     string // storage-relative path
}

// Storage abstracts where uploaded documents live. The only implementation
// today is the local filesystem, but the service layer never assumes that.
type Storage interface {
	Save(reader io.Reader, filename string) (FileInfo, error)
	Get(path string) (io.ReadCloser, error)
	Delete(path string) error
	Exists(path string) (bool, error)
}
