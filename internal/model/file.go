package model

// StoredFile describes an object written by an idempotent upload.
// Created is false when an object with the same content already existed.
type StoredFile struct {
	Path        string          `json:"path"`
	URL         string          `json:"url"`
	Hash        string          `json:"hash"`
	Size        int64           `json:"size"`
	ContentType string          `json:"content_type"`
	Purpose     DocumentPurpose `json:"purpose"`
	Created     bool            `json:"created"`
}

// Document returns the metadata reference to the stored file.
func (f StoredFile) Document() Document {
	return Document{URL: f.URL, Path: f.Path, Hash: f.Hash}
}
