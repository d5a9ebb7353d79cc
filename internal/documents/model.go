package documents

import "time"

// Document represents an uploaded document and its extraction state.
// ExtractedText is only meaningful once IsProcessed is true; a false
// IsProcessed covers both pending and failed extraction.
type Document struct {
	ID            string
	FileName      string
	MimeType      string
	SizeBytes     int64
	StorageKey    string
	ExtractedText string
	IsProcessed   bool
	UploadedAt    time.Time
}
