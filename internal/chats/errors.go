package chats

import "errors"

var (
	ErrNotFound         = errors.New("chat not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDocumentNotReady = errors.New("document not found or not processed")
)
