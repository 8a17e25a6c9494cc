// Package note provides use cases for the notes users write on articles.
package note

import "errors"

// Sentinel errors for note use case operations.
var (
	// ErrNoteNotFound indicates that the requested note was not found.
	ErrNoteNotFound = errors.New("note not found")

	// ErrInvalidNoteID indicates that the provided note ID is not positive.
	ErrInvalidNoteID = errors.New("invalid note ID")

	// ErrForbidden indicates that the caller does not own the note.
	ErrForbidden = errors.New("note belongs to another user")
)
