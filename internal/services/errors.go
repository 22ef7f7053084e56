package services

import (
	"errors"

	"github.com/synesthesie/augment/pkg/validation"
)

var (
	// ErrInputAccess: the collection file is missing or unreadable.
	ErrInputAccess = errors.New("collection not readable")
	// ErrParse: the collection is not a JSON array of objects.
	ErrParse = errors.New("collection not parseable")
	// ErrOutputAccess: the collection or its backup could not be written.
	ErrOutputAccess = errors.New("collection not writable")

	ErrQuotaKeyMismatch = errors.New("quota key sets differ")
	ErrUnknownEraBucket = errors.New("unknown era bucket")
	ErrUnknownMode      = errors.New("unknown mode")
	ErrLocked           = errors.New("collection is locked by another run")
	ErrBackupUpload     = errors.New("backup upload failed")

	ErrInvalidRecord = validation.ErrInvalidRecord
)
