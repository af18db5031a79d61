package services

import (
	"errors"

	"github.com/stwalsh4118/valuator/api/internal/repository"
)

// Service-level errors. Store-level conditions are re-exported from repository.
var (
	ErrDuplicateFileNumber = repository.ErrDuplicateFileNumber
	ErrRecordNotFound      = repository.ErrRecordNotFound
	ErrInvalidCompIndex    = repository.ErrInvalidCompIndex
	ErrUsernameTaken       = repository.ErrUsernameTaken

	ErrInvalidIdentity     = errors.New("invalid identity")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrInvalidSession      = errors.New("invalid session")
)
