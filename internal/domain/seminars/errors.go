package seminars

import "errors"

var (
	ErrSeminarNotFound = errors.New("seminar not found")
	ErrNameRequired    = errors.New("seminar name is required")
	ErrNameTooLong     = errors.New("seminar name is too long")
	ErrNameTaken       = errors.New("seminar name already exists")
	ErrLocationTooLong = errors.New("seminar location is too long")
)
