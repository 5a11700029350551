package usecase

import "github.com/google/uuid"

type ErrNotFound struct {
	ID      uuid.UUID
	Code    string
	Message string
}

func (e ErrNotFound) Error() string {
	return e.Message
}
