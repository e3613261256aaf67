package services

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrInvalidDateTime  = errors.New("invalid booking date or time")
	ErrSignatureInvalid = errors.New("invalid webhook signature")
	ErrUpstream         = errors.New("payment provider unavailable")
)

func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
