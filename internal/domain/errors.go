package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnknownSource  = errors.New("unknown source")
	ErrSourceInactive = errors.New("source inactive")
	// ErrDuplicateKey signals a unique-constraint violation on
	// (source, external_id); reconciliation falls back to the update path.
	ErrDuplicateKey = errors.New("duplicate key")
)
