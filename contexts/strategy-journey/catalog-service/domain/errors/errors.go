package errors

import "errors"

var (
	ErrPillarNotFound   = errors.New("pillar not found")
	ErrInvalidCatalog   = errors.New("invalid catalog")
	ErrInvalidSessionID = errors.New("invalid session id")
)
