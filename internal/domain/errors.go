package domain

import "errors"

// ErrInvalidID is returned when a path or argument does not hold a positive link id
var ErrInvalidID = errors.New("invalid link id")
