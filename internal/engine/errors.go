package engine

import (
	"errors"

	"github.com/tartampluch/go-kairos/internal/config"
)

// Sentinel errors recovered at component boundaries. None of them is fatal:
// the worst outcome is a placeholder row or the default selection.
var (
	ErrInvalidTimezone = errors.New(config.ErrInvalidTimezone)
	ErrDirectoryLoad   = errors.New(config.ErrDirectoryLoad)
	ErrStorageCorrupt  = errors.New(config.ErrStorageCorrupt)
	ErrReferenceCity   = errors.New(config.ErrReferenceCity)
	ErrCityNotFound    = errors.New(config.ErrCityNotFound)
)
