package core

import (
	"errors"
)

var (
	ErrTechniqueNotFound  = errors.New("render technique not found")
	ErrDuplicateTechnique = errors.New("render technique already registered")
	ErrDeviceNotReady     = errors.New("render device not ready")
	ErrInvalidSize        = errors.New("invalid render target size")
	ErrNotAttached        = errors.New("node is not attached to a render host")
	ErrFrameAborted       = errors.New("frame aborted")
	ErrResourceReleased   = errors.New("device resource already released")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrUnknown            = errors.New("unknown")
)
