package relmap

import (
	"errors"

	"github.com/relmap/relmap/coerce"
	"github.com/relmap/relmap/schema"
)

var (
	// ErrUnsupportedType model is not a struct, exposes no accessible fields or has none to render
	ErrUnsupportedType = schema.ErrUnsupportedType
	// ErrAccessorInvocation a field accessor was handed a foreign model or failed
	ErrAccessorInvocation = schema.ErrAccessorInvocation
	// ErrInvalidDateFormat date text matches no accepted shape
	ErrInvalidDateFormat = coerce.ErrInvalidDateFormat
	// ErrInvalidNumberFormat number text fails the number literal check
	ErrInvalidNumberFormat = coerce.ErrInvalidNumberFormat
	// ErrModelValueRequired model value required
	ErrModelValueRequired = errors.New("model value required")
)
