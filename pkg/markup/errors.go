package markup

import (
	"errors"
	"fmt"

	herrors "github.com/vango-dev/htmlfn/internal/errors"
)

var (
	// ErrArgumentType is wrapped by errors for element arguments of an
	// unsupported type.
	ErrArgumentType = errors.New("markup: unsupported argument type")

	// ErrRenderType is wrapped by errors for values the renderer cannot
	// flatten into text.
	ErrRenderType = errors.New("markup: unrenderable value")
)

func argumentTypeError(v any) error {
	return herrors.New("H001", fmt.Sprintf("%T", v)).Wrap(ErrArgumentType)
}

func renderTypeError(v any) error {
	return herrors.New("H002", fmt.Sprintf("%T", v)).Wrap(ErrRenderType)
}
