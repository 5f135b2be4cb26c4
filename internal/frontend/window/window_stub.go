//go:build !cgo

package window

import (
	"context"
	"errors"
)

func Run(ctx context.Context, sim Controller, opts Options) error {
	return errors.New("window frontend requires a cgo build")
}
