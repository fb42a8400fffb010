package executor

import (
	"context"
	"errors"
)

// ErrBinaryNotFound is returned when the requested program is not on PATH.
var ErrBinaryNotFound = errors.New("binary not found")

// Executor runs external programs such as ffmpeg and ffprobe.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
}
