package process

import (
	"context"
	"fmt"
	"time"
)

// Source kinds accepted by Open
const (
	KindPS     = "ps"
	KindNative = "native"
)

// Open constructs a source by kind
// Callers should close the result when it implements io.Closer
func Open(ctx context.Context, kind string, timeout time.Duration) (Source, error) {
	switch kind {
	case KindPS, "":
		return NewPSSource(ctx, timeout)
	case KindNative:
		return NewNativeSource(), nil
	default:
		return nil, fmt.Errorf("unknown process source %q", kind)
	}
}
