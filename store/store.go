// Package store is the remote key-value store the node reads commands from
// and writes readings to. Paths are slash separated.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("no value at path")
	ErrType     = errors.New("value has wrong type")
)

// Client reads and writes typed values. The error text is the reason shown in the log.
type Client interface {
	GetBool(ctx context.Context, path string) (bool, error)
	GetInt(ctx context.Context, path string) (int, error)
	SetString(ctx context.Context, path, v string) error
	SetFloat(ctx context.Context, path string, v float64) error
}

// Join builds a store path from its parts, dropping empty parts and stray slashes.
func Join(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, "/")
}
