package persist

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RemoteHandle returns the stored remote document id, or "".
func (g *Gateway) RemoteHandle(ctx context.Context) (string, error) {
	return g.getString(ctx, KeyRemoteHandle)
}

// SetRemoteHandle stores the remote document id.
func (g *Gateway) SetRemoteHandle(ctx context.Context, handle string) error {
	return g.setString(ctx, KeyRemoteHandle, strings.TrimSpace(handle))
}

// Credential returns the stored bearer token, or "".
func (g *Gateway) Credential(ctx context.Context) (string, error) {
	return g.getString(ctx, KeyCredential)
}

// SetCredential stores the bearer token.
func (g *Gateway) SetCredential(ctx context.Context, token string) error {
	return g.setString(ctx, KeyCredential, strings.TrimSpace(token))
}

// AutoSync reports whether automatic sync is enabled. It defaults to off.
func (g *Gateway) AutoSync(ctx context.Context) (bool, error) {
	v, err := g.getString(ctx, KeyAutoSync)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// SetAutoSync turns automatic sync on or off.
func (g *Gateway) SetAutoSync(ctx context.Context, enabled bool) error {
	v := "false"
	if enabled {
		v = "true"
	}
	return g.setString(ctx, KeyAutoSync, v)
}

// LastSync returns the time of the last successful upload or download.
// ok is false when no sync happened yet or the stored value is unreadable.
func (g *Gateway) LastSync(ctx context.Context) (t time.Time, ok bool, err error) {
	v, err := g.getString(ctx, KeyLastSync)
	if err != nil || v == "" {
		return time.Time{}, false, err
	}
	t, perr := time.Parse(time.RFC3339Nano, v)
	if perr != nil {
		g.logger.Printf("WARNING: ignoring unreadable %s %q", KeyLastSync, v)
		return time.Time{}, false, nil
	}
	return t, true, nil
}

// SetLastSync records the time of a successful sync.
func (g *Gateway) SetLastSync(ctx context.Context, t time.Time) error {
	return g.setString(ctx, KeyLastSync, t.UTC().Format(time.RFC3339Nano))
}

func (g *Gateway) getString(ctx context.Context, key string) (string, error) {
	v, _, err := g.kv.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}

func (g *Gateway) setString(ctx context.Context, key, value string) error {
	if err := g.kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
