package valkey_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Rakshita2/pinpoint/internal/adapters/valkey"
)

func TestNilCacheOperationsFailWithoutPanic(t *testing.T) {
	var c *valkey.Cache
	ctx := context.Background()

	if _, err := c.Get(ctx, "markers:all"); !errors.Is(err, valkey.ErrUnavailable) {
		t.Fatalf("Get on nil cache: got %v, want ErrUnavailable", err)
	}
	if err := c.Set(ctx, "markers:all", []byte("[]"), 30); !errors.Is(err, valkey.ErrUnavailable) {
		t.Fatalf("Set on nil cache: got %v, want ErrUnavailable", err)
	}
	if err := c.Delete(ctx, "markers:all"); !errors.Is(err, valkey.ErrUnavailable) {
		t.Fatalf("Delete on nil cache: got %v, want ErrUnavailable", err)
	}
	c.Close()
}
