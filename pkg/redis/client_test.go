package redis

import (
	"testing"

	"github.com/granduer/granduer-backend/pkg/config"
)

func TestOptionsFromConfigURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:secret@localhost:6380/2"})
	if err != nil {
		t.Fatalf("optionsFromConfig: %v", err)
	}
	if opts.Addr != "localhost:6380" {
		t.Fatalf("addr = %q, want localhost:6380", opts.Addr)
	}
	if opts.Password != "secret" {
		t.Fatalf("password = %q, want secret", opts.Password)
	}
	if opts.DB != 2 {
		t.Fatalf("db = %d, want 2", opts.DB)
	}
}

func TestOptionsFromConfigParts(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{Address: "127.0.0.1:6379", DB: 1, PoolSize: 5})
	if err != nil {
		t.Fatalf("optionsFromConfig: %v", err)
	}
	if opts.Addr != "127.0.0.1:6379" {
		t.Fatalf("addr = %q, want 127.0.0.1:6379", opts.Addr)
	}
	if opts.PoolSize != 5 {
		t.Fatalf("pool size = %d, want 5", opts.PoolSize)
	}
}

func TestOptionsFromConfigMissing(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor addr is set")
	}
}

func TestIdempotencyKey(t *testing.T) {
	got := IdempotencyKey("checkout-verify", "abc123")
	want := "granduer:idempotency:checkout-verify:abc123"
	if got != want {
		t.Fatalf("IdempotencyKey = %q, want %q", got, want)
	}
}
