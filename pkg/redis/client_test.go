package redis

import (
	"testing"

	"github.com/prylogi/logi-backend/pkg/config"
)

func TestOptionsFromConfigURL(t *testing.T) {
	t.Parallel()

	cfg := config.RedisConfig{
		URL:      "redis://:pass@localhost:6380/2",
		PoolSize: 15,
	}
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6380" {
		t.Fatalf("addr = %q", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("db = %d", opts.DB)
	}
	if opts.PoolSize != 15 {
		t.Fatalf("pool size = %d", opts.PoolSize)
	}
}

func TestOptionsFromConfigAddressFallback(t *testing.T) {
	t.Parallel()

	cfg := config.RedisConfig{
		Address:  "redis.internal:6379",
		Password: "hunter2",
		DB:       1,
	}
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "redis.internal:6379" {
		t.Fatalf("addr = %q", opts.Addr)
	}
	if opts.Password != "hunter2" {
		t.Fatalf("password = %q", opts.Password)
	}
}

func TestOptionsFromConfigMissing(t *testing.T) {
	t.Parallel()

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when url and address are empty")
	}
}

func TestLockKey(t *testing.T) {
	t.Parallel()

	c := &Client{}
	if got := c.LockKey("cron-worker"); got != "logi:lock:cron-worker" {
		t.Fatalf("lock key = %q", got)
	}
}
