package utils

import (
	"testing"
	"time"
)

func TestNewAPIKeyPoolEmpty(t *testing.T) {
	if pool := NewAPIKeyPool(nil); pool != nil {
		t.Error("expected nil pool for no keys")
	}
}

func TestAPIKeyPoolPrefersLeastUsed(t *testing.T) {
	pool := NewAPIKeyPool([]string{"key-a", "key-b"})

	first, err := pool.Pick()
	if err != nil {
		t.Fatal(err)
	}
	second, err := pool.Pick()
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Errorf("second pick reused %s before the other key was touched", first)
	}
}

func TestAPIKeyPoolCooldown(t *testing.T) {
	pool := NewAPIKeyPool([]string{"key-a", "key-b"})

	pool.MarkFailed("key-a", time.Hour)
	for i := 0; i < 5; i++ {
		key, err := pool.Pick()
		if err != nil {
			t.Fatal(err)
		}
		if key == "key-a" {
			t.Fatal("cooled-down key was handed out")
		}
	}

	pool.MarkFailed("key-b", time.Hour)
	if _, err := pool.Pick(); err == nil {
		t.Error("expected error when every key is cooling down")
	}

	// An expired cooldown returns the key to rotation
	pool.MarkFailed("key-a", -time.Second)
	key, err := pool.Pick()
	if err != nil {
		t.Fatal(err)
	}
	if key != "key-a" {
		t.Errorf("expected key-a back in rotation, got %s", key)
	}
}
