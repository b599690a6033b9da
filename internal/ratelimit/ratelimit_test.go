package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// setupTestRedis creates an in-memory Redis server for testing
func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
		DB:   0,
	})

	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Failed to connect to test Redis: %v", err)
	}

	cleanup := func() {
		redisClient.Close()
		mr.Close()
	}

	return redisClient, cleanup
}

func TestTokenBucket_Allow(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	// Create token bucket with 5 tokens, refill 5 per minute
	bucket := NewTokenBucket(redisClient, 5, 5)

	ctx := context.Background()
	subject := "42"
	action := "roly-poly"

	// Consume tokens up to the limit
	for i := 0; i < 5; i++ {
		allowed, remaining, err := bucket.Allow(ctx, subject, action)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
		if remaining != int64(5-i-1) {
			t.Fatalf("Expected %d remaining after request %d, got %d", 5-i-1, i+1, remaining)
		}
	}

	// The 6th request is denied
	allowed, remaining, err := bucket.Allow(ctx, subject, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("Expected request to be denied after limit reached")
	}
	if remaining != 0 {
		t.Fatalf("Expected 0 remaining tokens, got %d", remaining)
	}
}

func TestTokenBucket_Remaining(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	bucket := NewTokenBucket(redisClient, 10, 10)

	ctx := context.Background()
	subject := "43"
	action := "others"

	// Initially at full capacity, and checking must not consume
	for i := 0; i < 2; i++ {
		remaining, err := bucket.Remaining(ctx, subject, action)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if remaining != 10 {
			t.Fatalf("Expected 10 remaining tokens, got %d", remaining)
		}
	}

	// Consume 3 tokens
	for i := 0; i < 3; i++ {
		bucket.Allow(ctx, subject, action)
	}

	remaining, err := bucket.Remaining(ctx, subject, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if remaining != 7 {
		t.Fatalf("Expected 7 remaining tokens, got %d", remaining)
	}
}

func TestTokenBucket_Reset(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	bucket := NewTokenBucket(redisClient, 5, 5)

	ctx := context.Background()
	subject := "44"
	action := "roly-poly"

	// Consume all tokens
	for i := 0; i < 5; i++ {
		bucket.Allow(ctx, subject, action)
	}

	if err := bucket.Reset(ctx, subject, action); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	remaining, err := bucket.Remaining(ctx, subject, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if remaining != 5 {
		t.Fatalf("Expected 5 remaining tokens after reset, got %d", remaining)
	}
}

func TestTokenBucket_SubjectsAreIndependent(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	bucket := NewTokenBucket(redisClient, 2, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		bucket.Allow(ctx, "45", "roly-poly")
	}

	allowed, _, err := bucket.Allow(ctx, "45", "roly-poly")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("Expected subject 45 to be exhausted")
	}

	allowed, _, err = bucket.Allow(ctx, "46", "roly-poly")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !allowed {
		t.Fatal("Expected subject 46 to still have tokens")
	}
}
