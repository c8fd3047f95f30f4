package main

import (
	"context"
	"os"
	"testing"
)

func TestRunConfigErrors(t *testing.T) {
	ctx := context.Background()
	// Test DBURL="none" exit
	os.Setenv("DATABASE_URL", "none")
	defer os.Unsetenv("DATABASE_URL")
	if err := run(ctx); err != nil {
		t.Errorf("Expected nil for DBURL=none, got %v", err)
	}

	// Test test-exit
	os.Setenv("DATABASE_URL", "postgres://localhost:5432/test")
	os.Setenv("API_ADDR", "test-exit")
	defer os.Unsetenv("DATABASE_URL")
	defer os.Unsetenv("API_ADDR")

	_ = run(ctx)
}

func TestRunRedisConnectionFailure(t *testing.T) {
	ctx := context.Background()
	os.Setenv("DATABASE_URL", "none")
	os.Setenv("REDIS_URL", "invalid.local:6379")
	defer os.Unsetenv("REDIS_URL")
	defer os.Unsetenv("DATABASE_URL")

	err := run(ctx)
	if err == nil {
		t.Error("expected error for invalid redis url")
	}
}

func TestRunFullLifecycle(t *testing.T) {
	// Any value other than "none" keeps run() on the server start/shutdown
	// path; sql.Open does not connect, so no database is needed.
	os.Setenv("DATABASE_URL", "postgres://localhost:5432/test")
	os.Setenv("API_ADDR", ":0") // Use random port for testing
	defer os.Unsetenv("DATABASE_URL")
	defer os.Unsetenv("API_ADDR")

	// Create a cancellable context to gracefully shutdown the app
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the application in a background goroutine
	done := make(chan error, 1)
	go func() {
		done <- run(ctx)
	}()

	// Since we use a cancellable context, we don't need to send SIGINT.
	// Cancel the context explicitly to initiate shutdown.
	cancel()

	err := <-done
	if err != nil {
		t.Errorf("Application failed during full lifecycle run: %v", err)
	}
}
