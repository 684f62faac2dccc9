package utils

import (
	"context"
	"testing"
	"time"
)

func TestSeedLockScriptsCompile(t *testing.T) {
	// Compile-time smoke test: scripts should be initialized.
	if seedLockAcquireScript == nil || seedLockReleaseScript == nil {
		t.Fatalf("expected scripts to be initialized")
	}
}

func TestAcquireSeedLock_InputValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := AcquireSeedLock(ctx, nil, "seed:1", time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if err := ReleaseSeedLock(ctx, nil, "seed:1"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
