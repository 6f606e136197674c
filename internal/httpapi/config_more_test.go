package httpapi

import (
	"testing"
	"time"
)

func TestSetMaxBodyBytes_DefaultWhenNonPositive(t *testing.T) {
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB on zero, got %d", maxBodyBytes)
	}
}

func TestSetMaxBodyBytes_PositiveSetsValue(t *testing.T) {
	SetMaxBodyBytes(1234)
	defer SetMaxBodyBytes(0)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
}

func TestSetCallTimeout_NormalizesNegativeToZero(t *testing.T) {
	SetCallTimeout(-5 * time.Second)
	if callTimeout != 0 {
		t.Fatalf("expected 0, got %s", callTimeout)
	}
	SetCallTimeout(3 * time.Second)
	defer SetCallTimeout(0)
	if callTimeout != 3*time.Second {
		t.Fatalf("expected 3s, got %s", callTimeout)
	}
}
