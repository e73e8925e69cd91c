package dedup

import (
	"testing"
	"time"
)

func TestDuplicateRejectedWithinTTL(t *testing.T) {
	d := New(time.Minute, 100)
	if !d.ShouldProcess("a") {
		t.Fatal("first sight must pass")
	}
	if d.ShouldProcess("a") {
		t.Fatal("repeat within ttl must be rejected")
	}
	if !d.ShouldProcess("b") {
		t.Fatal("distinct id must pass")
	}
}

func TestExpiredEntryPassesAgain(t *testing.T) {
	d := New(10*time.Millisecond, 100)
	if !d.ShouldProcess("a") {
		t.Fatal("first sight must pass")
	}
	time.Sleep(20 * time.Millisecond)
	if !d.ShouldProcess("a") {
		t.Fatal("expired id must pass again")
	}
}

func TestEmptyIDAlwaysPasses(t *testing.T) {
	d := New(time.Minute, 100)
	if !d.ShouldProcess("") || !d.ShouldProcess("") {
		t.Fatal("empty id carries no identity")
	}
}
