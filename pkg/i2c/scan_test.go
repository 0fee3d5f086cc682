package i2c

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const gridWithExpander = `     0  1  2  3  4  5  6  7  8  9  a  b  c  d  e  f
00:          -- -- -- -- -- -- -- -- -- -- -- -- --
10: -- -- -- -- -- -- -- -- -- -- -- UU -- -- -- --
20: -- -- -- -- 24 -- -- -- -- -- -- -- -- -- -- --
30: -- -- -- -- -- -- -- -- -- -- -- -- 3c -- -- --
70: -- -- -- -- -- -- -- --
`

const gridEmpty = `     0  1  2  3  4  5  6  7  8  9  a  b  c  d  e  f
00:          -- -- -- -- -- -- -- -- -- -- -- -- --
10: -- -- -- -- -- -- -- -- -- -- -- -- -- -- -- --
20: -- -- -- -- -- -- -- -- -- -- -- -- -- -- -- --
70: -- -- -- -- -- -- -- --
`

// TestParseAddresses verifies only real address tokens are picked out of
// the grid: no row offsets, no placeholders, no header digits.
func TestParseAddresses(t *testing.T) {
	addrs := ParseAddresses(gridWithExpander)
	want := []string{"24", "3c"}
	if len(addrs) != len(want) {
		t.Fatalf("addresses = %v, want %v", addrs, want)
	}
	for i := range want {
		if addrs[i] != want[i] {
			t.Errorf("addresses[%d] = %q, want %q", i, addrs[i], want[i])
		}
	}
}

// TestFindExpander covers the whitelist match: the display at 0x3c must
// not be mistaken for the expander, and an empty bus yields "not found"
// rather than an error.
func TestFindExpander(t *testing.T) {
	addr, found := FindExpander(gridWithExpander, DefaultCandidates)
	if !found {
		t.Fatal("expected expander at 0x24")
	}
	if addr != "0x24" {
		t.Errorf("addr = %q, want 0x24", addr)
	}

	if _, found := FindExpander(gridEmpty, DefaultCandidates); found {
		t.Error("empty bus must report not found")
	}

	// A grid with only the display responding has no candidate match.
	grid := "30: -- -- -- -- -- -- -- -- -- -- -- -- 3c -- -- --\n"
	if _, found := FindExpander(grid, DefaultCandidates); found {
		t.Error("display address must not match the candidate whitelist")
	}
}

// TestWaitForDeviceExisting returns immediately for a present node.
func TestWaitForDeviceExisting(t *testing.T) {
	dir := t.TempDir()
	node := filepath.Join(dir, "i2c-1")
	if err := os.WriteFile(node, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WaitForDevice(context.Background(), node, time.Second); err != nil {
		t.Fatalf("wait on existing node failed: %v", err)
	}
}

// TestWaitForDeviceAppears verifies the watcher sees a node created
// after the wait starts.
func TestWaitForDeviceAppears(t *testing.T) {
	dir := t.TempDir()
	node := filepath.Join(dir, "i2c-1")

	done := make(chan error, 1)
	go func() {
		done <- WaitForDevice(context.Background(), node, 5*time.Second)
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(node, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := <-done; err != nil {
		t.Fatalf("wait failed: %v", err)
	}
}

// TestWaitForDeviceTimeout verifies the bounded wait expires.
func TestWaitForDeviceTimeout(t *testing.T) {
	node := filepath.Join(t.TempDir(), "i2c-1")
	if err := WaitForDevice(context.Background(), node, 100*time.Millisecond); err == nil {
		t.Error("expected timeout error")
	}
}
