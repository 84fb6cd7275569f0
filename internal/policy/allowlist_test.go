package policy

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestAllowlist_LoadsInitialContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.yaml")
	writeFile(t, path, "extensions:\n  - permessage-deflate\n")

	a, err := NewAllowlist(path, false)
	if err != nil {
		t.Fatalf("NewAllowlist: %v", err)
	}
	defer a.Close()

	if !a.IsAllowed("permessage-deflate") {
		t.Errorf("expected permessage-deflate to be allowed")
	}
	if a.IsAllowed("permessage-bzip2") {
		t.Errorf("expected permessage-bzip2 to be rejected")
	}
}

func TestAllowlist_Wildcard(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.yaml")
	writeFile(t, path, "extensions:\n  - \"*\"\n")

	a, err := NewAllowlist(path, false)
	if err != nil {
		t.Fatalf("NewAllowlist: %v", err)
	}
	defer a.Close()

	if !a.IsAllowed("anything-at-all") {
		t.Errorf("expected wildcard entry to allow any name")
	}
}

func TestAllowlist_MissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewAllowlist(filepath.Join(dir, "missing.yaml"), false); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestAllowlist_ManualReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.yaml")
	writeFile(t, path, "extensions:\n  - permessage-deflate\n")

	a, err := NewAllowlist(path, false)
	if err != nil {
		t.Fatalf("NewAllowlist: %v", err)
	}
	defer a.Close()

	writeFile(t, path, "extensions:\n  - permessage-bzip2\n")
	if err := a.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if a.IsAllowed("permessage-deflate") {
		t.Errorf("expected permessage-deflate to no longer be allowed")
	}
	if !a.IsAllowed("permessage-bzip2") {
		t.Errorf("expected permessage-bzip2 to now be allowed")
	}
}

func TestAllowlist_WatchedReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.yaml")
	writeFile(t, path, "extensions:\n  - permessage-deflate\n")

	a, err := NewAllowlist(path, true)
	if err != nil {
		t.Fatalf("NewAllowlist: %v", err)
	}
	defer a.Close()

	writeFile(t, path, "extensions:\n  - permessage-bzip2\n")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a.IsAllowed("permessage-bzip2") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("watcher did not pick up the file change in time")
}
