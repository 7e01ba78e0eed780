package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRulesWatcher_EmitsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	writeFile(t, path, "categories: {}\n")

	w, err := newRulesWatcher(path, createLogger(false))
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, path, "categories:\n  purpose:\n    - \"quest\"\n")

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("no change event after writing the rules file")
	}
}

func TestRulesWatcher_EmitsOnAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	writeFile(t, path, "categories: {}\n")

	w, err := newRulesWatcher(path, createLogger(false))
	require.NoError(t, err)
	defer w.Close()

	// Editors save by writing a temp file and renaming it over the
	// original. The directory watch has to survive that.
	tmp := filepath.Join(dir, "rules.yaml.tmp")
	writeFile(t, tmp, "urgency: [\"now\"]\n")
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("no change event after replacing the rules file")
	}
}

func TestRulesWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	writeFile(t, path, "categories: {}\n")

	w, err := newRulesWatcher(path, createLogger(false))
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, filepath.Join(dir, "notes.md"), "unrelated\n")

	select {
	case name := <-w.Changed():
		t.Fatalf("unexpected change event for %s", name)
	case <-time.After(300 * time.Millisecond):
	}
}
