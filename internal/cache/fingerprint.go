package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/quillworks/preflight/internal/hook"
)

// Fingerprint derives the cache key for one hook run: the hook's identity and
// command, the content of its tool config file, and the size and mtime of
// every file matched by its glob. Any change to those inputs yields a new
// key, so a cached result is only reused while the inputs that produced it
// are unchanged.
func Fingerprint(dir string, def hook.Definition) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "id=%s\n", def.ID)
	fmt.Fprintf(h, "command=%s\n", def.Command)
	fmt.Fprintf(h, "stage=%s\n", def.Stage)

	if def.ConfigPath != "" {
		if err := hashConfigFile(h, dir, def.ConfigPath); err != nil {
			return "", err
		}
	}

	if def.Files != "" {
		if err := hashMatchedFiles(h, dir, def.Files); err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashConfigFile mixes the tool config file content into the fingerprint.
// A missing file hashes as a distinct marker rather than failing: hooks may
// legitimately point at a config that does not exist yet.
func hashConfigFile(w io.Writer, dir, configPath string) error {
	path := configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(w, "config=absent\n")
		return nil
	}
	if err != nil {
		return fmt.Errorf("fingerprint config %s: %w", configPath, err)
	}
	defer f.Close()

	fmt.Fprintf(w, "config=")
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("fingerprint config %s: %w", configPath, err)
	}
	fmt.Fprintln(w)
	return nil
}

// hashMatchedFiles mixes the identity, size, and mtime of each glob match
// into the fingerprint. Matches are sorted so the key is order-independent.
func hashMatchedFiles(w io.Writer, dir, pattern string) error {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return fmt.Errorf("fingerprint glob %s: %w", pattern, err)
	}
	sort.Strings(matches)

	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			// Raced deletions and directories do not contribute.
			continue
		}
		rel, err := filepath.Rel(dir, m)
		if err != nil {
			rel = m
		}
		fmt.Fprintf(w, "file=%s size=%d mtime=%d\n", rel, info.Size(), info.ModTime().UnixNano())
	}
	return nil
}
