// Package iconcache turns icon references (remote URLs or local paths) into
// local files the native notifier can render.
package iconcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/llehouerou/gnotifier/internal/errmsg"
)

const (
	// FilePrefix names every file this cache owns.
	FilePrefix = "gnotifier-"

	cacheDirName = "gnotifier"
	partSuffix   = ".part"
)

// Cache is a directory of icon files named FilePrefix + Hash(ref).
type Cache struct {
	dir string
	log zerolog.Logger
}

// NewCache creates the cache directory. An empty dir means
// <os.TempDir()>/gnotifier.
func NewCache(dir string, log zerolog.Logger) (*Cache, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), cacheDirName)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.OpCacheCreate, err)
	}
	return &Cache{dir: dir, log: log}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Hash returns the stable cache key for an icon reference.
func Hash(ref string) string {
	sum := sha256.Sum256([]byte(ref))
	return hex.EncodeToString(sum[:])
}

// PathFor returns where the icon for ref lives once cached.
func (c *Cache) PathFor(ref string) string {
	return filepath.Join(c.dir, FilePrefix+Hash(ref))
}

// LookupLocal reports whether ref already names a local file (a file:// URI
// or an absolute path) and returns that path. The file itself is not checked.
func LookupLocal(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}

	if strings.HasPrefix(strings.ToLower(ref), "file:") {
		u, err := url.Parse(ref)
		if err != nil || !strings.EqualFold(u.Scheme, "file") {
			return "", false
		}
		if u.Host != "" && u.Host != "localhost" {
			return "", false
		}
		p := u.Path
		if p == "" {
			return "", false
		}
		// file:///C:/icons/a.png parses to /C:/icons/a.png
		if runtime.GOOS == "windows" && len(p) >= 3 && p[0] == '/' && p[2] == ':' {
			p = p[1:]
		}
		return filepath.FromSlash(p), true
	}

	if filepath.IsAbs(ref) {
		return ref, true
	}
	return "", false
}

// LookupCached returns the cached file for ref if one exists.
func (c *Cache) LookupCached(ref string) (string, bool) {
	path := c.PathFor(ref)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

// Store copies r into the cache under ref's hash and returns the canonical
// path. The data is written to a uniquely named partial file first and then
// published without replacing an existing entry: when two stores race, the
// first published file wins and both callers get its path.
func (c *Cache) Store(ref string, r io.Reader) (string, error) {
	final := c.PathFor(ref)
	if _, err := os.Stat(final); err == nil {
		return final, nil
	}

	// The directory may have been purged underneath us.
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return "", err
	}

	tmp := final + "." + uuid.NewString() + partSuffix
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}

	n, err := io.Copy(f, r)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return "", fmt.Errorf("write %s: %w", filepath.Base(tmp), err)
	}
	defer os.Remove(tmp) //nolint:errcheck // the published copy is a hard link

	if err := os.Link(tmp, final); err != nil {
		if errors.Is(err, fs.ErrExist) {
			c.log.Debug().Str("path", final).Msg("icon already cached by a concurrent store")
			return final, nil
		}
		// No hard links on this filesystem; rename is still atomic and
		// never exposes a partial file.
		if rerr := os.Rename(tmp, final); rerr != nil {
			return "", fmt.Errorf("publish %s: %w", filepath.Base(final), rerr)
		}
	}

	c.log.Debug().
		Str("path", final).
		Str("size", humanize.Bytes(uint64(n))).
		Msg("icon cached")
	return final, nil
}

// PurgeAll deletes every file owned by the cache, including partial files
// left by interrupted stores. Failures are collected, not fatal.
func (c *Cache) PurgeAll() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), FilePrefix) {
			continue
		}
		err := os.Remove(filepath.Join(c.dir, entry.Name()))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Prune removes cached files older than maxAge and returns how many were
// removed. A non-positive maxAge disables pruning.
func (c *Cache) Prune(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var errs []error

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), FilePrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			err := os.Remove(filepath.Join(c.dir, entry.Name()))
			switch {
			case err == nil:
				removed++
			case !errors.Is(err, fs.ErrNotExist):
				errs = append(errs, err)
			}
		}
	}
	return removed, errors.Join(errs...)
}

// Usage reports the number of cached files and their total size.
func (c *Cache) Usage() (files int, size int64, err error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), FilePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files++
		size += info.Size()
	}
	return files, size, nil
}
