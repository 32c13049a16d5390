package ipa

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/blacktop/ipainfo/internal/utils"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/twmb/murmur3"
)

const (
	// InfoPlistName is the app's Info.plist, relocated to the top of the cache entry
	InfoPlistName = "Info.plist"
	// ProvisionName is the embedded provisioning profile, relocated to the top of the cache entry
	ProvisionName = "embedded.mobileprovision"
	// AppIconName is the normalized app icon
	AppIconName = "app-icon.png"
	// PayloadDir is the folder holding the .app bundle inside an IPA
	PayloadDir = "Payload"
	// CanonicalBundleName is what the extracted .app bundle is renamed to
	CanonicalBundleName = "extracted.app"

	DefaultCacheRoot   = "ipa-info"
	DefaultStagingRoot = "ipa-tmp"

	dirPerm     = 0o700
	memoSize    = 128
	lockFileExt = ".lock"
)

// FingerprintMode selects how an archive is mapped to its cache directory
type FingerprintMode string

const (
	// FingerprintMTime hashes the archive path and modification time
	FingerprintMTime FingerprintMode = "mtime"
	// FingerprintContent hashes the archive bytes
	FingerprintContent FingerprintMode = "content"
)

// Valid reports whether m is a known fingerprint mode
func (m FingerprintMode) Valid() bool {
	return m == FingerprintMTime || m == FingerprintContent
}

// Cache maps archives to extraction directories under a root folder.
type Cache struct {
	root    string
	staging string
	mode    FingerprintMode

	memo *lru.Cache[string, string]
}

// NewCache creates a cache rooted at root. Whitespace in root is replaced
// with '-'. An empty staging folder defaults to a sibling of root.
func NewCache(root, staging string, mode FingerprintMode) (*Cache, error) {
	if root == "" {
		root = DefaultCacheRoot
	}
	root = utils.ReplaceWhitespace(root)
	if staging == "" {
		staging = filepath.Join(filepath.Dir(root), DefaultStagingRoot)
	}
	if mode == "" {
		mode = FingerprintMTime
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid fingerprint mode '%s' (must be '%s' or '%s')", mode, FingerprintMTime, FingerprintContent)
	}
	memo, err := lru.New[string, string](memoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create fingerprint memo: %w", err)
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create cache root %s: %w", root, err)
	}
	return &Cache{
		root:    root,
		staging: staging,
		mode:    mode,
		memo:    memo,
	}, nil
}

// Root returns the cache root folder
func (c *Cache) Root() string {
	return c.root
}

// Fingerprint returns the cache key for the archive at path
func (c *Cache) Fingerprint(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path of %s: %w", path, err)
	}
	switch c.mode {
	case FingerprintContent:
		key := abs + ":" + strconv.FormatInt(fi.Size(), 10) + ":" + strconv.FormatInt(fi.ModTime().UnixNano(), 10)
		if fp, ok := c.memo.Get(key); ok {
			return fp, nil
		}
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		h := murmur3.New128()
		if _, err := io.Copy(h, f); err != nil {
			return "", fmt.Errorf("failed to hash %s: %w", path, err)
		}
		fp := hex.EncodeToString(h.Sum(nil))
		c.memo.Add(key, fp)
		return fp, nil
	default:
		sum := md5.Sum([]byte(abs + strconv.FormatInt(fi.ModTime().Unix(), 10)))
		return hex.EncodeToString(sum[:]), nil
	}
}

// Entry is a resolved, locked cache directory for one archive.
type Entry struct {
	Fingerprint string
	Dir         string
	// Reusable is set when Dir already holds a complete extraction
	Reusable bool
	// Invalidated is set when Dir exists but is missing its Info.plist;
	// the caller must remove Dir and call Prepare before extracting again.
	Invalidated bool

	lock *flock.Flock
}

func (e *Entry) InfoPlist() string  { return filepath.Join(e.Dir, InfoPlistName) }
func (e *Entry) Provision() string  { return filepath.Join(e.Dir, ProvisionName) }
func (e *Entry) AppIcon() string    { return filepath.Join(e.Dir, AppIconName) }
func (e *Entry) PayloadDir() string { return filepath.Join(e.Dir, PayloadDir) }

// Unlock releases the entry's directory lock
func (e *Entry) Unlock() error {
	if e.lock == nil {
		return nil
	}
	return e.lock.Unlock()
}

// Resolve fingerprints the archive at path, locks its cache directory and
// reports whether a previous extraction can be reused. The returned entry
// must be unlocked by the caller.
func (c *Cache) Resolve(path string) (*Entry, error) {
	fp, err := c.Fingerprint(path)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint %s: %w", path, err)
	}

	lock := flock.New(filepath.Join(c.root, fp+lockFileExt))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("unable to lock %s: %w", lock.Path(), err)
	}

	e := &Entry{
		Fingerprint: fp,
		Dir:         filepath.Join(c.root, fp),
		lock:        lock,
	}

	fi, err := os.Stat(e.Dir)
	switch {
	case err == nil:
		if _, err := os.Stat(e.InfoPlist()); err == nil && fi.IsDir() {
			e.Reusable = true
		} else {
			e.Invalidated = true
		}
	case !errors.Is(err, fs.ErrNotExist):
		lock.Unlock()
		return nil, fmt.Errorf("failed to stat %s: %w", e.Dir, err)
	}

	if !e.Invalidated {
		if err := c.Prepare(e); err != nil {
			lock.Unlock()
			return nil, err
		}
	}

	return e, nil
}

// Prepare creates the entry's directory and the staging root
func (c *Cache) Prepare(e *Entry) error {
	if err := os.MkdirAll(e.Dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create cache dir %s: %w", e.Dir, err)
	}
	if err := os.MkdirAll(c.staging, dirPerm); err != nil {
		return fmt.Errorf("failed to create staging dir %s: %w", c.staging, err)
	}
	e.Invalidated = false
	return nil
}

// Stage creates a staging folder unique to this call. The returned func
// removes it.
func (c *Cache) Stage() (string, func(), error) {
	dir := filepath.Join(c.staging, uuid.NewString())
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", nil, fmt.Errorf("failed to create staging dir %s: %w", dir, err)
	}
	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			log.WithError(err).Warnf("failed to remove staging dir %s", dir)
		}
	}, nil
}

// EntryInfo describes a cache directory on disk
type EntryInfo struct {
	Fingerprint string    `json:"fingerprint"`
	Dir         string    `json:"dir"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	Complete    bool      `json:"complete"`
}

// List returns the cache directories under the root sorted by modification time, newest first
func (c *Cache) List() ([]EntryInfo, error) {
	des, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache root %s: %w", c.root, err)
	}
	var infos []EntryInfo
	for _, de := range des {
		if !de.IsDir() {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(c.root, de.Name())
		size, err := utils.DirSize(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to size %s: %w", dir, err)
		}
		_, err = os.Stat(filepath.Join(dir, InfoPlistName))
		infos = append(infos, EntryInfo{
			Fingerprint: de.Name(),
			Dir:         dir,
			Size:        size,
			ModTime:     fi.ModTime(),
			Complete:    err == nil,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ModTime.After(infos[j].ModTime)
	})
	return infos, nil
}

// Clean removes every cache directory that is not locked by another parse.
// It returns the number of directories removed. Lock files are left in place
// so a parse already waiting on one keeps excluding later ones.
func (c *Cache) Clean() (int, error) {
	infos, err := c.List()
	if err != nil {
		return 0, err
	}
	var removed int
	for _, info := range infos {
		lock := flock.New(filepath.Join(c.root, info.Fingerprint+lockFileExt))
		locked, err := lock.TryLock()
		if err != nil {
			return removed, fmt.Errorf("unable to lock %s: %w", lock.Path(), err)
		}
		if !locked {
			utils.Indent(log.Warn, 2)(fmt.Sprintf("Skipping %s (in use)", info.Dir))
			continue
		}
		if err := os.RemoveAll(info.Dir); err != nil {
			lock.Unlock()
			return removed, fmt.Errorf("failed to remove %s: %w", info.Dir, err)
		}
		lock.Unlock()
		removed++
	}
	return removed, nil
}
