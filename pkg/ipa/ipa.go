// Package ipa extracts the metadata, icon and provisioning profile of an
// iOS application archive.
//
// Extraction results are cached on disk in a folder named after a
// fingerprint of the archive so parsing the same IPA twice only unpacks it
// once.
package ipa

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/blacktop/ipainfo/internal/utils"
	"github.com/blacktop/ipainfo/pkg/plist"
)

const (
	DefaultArchiveTool = "7z"
	DefaultMoveTool    = "mv"
	DefaultRemoveTool  = "rm"
)

// DefaultDecoder is the CgBI PNG normalizer run on icon candidates. ipin.py
// is not shipped with ipainfo and is looked up in the working directory;
// point tools.decoder at an installed copy.
var DefaultDecoder = []string{"python", "ipin.py"}

var decoderCheck sync.Once

// Config is the IPA parser config
type Config struct {
	// CacheRoot is where extraction folders are created (default: ipa-info)
	CacheRoot string
	// StagingRoot holds per-parse staging folders (default: ipa-tmp next to CacheRoot)
	StagingRoot string
	Fingerprint FingerprintMode
	// Cache overrides CacheRoot, StagingRoot and Fingerprint when set
	Cache *Cache

	Runner      Runner
	ArchiveTool string
	MoveTool    string
	RemoveTool  string
	Decoder     []string

	// Options is reserved for future use
	Options map[string]string
}

func (c *Config) withDefaults() *Config {
	conf := Config{}
	if c != nil {
		conf = *c
	}
	if conf.Runner == nil {
		conf.Runner = ExecRunner{}
	}
	if conf.ArchiveTool == "" {
		conf.ArchiveTool = DefaultArchiveTool
	}
	if conf.MoveTool == "" {
		conf.MoveTool = DefaultMoveTool
	}
	if conf.RemoveTool == "" {
		conf.RemoveTool = DefaultRemoveTool
	}
	if len(conf.Decoder) == 0 {
		conf.Decoder = DefaultDecoder
	}
	return &conf
}

type state int

const (
	unparsed state = iota
	parsed
)

func (s state) String() string {
	if s == parsed {
		return "parsed"
	}
	return "unparsed"
}

// Provision is an IPA's decoded embedded.mobileprovision
type Provision struct {
	*plist.ProvisioningProfile
	Raw  map[string]any
	Path string
}

// IPA is a parsed iOS application archive
type IPA struct {
	path    string
	modTime time.Time
	conf    *Config
	cache   *Cache

	state       state
	reused      bool
	fingerprint string
	dir         string

	info      map[string]any
	appInfo   *plist.AppInfo
	icon      *Icon
	provision *Provision
}

// Open parses the IPA at path. Extraction output is reused from the cache
// when possible.
func Open(path string, conf *Config) (*IPA, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("ipa file does not exist: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	conf = conf.withDefaults()

	cache := conf.Cache
	if cache == nil {
		cache, err = NewCache(conf.CacheRoot, conf.StagingRoot, conf.Fingerprint)
		if err != nil {
			return nil, err
		}
	}

	i := &IPA{
		path:    path,
		modTime: fi.ModTime(),
		conf:    conf,
		cache:   cache,
		state:   unparsed,
	}

	if err := i.parse(); err != nil {
		return nil, err
	}

	return i, nil
}

func (i *IPA) parse() error {
	entry, err := i.cache.Resolve(i.path)
	if err != nil {
		return err
	}
	defer entry.Unlock()

	i.fingerprint = entry.Fingerprint
	i.dir = entry.Dir

	switch {
	case entry.Reusable:
		log.WithField("dir", entry.Dir).Debug("Reusing cached extraction")
		i.state = parsed
		i.reused = true
	case entry.Invalidated:
		log.Warnf("Cached extraction %s is missing %s, re-extracting", entry.Dir, InfoPlistName)
		if err := i.conf.Runner.Run(i.conf.RemoveTool, "-rf", entry.Dir); err != nil {
			return &ExtractionError{Op: "invalidate", Err: err}
		}
		if err := i.cache.Prepare(entry); err != nil {
			return err
		}
		i.state = unparsed
	}

	if i.state == unparsed {
		res, err := NewExtractor(i.conf.Runner, i.cache, i.conf.ArchiveTool, i.conf.MoveTool).Extract(i.path, entry.Dir)
		if err != nil {
			return err
		}
		if len(res.IconCandidates) > 0 {
			decoderCheck.Do(func() {
				if err := CheckDecoder(i.conf.Decoder); err != nil {
					log.WithError(err).Warn("App icons cannot be decoded, set tools.decoder in the config")
				}
			})
		}
		if _, ok := SelectIcon(i.conf.Runner, i.conf.Decoder, res.IconCandidates, entry.AppIcon()); !ok {
			utils.Indent(log.Warn, 2)("No app icon available")
		}
		i.state = parsed
	}

	log.WithFields(log.Fields{
		"state":  i.state,
		"reused": i.reused,
	}).Debug("Parsed IPA")

	return i.load(entry)
}

func (i *IPA) load(e *Entry) error {
	data, err := os.ReadFile(e.InfoPlist())
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", e.InfoPlist(), err)
	}
	if i.info, err = plist.Parse(data); err != nil {
		return fmt.Errorf("failed to decode %s: %w", e.InfoPlist(), err)
	}
	if i.appInfo, err = plist.ParseAppInfo(data); err != nil {
		log.WithError(err).Debug("Info.plist does not fit the typed AppInfo view")
	}

	if _, err := os.Stat(e.AppIcon()); err == nil {
		if i.icon, err = LoadIcon(e.AppIcon()); err != nil {
			utils.Indent(log.WithError(err).Warn, 2)("Failed to load app icon")
		}
	}

	i.provision = loadProvision(e.Provision())

	return nil
}

// loadProvision strips the CMS signature wrapped around a provisioning
// profile's plist, writes the bare plist back to path and decodes it
func loadProvision(path string) *Provision {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			utils.Indent(log.WithError(err).Warn, 2)("Failed to read provisioning profile")
		}
		return nil
	}

	start, end, ok := IsolatePlistRegion(data)
	if !ok {
		utils.Indent(log.Debug, 2)("No plist found in provisioning profile")
		return nil
	}
	region := data[start:end]
	if start != 0 || end != len(data) {
		if err := os.WriteFile(path, region, 0o600); err != nil {
			utils.Indent(log.WithError(err).Warn, 2)("Failed to write isolated provisioning profile")
			return nil
		}
	}

	raw, err := plist.Parse(region)
	if err != nil {
		utils.Indent(log.WithError(err).Warn, 2)("Failed to decode provisioning profile")
		return nil
	}
	prof, err := plist.ParseProvisioningProfile(region)
	if err != nil {
		utils.Indent(log.WithError(err).Warn, 2)("Failed to decode provisioning profile")
		return nil
	}

	return &Provision{
		ProvisioningProfile: prof,
		Raw:                 raw,
		Path:                path,
	}
}

// Path returns the archive path
func (i *IPA) Path() string { return i.path }

// ExtractDir returns the cache folder holding the extracted files
func (i *IPA) ExtractDir() string { return i.dir }

// Fingerprint returns the archive's cache key
func (i *IPA) Fingerprint() string { return i.fingerprint }

// Reused reports whether a previous extraction was reused
func (i *IPA) Reused() bool { return i.reused }

// Info returns the decoded Info.plist
func (i *IPA) Info() map[string]any { return i.info }

// AppInfo returns a typed view of Info.plist, or nil if the plist did not fit it
func (i *IPA) AppInfo() *plist.AppInfo { return i.appInfo }

// Icon returns the decoded app icon
func (i *IPA) Icon() (*Icon, bool) { return i.icon, i.icon != nil }

// Provision returns the decoded embedded provisioning profile
func (i *IPA) Provision() (*Provision, bool) { return i.provision, i.provision != nil }

// BasicInfo summarizes Info.plist. It fails with ErrMissingField if the
// bundle identifier, either version or the minimum OS version is missing.
func (i *IPA) BasicInfo() (*BasicInfo, error) {
	var err error

	b := &BasicInfo{
		Date: i.modTime.Format(DateFormat),
	}
	if b.BundleIdentifier, err = requiredString(i.info, "CFBundleIdentifier"); err != nil {
		return nil, err
	}
	if b.VersionName, err = requiredString(i.info, "CFBundleShortVersionString"); err != nil {
		return nil, err
	}
	if b.VersionCode, err = requiredString(i.info, "CFBundleVersion"); err != nil {
		return nil, err
	}
	if b.MinSDK, err = requiredString(i.info, "MinimumOSVersion"); err != nil {
		return nil, err
	}
	b.AppName = optionalString(i.info, "CFBundleDisplayName", "CFBundleName")
	if i.icon != nil {
		b.IconPath = i.icon.Path
	}

	return b, nil
}
