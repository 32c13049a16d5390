// Package config is used to load the configuration file
package config

import (
	"fmt"
	"strings"

	"github.com/blacktop/ipainfo/internal/utils"
	"github.com/blacktop/ipainfo/pkg/ipa"
	"github.com/spf13/viper"
)

type cache struct {
	Root        string `mapstructure:"root"`
	Staging     string `mapstructure:"staging"`
	Fingerprint string `mapstructure:"fingerprint"`
}

type tools struct {
	Archive string   `mapstructure:"archive"`
	Move    string   `mapstructure:"move"`
	Remove  string   `mapstructure:"remove"`
	Decoder []string `mapstructure:"decoder"`
}

// Config is the configuration struct
type Config struct {
	Cache   cache             `mapstructure:"cache"`
	Tools   tools             `mapstructure:"tools"`
	Options map[string]string `mapstructure:"options"`
}

func (c *Config) verify() error {
	if c.Cache.Root == "" {
		c.Cache.Root = ipa.DefaultCacheRoot
	}
	c.Cache.Root = utils.ReplaceWhitespace(strings.TrimSpace(c.Cache.Root))
	if c.Cache.Fingerprint == "" {
		c.Cache.Fingerprint = string(ipa.FingerprintMTime)
	}
	if !ipa.FingerprintMode(c.Cache.Fingerprint).Valid() {
		return fmt.Errorf("config: cache.fingerprint must be '%s' or '%s' (got '%s')",
			ipa.FingerprintMTime, ipa.FingerprintContent, c.Cache.Fingerprint)
	}
	if c.Tools.Archive == "" {
		c.Tools.Archive = ipa.DefaultArchiveTool
	}
	if c.Tools.Move == "" {
		c.Tools.Move = ipa.DefaultMoveTool
	}
	if c.Tools.Remove == "" {
		c.Tools.Remove = ipa.DefaultRemoveTool
	}
	if len(c.Tools.Decoder) == 0 {
		c.Tools.Decoder = ipa.DefaultDecoder
	}
	return nil
}

// IPAConfig converts the config into an ipa parser config
func (c *Config) IPAConfig() *ipa.Config {
	return &ipa.Config{
		CacheRoot:   c.Cache.Root,
		StagingRoot: c.Cache.Staging,
		Fingerprint: ipa.FingerprintMode(c.Cache.Fingerprint),
		ArchiveTool: c.Tools.Archive,
		MoveTool:    c.Tools.Move,
		RemoveTool:  c.Tools.Remove,
		Decoder:     c.Tools.Decoder,
		Options:     c.Options,
	}
}

// LoadConfig loads the configuration file
func LoadConfig() (*Config, error) {
	return Load(viper.GetViper())
}

// Load unmarshals and verifies the config held by v
func Load(v *viper.Viper) (*Config, error) {
	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}

	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}

	return &c, nil
}
