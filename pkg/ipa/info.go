package ipa

import (
	"fmt"

	"github.com/hashicorp/go-version"
	"github.com/spf13/cast"
)

// DateFormat is the layout of BasicInfo.Date
const DateFormat = "2006-01-02 15:04:05"

// BasicInfo is a flat summary of an IPA's Info.plist
type BasicInfo struct {
	BundleIdentifier string `json:"bundleIndentifier" yaml:"bundleIndentifier"`
	VersionName      string `json:"versionName" yaml:"versionName"`
	VersionCode      string `json:"versionCode" yaml:"versionCode"`
	MinSDK           string `json:"minSDK" yaml:"minSDK"`
	Date             string `json:"date" yaml:"date"`
	AppName          string `json:"appName,omitempty" yaml:"appName,omitempty"`
	IconPath         string `json:"iconPath,omitempty" yaml:"iconPath,omitempty"`
}

// SupportsOS reports whether an OS at version v satisfies the app's MinimumOSVersion
func (b *BasicInfo) SupportsOS(v string) (bool, error) {
	minOS, err := version.NewVersion(b.MinSDK)
	if err != nil {
		return false, fmt.Errorf("failed to parse MinimumOSVersion '%s': %w", b.MinSDK, err)
	}
	target, err := version.NewVersion(v)
	if err != nil {
		return false, fmt.Errorf("failed to parse OS version '%s': %w", v, err)
	}
	return target.GreaterThanOrEqual(minOS), nil
}

func requiredString(doc map[string]any, key string) (string, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("invalid %s value %v: %w", key, v, err)
	}
	return s, nil
}

func optionalString(doc map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := doc[key]; ok && v != nil {
			if s, err := cast.ToStringE(v); err == nil {
				return s
			}
		}
	}
	return ""
}
