package plist

import (
	"bytes"
	"fmt"

	"github.com/blacktop/go-plist"
)

// AppInfo is the Info.plist object found at the root of an iOS .app bundle
// https://developer.apple.com/documentation/bundleresources/information_property_list
type AppInfo struct {
	CFBundleDevelopmentRegion  string   `plist:"CFBundleDevelopmentRegion,omitempty" json:"development_region,omitempty"`
	CFBundleDisplayName        string   `plist:"CFBundleDisplayName,omitempty" json:"display_name,omitempty"`
	CFBundleExecutable         string   `plist:"CFBundleExecutable,omitempty" json:"executable,omitempty"`
	CFBundleIconFile           string   `plist:"CFBundleIconFile,omitempty" json:"icon_file,omitempty"`
	CFBundleIconFiles          []string `plist:"CFBundleIconFiles,omitempty" json:"icon_files,omitempty"`
	CFBundleIcons              struct {
		CFBundlePrimaryIcon struct {
			CFBundleIconFiles []string `plist:"CFBundleIconFiles,omitempty" json:"icon_files,omitempty"`
			CFBundleIconName  string   `plist:"CFBundleIconName,omitempty" json:"icon_name,omitempty"`
		} `plist:"CFBundlePrimaryIcon,omitempty" json:"primary_icon"`
	} `plist:"CFBundleIcons,omitempty" json:"icons"`
	CFBundleIdentifier         string   `plist:"CFBundleIdentifier,omitempty" json:"identifier,omitempty"`
	CFBundleName               string   `plist:"CFBundleName,omitempty" json:"name,omitempty"`
	CFBundlePackageType        string   `plist:"CFBundlePackageType,omitempty" json:"package_type,omitempty"`
	CFBundleShortVersionString string   `plist:"CFBundleShortVersionString,omitempty" json:"short_version,omitempty"`
	CFBundleSupportedPlatforms []string `plist:"CFBundleSupportedPlatforms,omitempty" json:"supported_platforms,omitempty"`
	CFBundleVersion            string   `plist:"CFBundleVersion,omitempty" json:"version,omitempty"`
	DTPlatformName             string   `plist:"DTPlatformName,omitempty" json:"platform_name,omitempty"`
	DTPlatformVersion          string   `plist:"DTPlatformVersion,omitempty" json:"platform_version,omitempty"`
	DTSDKName                  string   `plist:"DTSDKName,omitempty" json:"sdk_name,omitempty"`
	DTXcode                    string   `plist:"DTXcode,omitempty" json:"xcode,omitempty"`
	MinimumOSVersion           string   `plist:"MinimumOSVersion,omitempty" json:"minimum_os_version,omitempty"`
	UIDeviceFamily             []int    `plist:"UIDeviceFamily,omitempty" json:"device_family,omitempty"`
}

// DisplayName returns CFBundleDisplayName, falling back to CFBundleName
func (a *AppInfo) DisplayName() string {
	if a.CFBundleDisplayName != "" {
		return a.CFBundleDisplayName
	}
	return a.CFBundleName
}

// DeviceFamilies returns the human readable UIDeviceFamily values
func (a *AppInfo) DeviceFamilies() []string {
	var families []string
	for _, f := range a.UIDeviceFamily {
		switch f {
		case 1:
			families = append(families, "iPhone")
		case 2:
			families = append(families, "iPad")
		case 3:
			families = append(families, "AppleTV")
		case 4:
			families = append(families, "AppleWatch")
		case 6:
			families = append(families, "Mac")
		case 7:
			families = append(families, "AppleVision")
		default:
			families = append(families, fmt.Sprintf("Unknown(%d)", f))
		}
	}
	return families
}

func (a *AppInfo) String() string {
	var out string
	out += "[Info]\n"
	out += "======\n"
	out += fmt.Sprintf("CFBundleIdentifier:         %s\n", a.CFBundleIdentifier)
	out += fmt.Sprintf("CFBundleDisplayName:        %s\n", a.DisplayName())
	out += fmt.Sprintf("CFBundleExecutable:         %s\n", a.CFBundleExecutable)
	out += fmt.Sprintf("CFBundleShortVersionString: %s\n", a.CFBundleShortVersionString)
	out += fmt.Sprintf("CFBundleVersion:            %s\n", a.CFBundleVersion)
	out += fmt.Sprintf("MinimumOSVersion:           %s\n", a.MinimumOSVersion)
	if len(a.UIDeviceFamily) > 0 {
		out += fmt.Sprintf("UIDeviceFamily:             %v\n", a.DeviceFamilies())
	}
	if a.DTSDKName != "" {
		out += fmt.Sprintf("DTSDKName:                  %s\n", a.DTSDKName)
	}
	return out
}

// ParseAppInfo parses a .app/Info.plist (XML or binary)
func ParseAppInfo(data []byte) (*AppInfo, error) {
	i := &AppInfo{}
	if err := plist.NewDecoder(bytes.NewReader(data)).Decode(i); err != nil {
		return nil, fmt.Errorf("failed to parse Info.plist: %w", err)
	}
	return i, nil
}

// Parse decodes any plist dictionary into a generic map
func Parse(data []byte) (map[string]any, error) {
	doc := make(map[string]any)
	if _, err := plist.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse plist: %w", err)
	}
	return doc, nil
}
