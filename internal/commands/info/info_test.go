package info

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blacktop/ipainfo/pkg/ipa"
	"github.com/fatih/color"
)

const testInfoPlist = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>CFBundleDisplayName</key>
	<string>Example</string>
	<key>CFBundleIdentifier</key>
	<string>com.example.app</string>
	<key>CFBundleShortVersionString</key>
	<string>1.2</string>
	<key>CFBundleVersion</key>
	<string>7</string>
	%s
	<key>UIDeviceFamily</key>
	<array>
		<integer>1</integer>
		<integer>2</integer>
	</array>
</dict>
</plist>`

const testProfile = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>ExpirationDate</key>
	<date>2020-01-01T00:00:00Z</date>
	<key>Name</key>
	<string>Example Ad Hoc</string>
	<key>ProvisionedDevices</key>
	<array>
		<string>00008030-000000000000001E</string>
		<string>00008030-000000000000002E</string>
	</array>
	<key>TeamIdentifier</key>
	<array>
		<string>ABCDE12345</string>
	</array>
	<key>TeamName</key>
	<string>Example Inc.</string>
	<key>UUID</key>
	<string>6f1b9e4c-7d0b-4c53-9a52-1c2f1f0d7c11</string>
</dict>
</plist>`

// unpackRunner stands in for 7z and mv with an archive holding only
// Info.plist and a provisioning profile
type unpackRunner struct {
	info string
}

func (r unpackRunner) Run(name string, args ...string) error {
	switch name {
	case "7z":
		for _, a := range args {
			if !strings.HasPrefix(a, "-o") {
				continue
			}
			bundle := filepath.Join(strings.TrimPrefix(a, "-o"), ipa.PayloadDir, "Example.app")
			if err := os.MkdirAll(bundle, 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(bundle, ipa.InfoPlistName), []byte(r.info), 0o644); err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(bundle, ipa.ProvisionName), []byte(testProfile), 0o644)
		}
		return errors.New("7z: missing output dir")
	case "mv":
		return os.Rename(args[0], args[1])
	}
	return fmt.Errorf("unexpected command: %s", name)
}

func openTestIPA(t *testing.T, info string) *ipa.IPA {
	t.Helper()
	dir := t.TempDir()
	archive := filepath.Join(dir, "Example.ipa")
	if err := os.WriteFile(archive, []byte("PK\x03\x04fake ipa"), 0o644); err != nil {
		t.Fatal(err)
	}
	i, err := ipa.Open(archive, &ipa.Config{
		CacheRoot: filepath.Join(dir, "ipa-info"),
		Runner:    unpackRunner{info: info},
	})
	if err != nil {
		t.Fatalf("ipa.Open() error = %v", err)
	}
	return i
}

func TestGet(t *testing.T) {
	minOS := "<key>MinimumOSVersion</key>\n\t<string>12.0</string>"
	yes, no := true, false

	tests := []struct {
		name          string
		info          string
		conf          *Config
		wantErr       error
		wantAnyErr    bool
		wantSupported *bool
		wantProfile   bool
	}{
		{name: "defaults", info: minOS, conf: &Config{}},
		{name: "runs on newer OS", info: minOS, conf: &Config{CheckOS: "15.0"}, wantSupported: &yes},
		{name: "runs on minimum OS", info: minOS, conf: &Config{CheckOS: "12.0"}, wantSupported: &yes},
		{name: "too old OS", info: minOS, conf: &Config{CheckOS: "11.4"}, wantSupported: &no},
		{name: "bad OS version", info: minOS, conf: &Config{CheckOS: "not-a-version"}, wantAnyErr: true},
		{name: "provisioning profile", info: minOS, conf: &Config{Provision: true}, wantProfile: true},
		{name: "missing minimum OS", info: "", conf: &Config{}, wantErr: ipa.ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := openTestIPA(t, fmt.Sprintf(testInfoPlist, tt.info))

			got, err := Get(i, tt.conf)
			if tt.wantErr != nil || tt.wantAnyErr {
				if err == nil {
					t.Fatal("Get() expected error")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("Get() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}

			if got.BundleIdentifier != "com.example.app" || got.MinSDK != "12.0" {
				t.Errorf("Get() BasicInfo = %+v", got.BasicInfo)
			}
			if got.Size != int64(len("PK\x03\x04fake ipa")) {
				t.Errorf("Get() Size = %d", got.Size)
			}
			if got.Fingerprint != i.Fingerprint() || got.ExtractDir != i.ExtractDir() || got.Cached {
				t.Errorf("Get() cache fields = %s %s %v", got.Fingerprint, got.ExtractDir, got.Cached)
			}
			if strings.Join(got.Devices, ",") != "iPhone,iPad" {
				t.Errorf("Get() Devices = %v", got.Devices)
			}
			if got.IconSize != "" {
				t.Errorf("Get() IconSize = %s, want empty", got.IconSize)
			}

			switch {
			case tt.wantSupported == nil && got.Supported != nil:
				t.Errorf("Get() Supported = %v, want unset", *got.Supported)
			case tt.wantSupported != nil && got.Supported == nil:
				t.Errorf("Get() Supported unset, want %v", *tt.wantSupported)
			case tt.wantSupported != nil && *got.Supported != *tt.wantSupported:
				t.Errorf("Get() Supported = %v, want %v", *got.Supported, *tt.wantSupported)
			}
			if tt.wantSupported != nil && got.CheckOS != tt.conf.CheckOS {
				t.Errorf("Get() CheckOS = %s, want %s", got.CheckOS, tt.conf.CheckOS)
			}

			if !tt.wantProfile {
				if got.Profile != nil {
					t.Errorf("Get() Profile = %+v, want nil", got.Profile)
				}
				return
			}
			want := Profile{
				Name:           "Example Ad Hoc",
				UUID:           "6f1b9e4c-7d0b-4c53-9a52-1c2f1f0d7c11",
				Type:           "ad-hoc",
				TeamName:       "Example Inc.",
				TeamIdentifier: []string{"ABCDE12345"},
				ExpirationDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
				Expired:        true,
				Devices:        2,
			}
			if got.Profile == nil {
				t.Fatal("Get() Profile = nil")
			}
			p := *got.Profile
			if p.Name != want.Name || p.UUID != want.UUID || p.Type != want.Type || p.TeamName != want.TeamName ||
				strings.Join(p.TeamIdentifier, ",") != "ABCDE12345" || !p.ExpirationDate.Equal(want.ExpirationDate) ||
				p.Expired != want.Expired || p.Devices != want.Devices {
				t.Errorf("Get() Profile = %+v, want %+v", p, want)
			}
		})
	}
}

func TestOutputString(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()
	color.NoColor = true

	yes := true
	out := &Output{
		BasicInfo: &ipa.BasicInfo{
			BundleIdentifier: "com.example.app",
			VersionName:      "1.2",
			VersionCode:      "7",
			MinSDK:           "12.0",
			Date:             "2024-01-02 03:04:05",
			AppName:          "Example",
		},
		Path:       "Example.ipa",
		Size:       2048,
		ExtractDir: "ipa-info/abc",
		Cached:     true,
		Devices:    []string{"iPhone", "iPad"},
		CheckOS:    "15.0",
		Supported:  &yes,
		Profile: &Profile{
			Name:           "Example Ad Hoc",
			Type:           "ad-hoc",
			TeamName:       "Example Inc.",
			TeamIdentifier: []string{"ABCDE12345"},
			ExpirationDate: time.Now().Add(-time.Hour),
			Expired:        true,
			Devices:        1200,
		},
	}

	got := out.String()
	for _, want := range []string{
		"Example.ipa (2.0 kB)",
		"com.example.app",
		"1.2 (7)",
		"iPhone, iPad",
		"Runs on 15.0:",
		"yes",
		"Icon:",
		"none",
		"Example Inc. (ABCDE12345)",
		"1,200",
		"(reused)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("String() missing %q:\n%s", want, got)
		}
	}
}
