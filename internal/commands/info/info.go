// Package info contains the info command.
package info

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/blacktop/ipainfo/internal/colors"
	"github.com/blacktop/ipainfo/pkg/ipa"
	"github.com/dustin/go-humanize"
)

// Config is the info command configuration.
type Config struct {
	// check whether the app runs on this OS version
	CheckOS string `json:"check_os,omitempty"`
	// include the provisioning profile summary
	Provision bool `json:"provision,omitempty"`
}

// Profile is a summary of an embedded provisioning profile
type Profile struct {
	Name           string    `json:"name" yaml:"name"`
	UUID           string    `json:"uuid" yaml:"uuid"`
	Type           string    `json:"type" yaml:"type"`
	TeamName       string    `json:"team_name" yaml:"team_name"`
	TeamIdentifier []string  `json:"team_identifier,omitempty" yaml:"team_identifier,omitempty"`
	ExpirationDate time.Time `json:"expiration_date" yaml:"expiration_date"`
	Expired        bool      `json:"expired" yaml:"expired"`
	Devices        int       `json:"devices,omitempty" yaml:"devices,omitempty"`
}

// Output is the result of the info command
type Output struct {
	*ipa.BasicInfo `yaml:",inline"`

	Path        string   `json:"path" yaml:"path"`
	Size        int64    `json:"size" yaml:"size"`
	Fingerprint string   `json:"fingerprint" yaml:"fingerprint"`
	ExtractDir  string   `json:"extract_dir" yaml:"extract_dir"`
	Cached      bool     `json:"cached" yaml:"cached"`
	Devices     []string `json:"devices,omitempty" yaml:"devices,omitempty"`
	IconSize    string   `json:"icon_size,omitempty" yaml:"icon_size,omitempty"`
	CheckOS     string   `json:"check_os,omitempty" yaml:"check_os,omitempty"`
	Supported   *bool    `json:"supported,omitempty" yaml:"supported,omitempty"`
	Profile     *Profile `json:"provision,omitempty" yaml:"provision,omitempty"`
}

// Get builds the info command output for a parsed IPA
func Get(i *ipa.IPA, conf *Config) (*Output, error) {
	binfo, err := i.BasicInfo()
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(i.Path())
	if err != nil {
		return nil, err
	}

	out := &Output{
		BasicInfo:   binfo,
		Path:        i.Path(),
		Size:        fi.Size(),
		Fingerprint: i.Fingerprint(),
		ExtractDir:  i.ExtractDir(),
		Cached:      i.Reused(),
	}

	if ai := i.AppInfo(); ai != nil {
		out.Devices = ai.DeviceFamilies()
	}

	if icon, ok := i.Icon(); ok {
		out.IconSize = fmt.Sprintf("%dx%d", icon.Width, icon.Height)
	}

	if conf.CheckOS != "" {
		ok, err := binfo.SupportsOS(conf.CheckOS)
		if err != nil {
			return nil, err
		}
		out.CheckOS = conf.CheckOS
		out.Supported = &ok
	}

	if prov, ok := i.Provision(); ok && conf.Provision {
		out.Profile = &Profile{
			Name:           prov.Name,
			UUID:           prov.UUID,
			Type:           prov.Type(),
			TeamName:       prov.TeamName,
			TeamIdentifier: prov.TeamIdentifier,
			ExpirationDate: prov.ExpirationDate,
			Expired:        prov.Expired(time.Now()),
			Devices:        len(prov.ProvisionedDevices),
		}
	}

	return out, nil
}

func (o *Output) String() string {
	var sb strings.Builder
	row := func(key, val string) {
		if val != "" {
			fmt.Fprintf(&sb, "%s %s\n", colors.Key(fmt.Sprintf("%-18s", key+":")), colors.Value(val))
		}
	}

	sb.WriteString(colors.Title("[IPA Info]") + "\n")
	sb.WriteString(colors.Title("==========") + "\n")
	row("Path", fmt.Sprintf("%s (%s)", o.Path, humanize.Bytes(uint64(o.Size))))
	row("App Name", o.AppName)
	row("Bundle Identifier", o.BundleIdentifier)
	row("Version", fmt.Sprintf("%s (%s)", o.VersionName, o.VersionCode))
	row("Minimum OS", o.MinSDK)
	if len(o.Devices) > 0 {
		row("Devices", strings.Join(o.Devices, ", "))
	}
	row("Date", o.Date)
	if o.IconPath != "" {
		row("Icon", fmt.Sprintf("%s (%s)", o.IconPath, o.IconSize))
	} else {
		row("Icon", colors.Faint("none"))
	}
	if o.Supported != nil {
		if *o.Supported {
			row("Runs on "+o.CheckOS, colors.Good("yes"))
		} else {
			row("Runs on "+o.CheckOS, colors.Bad("no"))
		}
	}

	if o.Profile != nil {
		sb.WriteString("\n" + colors.Title("[Provisioning Profile]") + "\n")
		sb.WriteString(colors.Title("======================") + "\n")
		row("Name", o.Profile.Name)
		row("UUID", o.Profile.UUID)
		row("Type", o.Profile.Type)
		row("Team", fmt.Sprintf("%s (%s)", o.Profile.TeamName, strings.Join(o.Profile.TeamIdentifier, ", ")))
		if !o.Profile.ExpirationDate.IsZero() {
			exp := fmt.Sprintf("%s (%s)", o.Profile.ExpirationDate.Format(time.RFC3339), humanize.Time(o.Profile.ExpirationDate))
			if o.Profile.Expired {
				exp = colors.Bad(exp)
			}
			row("Expires", exp)
		}
		if o.Profile.Devices > 0 {
			row("Devices", humanize.Comma(int64(o.Profile.Devices)))
		}
	}

	sb.WriteString("\n" + colors.Faint(fmt.Sprintf("cache: %s", o.ExtractDir)))
	if o.Cached {
		sb.WriteString(colors.Faint(" (reused)"))
	}
	sb.WriteString("\n")

	return sb.String()
}
