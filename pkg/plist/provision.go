package plist

import (
	"bytes"
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	"github.com/blacktop/go-plist"
)

// ProvisioningProfile is the plist embedded in a .mobileprovision file
type ProvisioningProfile struct {
	AppIDName                   string         `plist:"AppIDName,omitempty" json:"appid_name,omitempty"`
	ApplicationIdentifierPrefix []string       `plist:"ApplicationIdentifierPrefix,omitempty" json:"application_identifier_prefix,omitempty"`
	CreationDate                time.Time      `plist:"CreationDate,omitempty" json:"creation_date"`
	DeveloperCertificates       [][]byte       `plist:"DeveloperCertificates,omitempty" json:"-"`
	Entitlements                map[string]any `plist:"Entitlements,omitempty" json:"entitlements,omitempty"`
	ExpirationDate              time.Time      `plist:"ExpirationDate,omitempty" json:"expiration_date"`
	IsXcodeManaged              bool           `plist:"IsXcodeManaged,omitempty" json:"is_xcode_managed,omitempty"`
	Name                        string         `plist:"Name,omitempty" json:"name,omitempty"`
	Platform                    []string       `plist:"Platform,omitempty" json:"platform,omitempty"`
	ProvisionedDevices          []string       `plist:"ProvisionedDevices,omitempty" json:"provisioned_devices,omitempty"`
	ProvisionsAllDevices        bool           `plist:"ProvisionsAllDevices,omitempty" json:"provisions_all_devices,omitempty"`
	TeamIdentifier              []string       `plist:"TeamIdentifier,omitempty" json:"team_identifier,omitempty"`
	TeamName                    string         `plist:"TeamName,omitempty" json:"team_name,omitempty"`
	TimeToLive                  int            `plist:"TimeToLive,omitempty" json:"time_to_live,omitempty"`
	UUID                        string         `plist:"UUID,omitempty" json:"uuid,omitempty"`
	Version                     int            `plist:"Version,omitempty" json:"version,omitempty"`
}

// ParseProvisioningProfile parses the XML plist isolated from a .mobileprovision
func ParseProvisioningProfile(data []byte) (*ProvisioningProfile, error) {
	p := &ProvisioningProfile{}
	if err := plist.NewDecoder(bytes.NewReader(data)).Decode(p); err != nil {
		return nil, fmt.Errorf("failed to parse provisioning profile: %w", err)
	}
	return p, nil
}

// Type guesses the distribution type of the profile
func (p *ProvisioningProfile) Type() string {
	switch {
	case p.ProvisionsAllDevices:
		return "enterprise"
	case len(p.ProvisionedDevices) > 0:
		if allow, ok := p.Entitlements["get-task-allow"].(bool); ok && allow {
			return "development"
		}
		return "ad-hoc"
	default:
		return "app-store"
	}
}

// Expired reports whether the profile has expired at t
func (p *ProvisioningProfile) Expired(t time.Time) bool {
	return !p.ExpirationDate.IsZero() && t.After(p.ExpirationDate)
}

// Certificates parses the DER encoded developer certificates
func (p *ProvisioningProfile) Certificates() ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for idx, der := range p.DeveloperCertificates {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("failed to parse developer certificate %d: %w", idx, err)
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

func (p *ProvisioningProfile) String() string {
	var out string
	out += "[Provisioning Profile]\n"
	out += "======================\n"
	out += fmt.Sprintf("Name:           %s\n", p.Name)
	out += fmt.Sprintf("UUID:           %s\n", p.UUID)
	out += fmt.Sprintf("Type:           %s\n", p.Type())
	out += fmt.Sprintf("AppIDName:      %s\n", p.AppIDName)
	out += fmt.Sprintf("TeamName:       %s\n", p.TeamName)
	out += fmt.Sprintf("TeamIdentifier: %s\n", strings.Join(p.TeamIdentifier, ", "))
	if !p.CreationDate.IsZero() {
		out += fmt.Sprintf("CreationDate:   %s\n", p.CreationDate.Format(time.RFC3339))
	}
	if !p.ExpirationDate.IsZero() {
		out += fmt.Sprintf("ExpirationDate: %s\n", p.ExpirationDate.Format(time.RFC3339))
	}
	if len(p.ProvisionedDevices) > 0 {
		out += fmt.Sprintf("Devices:        %d\n", len(p.ProvisionedDevices))
	}
	return out
}
