// Package branding loads the office identity shared by emails and reports.
package branding

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed office.yml
var defaultProfile []byte

// Profile is the letterhead and signatory information of the office.
type Profile struct {
	Secretariat    string   `yaml:"secretariat"`
	Division       string   `yaml:"division"`
	Letterhead     []string `yaml:"letterhead"`
	Address        string   `yaml:"address"`
	AddressLines   []string `yaml:"address_lines"`
	City           string   `yaml:"city"`
	SignatoryTitle string   `yaml:"signatory_title"`
	ReportTitle    string   `yaml:"report_title"`
}

// Default returns the embedded profile.
func Default() *Profile {
	p, err := Parse(defaultProfile)
	if err != nil {
		panic(fmt.Sprintf("embedded office profile is invalid: %v", err))
	}
	return p
}

// Load reads a profile from path, or returns the embedded one when path is empty.
func Load(path string) (*Profile, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read office profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML profile.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode office profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the fields every template relies on.
func (p *Profile) Validate() error {
	switch {
	case p.Secretariat == "":
		return errors.New("office profile: secretariat is required")
	case len(p.Letterhead) == 0:
		return errors.New("office profile: letterhead is required")
	case p.Address == "":
		return errors.New("office profile: address is required")
	case p.SignatoryTitle == "":
		return errors.New("office profile: signatory_title is required")
	}
	if p.City == "" {
		p.City = "Bandar Lampung"
	}
	if p.ReportTitle == "" {
		p.ReportTitle = "REKAPITULASI SURAT KUNJUNGAN YANG DISETUJUI"
	}
	if len(p.AddressLines) == 0 {
		p.AddressLines = []string{p.Address}
	}
	return nil
}
