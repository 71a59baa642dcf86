package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Profile is the on-disk shape of an import job description. Profiles keep
// recurring imports (e.g. one root per bioreactor unit) out of shell
// history.
//
// Example:
//
//	endpoint = "opc.tcp://deltav-edge:4840"
//	provider = "default"
//	search = ["CV", "PV"]
//	data_type = "Float8"
//
//	[[roots]]
//	base_node = "ns=2;s=0:/BRX001"
//	root_path = "BIOREACTOR/BRX001"
//
//	[[roots]]
//	base_node = "ns=2;s=0:/BRX002"
//	root_path = "BIOREACTOR/BRX002"
type Profile struct {
	Endpoint  string        `toml:"endpoint"`
	Provider  string        `toml:"provider"`
	Search    []string      `toml:"search"`
	DataType  string        `toml:"data_type"`
	StorePath string        `toml:"store"`
	ChunkSize int           `toml:"chunk_size"`
	MaxVisits int           `toml:"max_visits"`
	MaxDepth  int           `toml:"max_depth"`
	Roots     []ProfileRoot `toml:"roots"`
}

type ProfileRoot struct {
	BaseNode string `toml:"base_node"`
	RootPath string `toml:"root_path"`
}

// LoadProfile reads a TOML profile and folds it into cfg. Profile values
// fill in fields the user left at their defaults; explicit flags win, which
// the caller enforces by applying flags after this call returns.
func LoadProfile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	meta, err := toml.Decode(string(data), &p)
	if err != nil {
		return fmt.Errorf("parse profile %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("profile %s: unknown key %q", path, undecoded[0].String())
	}

	if p.Endpoint != "" {
		cfg.Source.Endpoint = p.Endpoint
	}
	if p.Provider != "" {
		cfg.Target.Provider = p.Provider
	}
	if len(p.Search) > 0 {
		cfg.Source.SearchNames = p.Search
	}
	if p.DataType != "" {
		cfg.Source.DataType = p.DataType
	}
	if p.StorePath != "" {
		cfg.Target.StorePath = p.StorePath
	}
	if p.ChunkSize > 0 {
		cfg.Limits.ChunkSize = p.ChunkSize
	}
	if p.MaxVisits > 0 {
		cfg.Limits.MaxVisits = p.MaxVisits
	}
	if p.MaxDepth > 0 {
		cfg.Limits.MaxDepth = p.MaxDepth
	}
	for _, r := range p.Roots {
		cfg.Source.Roots = append(cfg.Source.Roots, RootSpec{
			BaseNode: r.BaseNode,
			RootPath: r.RootPath,
		})
	}

	return nil
}
