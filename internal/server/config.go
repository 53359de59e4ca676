package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/table"
)

// Config represents the complete server configuration
type Config struct {
	Server   Settings        `hcl:"server,block"`
	Variants []table.Variant `hcl:"variant,block"`
}

// Settings contains server-level configuration
type Settings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	HistoryPath string `hcl:"history_path,optional"`
}

// Addr renders the listen address
func (s Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// DefaultConfig returns a playable default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: Settings{
			Address:     "localhost",
			Port:        8080,
			LogLevel:    "info",
			HistoryPath: "pokerd.db",
		},
		Variants: []table.Variant{
			{
				Slug:          "heads_up",
				Name:          "Heads-Up",
				MaxPlayers:    2,
				SmallBlind:    1,
				BigBlind:      2,
				StartingStack: 200,
				Category:      table.CategoryCash,
			},
			{
				Slug:          "six_max",
				Name:          "6-Max",
				MaxPlayers:    6,
				SmallBlind:    1,
				BigBlind:      2,
				StartingStack: 200,
				Category:      table.CategoryCash,
			},
			{
				Slug:          "casual",
				Name:          "Casual",
				MaxPlayers:    9,
				SmallBlind:    5,
				BigBlind:      10,
				StartingStack: 1000,
				Category:      table.CategoryCasual,
			},
		},
	}
}

// LoadConfig loads server configuration from an HCL file; a missing file
// yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.HistoryPath == "" {
		config.Server.HistoryPath = "pokerd.db"
	}
	if len(config.Variants) == 0 {
		config.Variants = DefaultConfig().Variants
	}
	for _, v := range config.Variants {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &config, nil
}
