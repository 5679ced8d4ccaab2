package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// config mirrors the command-line options; flags given explicitly win over
// the file.
type config struct {
	Delimiter string `json:"delimiter" toml:"delimiter" yaml:"delimiter"`
	ChunkSize int    `json:"chunk_size" toml:"chunk_size" yaml:"chunk_size"`
	KeyField  string `json:"key_field" toml:"key_field" yaml:"key_field"`
	Profile   bool   `json:"profile" toml:"profile" yaml:"profile"`
	TopK      int    `json:"top_k" toml:"top_k" yaml:"top_k"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch filepath.Ext(path) {
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("config %s: unsupported format (want .toml, .yaml, or .json)", path)
	}
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
