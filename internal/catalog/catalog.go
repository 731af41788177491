// Package catalog parses the YAML seed file of stores and NFT badges.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"loyalty/internal/rewards"

	"gopkg.in/yaml.v3"
)

var Rarities = []string{"common", "rare", "epic", "legendary"}

type Store struct {
	Name     string         `yaml:"name"`
	Address  string         `yaml:"address"`
	ScanCode string         `yaml:"scan_code"`
	Reward   rewards.Reward `yaml:"reward"`
}

type Nft struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url"`
	Rarity      string `yaml:"rarity"`
}

type File struct {
	Stores []Store `yaml:"stores"`
	Nfts   []Nft   `yaml:"nfts"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	codes := make(map[string]bool, len(f.Stores))
	for i, s := range f.Stores {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("store %d: name is required", i)
		}
		if s.ScanCode == "" {
			return nil, fmt.Errorf("store %q: scan_code is required", s.Name)
		}
		if codes[s.ScanCode] {
			return nil, fmt.Errorf("store %q: duplicate scan_code", s.Name)
		}
		codes[s.ScanCode] = true
		if !s.Reward.Valid() {
			return nil, fmt.Errorf("store %q: reward values must be non-negative", s.Name)
		}
	}
	for i, n := range f.Nfts {
		if strings.TrimSpace(n.Name) == "" {
			return nil, fmt.Errorf("nft %d: name is required", i)
		}
		if n.Rarity == "" {
			n.Rarity = "common"
		}
		if !ValidRarity(n.Rarity) {
			return nil, fmt.Errorf("nft %q: unknown rarity %q", n.Name, n.Rarity)
		}
		f.Nfts[i] = n
	}
	return &f, nil
}

func ValidRarity(rarity string) bool {
	for _, r := range Rarities {
		if r == rarity {
			return true
		}
	}
	return false
}
