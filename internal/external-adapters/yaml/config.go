// Package yaml loads the vote-finder configuration file.
package yaml

import (
	"fmt"
	"os"

	yamlv3 "gopkg.in/yaml.v3"
)

// VoteConfig lists the projects to scan and the voter addresses whose
// replies mark a thread as already voted on.
type VoteConfig struct {
	Projects []string `yaml:"projects"`
	Emails   []string `yaml:"emails"`
}

// LoadVoteConfig reads and validates a vote-finder config file
func LoadVoteConfig(path string) (*VoteConfig, error) {
	//nolint:gosec // G304: path is operator-provided configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg VoteConfig
	if err := yamlv3.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(cfg.Projects) == 0 {
		return nil, fmt.Errorf("no projects configured in %s", path)
	}
	if len(cfg.Emails) == 0 {
		return nil, fmt.Errorf("no email configuration found in %s", path)
	}

	return &cfg, nil
}
