// Package config loads the alpha-k8s configuration file and the
// environment-tunable operation timing policy.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	// ClusterName identifies the target EKS cluster. It is baked into
	// derived resource names, so it must be stable for the cluster's
	// lifetime.
	ClusterName string `yaml:"cluster_name"`

	// Region is the AWS region holding the namespace stacks.
	Region string `yaml:"region"`

	// Kubeconfig is the path to the kubeconfig for the target cluster.
	// Empty means the client-go default resolution.
	Kubeconfig string `yaml:"kubeconfig"`
}

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "alpha-k8s.yaml"

// LoadFile reads and parses the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if cfg.ClusterName == "" {
		return nil, fmt.Errorf("cluster_name is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required")
	}

	return &cfg, nil
}
