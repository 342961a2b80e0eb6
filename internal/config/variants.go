package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// VariantProfile is one named ensemble member configuration.
type VariantProfile struct {
	Name            string             `yaml:"name" validate:"required"`
	Hyperparameters map[string]float64 `yaml:"hyperparameters"`
	FeatureSubset   []string           `yaml:"feature_subset"`
}

// EnsembleConfig is the declarative training surface: which cutoffs
// to train at, which variant profiles to diversify over, and how the
// per-artifact predictions are aggregated.
type EnsembleConfig struct {
	Cutoffs     []int            `yaml:"cutoffs" validate:"required,min=1"`
	Variants    []VariantProfile `yaml:"variants" validate:"required,min=1,dive"`
	Aggregation string           `yaml:"aggregation" validate:"required,oneof=median"`
}

// LoadEnsembleConfig reads and validates the variants YAML file.
func LoadEnsembleConfig(path string) (*EnsembleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variants file: %w", err)
	}
	return ParseEnsembleConfig(data)
}

// ParseEnsembleConfig parses and validates raw YAML.
func ParseEnsembleConfig(data []byte) (*EnsembleConfig, error) {
	var cfg EnsembleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse variants yaml: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate variants: %w", err)
	}
	seen := make(map[string]struct{}, len(cfg.Variants))
	for _, v := range cfg.Variants {
		if _, dup := seen[v.Name]; dup {
			return nil, fmt.Errorf("validate variants: duplicate variant name %q", v.Name)
		}
		seen[v.Name] = struct{}{}
	}
	return &cfg, nil
}
