package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyAPI       = "api"
	keyWorkspace = "workspace"
	keyAuth      = "auth"
	keyOutput    = "output"
	keyLogging   = "logging"
	keyCache     = "cache"
	keyDashboard = "dashboard"
)

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. Keys present in the overlay replace entire sections
// in the target. Keys absent in the overlay are left unchanged, and unknown
// keys are ignored.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		if err = unmarshalSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection decodes node into a fresh value for the named section and
// replaces that section of target. Decoding into a zero value keeps the merge
// shallow.
func unmarshalSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyAPI:
		return replace(node, &target.API)
	case keyWorkspace:
		return replace(node, &target.Workspace)
	case keyAuth:
		return replace(node, &target.Auth)
	case keyOutput:
		return replace(node, &target.Output)
	case keyLogging:
		return replace(node, &target.Logging)
	case keyCache:
		return replace(node, &target.Cache)
	case keyDashboard:
		return replace(node, &target.Dashboard)
	default:
		return nil
	}
}

func replace[T any](node *yaml.Node, dst *T) error {
	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	*dst = v
	return nil
}
