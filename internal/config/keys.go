package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keys returns every settable dotted key, such as "api.base_url", sorted.
func Keys() []string {
	var keys []string
	root := reflect.TypeOf(Config{})
	for i := range root.NumField() {
		section := root.Field(i)
		name := yamlName(section)
		if name == "" || section.Type.Kind() != reflect.Struct {
			continue
		}
		for j := range section.Type.NumField() {
			if field := yamlName(section.Type.Field(j)); field != "" {
				keys = append(keys, name+"."+field)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func yamlName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func isKnownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a dotted key rendered as a string.
func (c *Config) Get(key string) (string, error) {
	if !isKnownKey(key) {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	tree, err := c.tree()
	if err != nil {
		return "", err
	}
	section, field, _ := strings.Cut(key, ".")
	values, _ := tree[section].(map[string]any)
	value, ok := values[field]
	if !ok || value == nil {
		return "", nil
	}
	return fmt.Sprint(value), nil
}

// Set assigns a dotted key from its string form. The value is decoded as YAML,
// so "true" and "30" land in bool and int fields.
func (c *Config) Set(key, value string) error {
	if !isKnownKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	tree, err := c.tree()
	if err != nil {
		return err
	}

	var decoded any
	if err = yaml.Unmarshal([]byte(value), &decoded); err != nil {
		decoded = value
	}

	section, field, _ := strings.Cut(key, ".")
	values, _ := tree[section].(map[string]any)
	if values == nil {
		values = make(map[string]any)
	}
	values[field] = decoded
	tree[section] = values

	data, err := yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	updated := Config{configPath: c.configPath}
	if err = yaml.Unmarshal(data, &updated); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	*c = updated
	return nil
}

// tree renders the configuration as nested maps keyed by YAML names.
func (c *Config) tree() (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	tree := make(map[string]any)
	if err = yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return tree, nil
}
