package settings

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// fileSettings is the on-disk YAML shape of Settings. Durations are plain
// milliseconds so files stay editable by hand.
type fileSettings struct {
	MinZoomLevel       float64 `yaml:"minZoomLevel"`
	MaxZoomLevel       float64 `yaml:"maxZoomLevel"`
	InkAutoCombineMode string  `yaml:"inkAutoCombineMode"`
	HoverTimeoutMs     int     `yaml:"hoverTimeoutMs"`
	AllowRightClick    bool    `yaml:"allowRightClick"`
}

// MarshalYAML implements yaml.Marshaler.
func (s *Settings) MarshalYAML() (any, error) {
	return fileSettings{
		MinZoomLevel:       s.minZoomLevel,
		MaxZoomLevel:       s.maxZoomLevel,
		InkAutoCombineMode: s.inkAutoCombineMode.String(),
		HoverTimeoutMs:     int(s.hoverTimeout.Milliseconds()),
		AllowRightClick:    s.isRightMouseClickAllowed,
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Missing fields keep engine
// defaults.
func (s *Settings) UnmarshalYAML(node *yaml.Node) error {
	defaults := NewSettings()
	raw := fileSettings{
		MinZoomLevel:       defaults.minZoomLevel,
		MaxZoomLevel:       defaults.maxZoomLevel,
		InkAutoCombineMode: defaults.inkAutoCombineMode.String(),
		HoverTimeoutMs:     int(defaults.hoverTimeout.Milliseconds()),
		AllowRightClick:    defaults.isRightMouseClickAllowed,
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	mode, err := ParseCombineMode(raw.InkAutoCombineMode)
	if err != nil {
		return err
	}
	*s = *NewSettings()
	if err := s.SetZoomLimits(raw.MinZoomLevel, raw.MaxZoomLevel); err != nil {
		return err
	}
	if err := s.SetHoverTimeout(msDuration(raw.HoverTimeoutMs)); err != nil {
		return err
	}
	s.inkAutoCombineMode = mode
	s.isRightMouseClickAllowed = raw.AllowRightClick
	return nil
}

// Load reads settings from a YAML file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	s := NewSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to a YAML file.
func Save(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
