package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings mirrors the optional YAML settings file:
//
//	app:
//	  name: cloudfiles
//	  apiVersion: 1.0.0
//	upload:
//	  maxFileSizeMB: 25
//	  allowedExtensions: [.pdf, .png]
//	features:
//	  logging: true
//	  fileValidation: true
type Settings struct {
	App    AppInfo `yaml:"app"`
	Upload struct {
		MaxFileSizeMB     int64    `yaml:"maxFileSizeMB"`
		AllowedExtensions []string `yaml:"allowedExtensions"`
	} `yaml:"upload"`
	Features struct {
		Logging        *bool `yaml:"logging"`
		FileValidation *bool `yaml:"fileValidation"`
	} `yaml:"features"`
}

// LoadSettings reads a YAML settings file
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings file %s: %w", path, err)
	}
	if s.Upload.MaxFileSizeMB < 0 {
		return nil, fmt.Errorf("settings file %s: upload.maxFileSizeMB must not be negative", path)
	}

	return &s, nil
}

// apply overlays the non-zero settings onto cfg
func (s *Settings) apply(cfg *Config) {
	if s.App.Name != "" {
		cfg.App.Name = s.App.Name
	}
	if s.App.APIVersion != "" {
		cfg.App.APIVersion = s.App.APIVersion
	}
	if s.Upload.MaxFileSizeMB > 0 {
		cfg.Upload.MaxFileSizeMB = s.Upload.MaxFileSizeMB
	}
	if len(s.Upload.AllowedExtensions) > 0 {
		cfg.Upload.AllowedExtensions = ParseExtensions(strings.Join(s.Upload.AllowedExtensions, ","))
	}
	if s.Features.Logging != nil {
		cfg.Activity.Enabled = *s.Features.Logging
	}
	if s.Features.FileValidation != nil {
		cfg.Upload.ValidationEnabled = *s.Features.FileValidation
	}
}
