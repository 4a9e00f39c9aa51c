package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the console application's configuration
type Config struct {
	StemDirectories []string `json:"stem_directories"`
	MasterVolume    float64  `json:"master_volume"`
	DefaultFadeMs   int      `json:"default_fade_ms"`
	SessionDir      string   `json:"session_dir"`
	KeyBindings     KeyMap   `json:"key_bindings"`
}

// KeyMap defines keyboard shortcuts
type KeyMap struct {
	VolumeUp    string `json:"volume_up"`
	VolumeDown  string `json:"volume_down"`
	PanLeft     string `json:"pan_left"`
	PanRight    string `json:"pan_right"`
	Mute        string `json:"mute"`
	FadeIn      string `json:"fade_in"`
	FadeOut     string `json:"fade_out"`
	PlayPause   string `json:"play_pause"`
	NextChannel string `json:"next_channel"`
	PrevChannel string `json:"prev_channel"`
	Quit        string `json:"quit"`
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	return &Config{
		StemDirectories: []string{},
		MasterVolume:    1.0,
		DefaultFadeMs:   2000,
		SessionDir:      "./sessions",
		KeyBindings: KeyMap{
			VolumeUp:    "+",
			VolumeDown:  "-",
			PanLeft:     "[",
			PanRight:    "]",
			Mute:        "m",
			FadeIn:      "i",
			FadeOut:     "o",
			PlayPause:   " ",
			NextChannel: "down",
			PrevChannel: "up",
			Quit:        "q",
		},
	}
}

// LoadConfig reads and unmarshals configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return GetDefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// SaveConfig marshals and saves configuration to file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrCreate loads config from path or creates default if not exists
func LoadOrCreate(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveConfig(config, path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return config, nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	if path := os.Getenv("MIXDESK_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mixdesk", "config.json")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(home, ".config", "mixdesk", "config.json")
}
