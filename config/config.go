package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Game configuration
	Game GameConfig `json:"game"`

	// Storage configuration
	Storage StorageConfig `json:"storage"`

	// Content configuration
	Content ContentConfig `json:"content"`
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	// Server port
	Port string `json:"port"`

	// Log level (debug, info, warn, error)
	LogLevel string `json:"log_level"`

	// Base URL encoded into clue QR labels
	BaseURL string `json:"base_url"`
}

// GameConfig holds game specific configuration
type GameConfig struct {
	// Hashtag of the main quest
	MainQuest string `json:"main_quest"`

	// Acts visible to every player from the start
	OpenActs []string `json:"open_acts"`
}

// StorageConfig holds player-state storage configuration
type StorageConfig struct {
	// Storage driver (file or sqlite3)
	Driver string `json:"driver"`

	// State directory (file driver) or database path (sqlite3 driver)
	Path string `json:"path"`
}

// ContentConfig holds authored-content configuration
type ContentConfig struct {
	// Directory holding clues/, quests/, characters/ and refs/
	Dir string `json:"dir"`

	// Directory QR labels are written to in bulk mode
	LabelsDir string `json:"labels_dir"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:     "8080",
			LogLevel: "info",
			BaseURL:  "https://lostsouls.door66.events",
		},
		Game: GameConfig{
			MainQuest: "main_quest",
			OpenActs:  []string{"act_prologue", "act_i_setting"},
		},
		Storage: StorageConfig{
			Driver: "file",
			Path:   "./data/players",
		},
		Content: ContentConfig{
			Dir:       "./assets/content",
			LabelsDir: "./assets/qrcodes",
		},
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return config, err
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Create default config file
		file, err := os.Create(path)
		if err != nil {
			return config, err
		}
		defer file.Close()

		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(config); err != nil {
			return config, err
		}

		return config, nil
	}

	// Read config file
	file, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, err
	}

	return config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config Config, path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Create or truncate file
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	// Write config to file
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return err
	}

	return nil
}
