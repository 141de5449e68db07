// Package config loads the bot's two configuration documents: the JSON
// credentials file consumed by the persistence layer and the YAML token
// file consumed at startup. Credentials are read once; a change watcher
// can report edits made while the bot is running.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// DefaultDatabase is the database name used when the credentials file
// does not override it.
const DefaultDatabase = "thonkydb"

// Credentials holds the database connection settings from config.json.
type Credentials struct {
	User     string `json:"db_user" validate:"required_unless=Driver sqlite"`
	Password string `json:"db_pw" validate:"required_unless=Driver sqlite"`
	Host     string `json:"db_host" validate:"required_unless=Driver sqlite"`
	Database string `json:"db_name"`
	Driver   string `json:"db_driver" validate:"oneof=postgres mysql sqlite"`
	Path     string `json:"db_path" validate:"required_if=Driver sqlite"`
}

var validate = validator.New()

// LoadCredentials reads and validates the credentials file.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	creds := &Credentials{}
	if err := json.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	if creds.Database == "" {
		creds.Database = DefaultDatabase
	}
	if creds.Driver == "" {
		creds.Driver = "postgres"
	}

	if err := validate.Struct(creds); err != nil {
		return nil, fmt.Errorf("invalid credentials file: %w", err)
	}
	return creds, nil
}
