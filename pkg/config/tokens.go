package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tokens holds the bot credential tokens from the first document of the
// YAML config file.
type Tokens struct {
	Main string `yaml:"main_token"`
	Test string `yaml:"test_token"`
}

// tokenDoc matches the layout of one YAML config document.
type tokenDoc struct {
	Tokens Tokens `yaml:"tokens"`
}

// LoadTokens reads the token file. The file may contain multiple YAML
// documents; tokens live in the first one.
func LoadTokens(path string) (*Tokens, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer f.Close()

	var doc tokenDoc
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	if doc.Tokens.Main == "" {
		return nil, fmt.Errorf("token file has no main token")
	}
	return &doc.Tokens, nil
}

// SelectToken picks the credential token for a run mode: the main token by
// default, the test token when mode is "test".
func (t *Tokens) SelectToken(mode string) (string, error) {
	switch mode {
	case "":
		return t.Main, nil
	case "test":
		if t.Test == "" {
			return "", fmt.Errorf("token file has no test token")
		}
		return t.Test, nil
	default:
		return "", fmt.Errorf("unknown run mode: %q", mode)
	}
}
