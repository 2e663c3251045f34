package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kitbuilder587/deepseek-go/deepseek"
)

// Profile - дефолты запроса из YAML файла (DEEPSEEK_PROFILE):
//
//	model: deepseek-reasoner
//	system: You are a helpful assistant.
//	temperature: 0.7
//	max_tokens: 512
type Profile struct {
	Model       string   `yaml:"model"`
	System      string   `yaml:"system"`
	Temperature *float32 `yaml:"temperature"`
	MaxTokens   *int     `yaml:"max_tokens"`
}

// LoadProfile - пустой path дает пустой профиль.
func LoadProfile(path string) (Profile, error) {
	if path == "" {
		return Profile{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile %q: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %q: %w", path, err)
	}

	if p.Model != "" {
		if _, err := deepseek.ParseModel(p.Model); err != nil {
			return Profile{}, fmt.Errorf("profile %q: %w", path, err)
		}
	}
	if p.MaxTokens != nil && *p.MaxTokens <= 0 {
		return Profile{}, fmt.Errorf("profile %q: max_tokens must be positive", path)
	}

	return p, nil
}

// ModelOr returns the profile model, or fallback when unset.
func (p Profile) ModelOr(fallback deepseek.Model) deepseek.Model {
	if p.Model == "" {
		return fallback
	}
	m, err := deepseek.ParseModel(p.Model)
	if err != nil {
		return fallback
	}
	return m
}

// Apply задает system prompt и параметры генерации. Должен вызываться до
// добавления истории, чтобы system сообщение шло первым.
func (p Profile) Apply(b deepseek.ChatBuilder) deepseek.ChatBuilder {
	if p.System != "" {
		b = b.System(p.System)
	}
	if p.Temperature != nil {
		b = b.Temperature(*p.Temperature)
	}
	if p.MaxTokens != nil {
		b = b.MaxTokens(*p.MaxTokens)
	}
	return b
}
