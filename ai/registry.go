package ai

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrModelNotFound      = errors.New("model not found")
	ErrInvalidIdentifier  = errors.New("invalid model identifier format, expected 'provider/modelName'")
	ErrModelAlreadyExists = errors.New("model already registered")
	ErrEmptyProviderName  = errors.New("provider name cannot be empty")
	ErrEmptyModelName     = errors.New("model name cannot be empty")
)

type ModelFactoryFunc func(modelName, apiKey string, baseURL ...string) *Model

type ModelInfo struct {
	Provider    string
	Model       string
	DisplayName string
	Family      string
	BaseURL     string
	APIKeyName  string // environment variable holding the provider key
	NewModel    ModelFactoryFunc
}

// Identifier returns "provider/model".
func (i ModelInfo) Identifier() string {
	return i.Provider + "/" + i.Model
}

type modelRegistry struct {
	mu     sync.RWMutex
	models map[string]ModelInfo
}

var defaultRegistry = &modelRegistry{
	models: make(map[string]ModelInfo),
}

// RegisterModel adds a provider model. Drivers call it from init.
func RegisterModel(info ModelInfo) error {
	if info.Provider == "" {
		return ErrEmptyProviderName
	}
	if info.Model == "" {
		return ErrEmptyModelName
	}

	identifier := info.Identifier()

	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()

	if _, exists := defaultRegistry.models[identifier]; exists {
		return fmt.Errorf("%w: %s", ErrModelAlreadyExists, identifier)
	}

	defaultRegistry.models[identifier] = info
	return nil
}

// LookupModel returns the registration for a "provider/model" identifier.
func LookupModel(identifier string) (ModelInfo, error) {
	parts := strings.SplitN(identifier, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ModelInfo{}, ErrInvalidIdentifier
	}

	defaultRegistry.mu.RLock()
	info, exists := defaultRegistry.models[identifier]
	defaultRegistry.mu.RUnlock()

	if !exists {
		return ModelInfo{}, fmt.Errorf("%w: %s", ErrModelNotFound, identifier)
	}
	return info, nil
}

// New creates a model from its "provider/model" identifier.
func New(identifier, apiKey string) (*Model, error) {
	info, err := LookupModel(identifier)
	if err != nil {
		return nil, err
	}
	if info.NewModel == nil {
		return nil, fmt.Errorf("%w: %s has no factory", ErrModelNotFound, identifier)
	}
	return info.NewModel(info.Model, apiKey, info.BaseURL), nil
}

// Models lists registered models sorted by identifier.
func Models() []ModelInfo {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()

	result := make([]ModelInfo, 0, len(defaultRegistry.models))
	for _, info := range defaultRegistry.models {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Identifier() < result[j].Identifier()
	})
	return result
}
