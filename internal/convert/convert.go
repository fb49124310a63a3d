// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements the text transform applied to each file of a
// batch. A Converter takes decoded text and an opaque config id naming the
// rule set (for example "s2t" for Simplified to Traditional Chinese) and
// returns the transformed text. Backends: YAML rule sets on disk and the
// external opencc command.
package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/batchconv/pkg/types"
)

// Converter transforms text according to the rule set named by configID.
// Implementations must be safe for concurrent use; the engine calls Convert
// from several workers at once.
type Converter interface {
	Convert(text, configID string) (string, error)
}

// Func adapts a function to the Converter interface.
type Func func(text, configID string) (string, error)

// Convert calls f(text, configID).
func (f Func) Convert(text, configID string) (string, error) { return f(text, configID) }

// ErrUnknownConfig is returned when a backend has no rule set for a config id.
var ErrUnknownConfig = errors.New("unknown conversion config")

// identityIDs are config ids that leave text unchanged regardless of backend.
var identityIDs = map[string]bool{
	"identity": true,
	"noop":     true,
	"none":     true,
}

// IsIdentity reports whether configID names the no-op transform.
func IsIdentity(configID string) bool {
	return identityIDs[strings.ToLower(strings.TrimSpace(configID))]
}

// Identity returns text unchanged for every config id.
type Identity struct{}

// Convert returns text.
func (Identity) Convert(text, _ string) (string, error) { return text, nil }

// Router sends identity config ids to Identity and everything else to the
// configured backend.
type Router struct {
	backend Converter
}

// NewRouter wraps backend. A nil backend rejects every non-identity id.
func NewRouter(backend Converter) *Router {
	return &Router{backend: backend}
}

// Convert dispatches on configID.
func (r *Router) Convert(text, configID string) (string, error) {
	if IsIdentity(configID) {
		return text, nil
	}
	if r.backend == nil {
		return "", fmt.Errorf("%w: %q (no backend configured)", ErrUnknownConfig, configID)
	}
	return r.backend.Convert(text, configID)
}

// New builds the converter selected by cfg.
func New(cfg types.ConvertConfig) (Converter, error) {
	switch cfg.Backend {
	case types.BackendRules, "":
		return NewRouter(NewRulesConverter(cfg.RulesDir)), nil
	case types.BackendOpenCC:
		c, err := NewCommandConverter(cfg.OpenCCBin)
		if err != nil {
			return nil, err
		}
		return NewRouter(c), nil
	default:
		return nil, fmt.Errorf("unsupported convert backend %q (want %s or %s)",
			cfg.Backend, types.BackendRules, types.BackendOpenCC)
	}
}
