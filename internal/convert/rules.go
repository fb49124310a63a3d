// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"
)

// RuleSet is a dictionary-based transform. Phrases and characters are
// merged into one table and applied by longest match, scanning left to
// right; a phrase entry wins over the characters it contains.
type RuleSet struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Phrases     map[string]string `yaml:"phrases,omitempty"`
	Characters  map[string]string `yaml:"characters,omitempty"`

	table  map[string]string
	maxLen int // longest key, in runes
}

// ParseRuleSet decodes a YAML rule set and prepares its lookup table.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing rule set: %w", err)
	}
	rs.build()
	return &rs, nil
}

func (rs *RuleSet) build() {
	rs.table = make(map[string]string, len(rs.Phrases)+len(rs.Characters))
	rs.maxLen = 0
	add := func(m map[string]string) {
		for k, v := range m {
			if k == "" {
				continue
			}
			rs.table[k] = v
			if n := utf8.RuneCountInString(k); n > rs.maxLen {
				rs.maxLen = n
			}
		}
	}
	add(rs.Characters)
	add(rs.Phrases)
}

// Apply returns text with every rule applied.
func (rs *RuleSet) Apply(text string) string {
	if len(rs.table) == 0 || text == "" {
		return text
	}
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(runes); {
		n := rs.maxLen
		if rem := len(runes) - i; rem < n {
			n = rem
		}
		matched := false
		for ; n > 0; n-- {
			if repl, ok := rs.table[string(runes[i:i+n])]; ok {
				b.WriteString(repl)
				i += n
				matched = true
				break
			}
		}
		if !matched {
			b.WriteRune(runes[i])
			i++
		}
	}
	return b.String()
}

// RulesConverter loads rule sets from <dir>/<configID>.yaml on first use
// and caches them.
type RulesConverter struct {
	dir string

	mu    sync.Mutex
	cache map[string]*RuleSet
}

// NewRulesConverter returns a converter reading rule sets from dir.
func NewRulesConverter(dir string) *RulesConverter {
	return &RulesConverter{dir: dir, cache: make(map[string]*RuleSet)}
}

// Convert applies the rule set named by configID.
func (c *RulesConverter) Convert(text, configID string) (string, error) {
	rs, err := c.load(configID)
	if err != nil {
		return "", err
	}
	return rs.Apply(text), nil
}

// load returns the cached rule set for configID, reading it on a miss.
// Concurrent misses for the same id may both read the file; the last one
// to finish is kept.
func (c *RulesConverter) load(configID string) (*RuleSet, error) {
	name := ruleName(configID)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: invalid rule set name %q", ErrUnknownConfig, configID)
	}

	c.mu.Lock()
	rs, ok := c.cache[name]
	c.mu.Unlock()
	if ok {
		return rs, nil
	}

	path := filepath.Join(c.dir, name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q (no %s)", ErrUnknownConfig, configID, path)
		}
		return nil, fmt.Errorf("reading rule set %s: %w", path, err)
	}
	rs, err = ParseRuleSet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if rs.Name == "" {
		rs.Name = name
	}

	c.mu.Lock()
	c.cache[name] = rs
	c.mu.Unlock()
	return rs, nil
}

// ruleName strips a trailing .yaml, .yml, or .json so that OpenCC-style
// ids such as "s2t.json" resolve to the same rule file.
func ruleName(configID string) string {
	id := strings.TrimSpace(configID)
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		id = strings.TrimSuffix(id, ext)
	}
	return id
}
