// Package main contains Mage build targets for batchconv developer tooling.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"go.yaml.in/yaml/v3"
)

// projectDirs lists the working directories the CLI expects.
var projectDirs = []string{
	"rules",
	".batchconv",
	"testdata/input",
	"testdata/output",
}

// Init creates the project directory structure used by batchconv.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "batchconv"
	cmdPkg  = "./cmd/batchconv"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Check builds the binary and runs the tests.
func Check() {
	mg.SerialDeps(Build, Test)
}

// Stats prints Go line counts and the size of each rule set under rules/.
func Stats() error {
	prod, tests, err := countGoLines(".")
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", tests)

	sets, err := ruleSetStats("rules")
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		fmt.Println("Rule sets: none")
		return nil
	}
	fmt.Println("Rule sets:")
	for _, rs := range sets {
		fmt.Printf("  %-12s %5d phrases %6d characters\n", rs.name, rs.phrases, rs.characters)
	}
	return nil
}

// countGoLines returns the non-blank line counts of production and test Go
// files under root, skipping directories the go tool ignores.
func countGoLines(root string) (prod, tests int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			tests += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, tests, err
}

type ruleSetStat struct {
	name       string
	phrases    int
	characters int
}

// ruleSetStats reads every YAML rule set in dir. A missing directory
// yields no stats.
func ruleSetStats(dir string) ([]ruleSetStat, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	var out []ruleSetStat
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		var rs struct {
			Name       string            `yaml:"name"`
			Phrases    map[string]string `yaml:"phrases"`
			Characters map[string]string `yaml:"characters"`
		}
		if err := yaml.Unmarshal(data, &rs); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f, err)
		}
		name := rs.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(f), ".yaml")
		}
		out = append(out, ruleSetStat{name: name, phrases: len(rs.Phrases), characters: len(rs.Characters)})
	}
	return out, nil
}
