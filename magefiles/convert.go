package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert runs the built CLI over every .txt file in testdata/input,
// writing results to testdata/output with the s2t rule set.
func Convert() error {
	mg.Deps(Init, Build)

	files, err := filepath.Glob(filepath.Join("testdata", "input", "*.txt"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("[convert] No .txt files in testdata/input.")
		return nil
	}

	args := append([]string{"convert", "--config-id", "s2t", "--output-dir", filepath.Join("testdata", "output"), "--no-progress"}, files...)
	return sh.RunWithV(map[string]string{"BATCHCONV_LOG_LEVEL": "debug"}, filepath.Join(binDir, binName), args...)
}

// Clean removes build output and converted samples.
func Clean() error {
	for _, p := range []string{binDir, filepath.Join("testdata", "output")} {
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}
	return nil
}
