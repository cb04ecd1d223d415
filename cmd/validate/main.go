package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/companion-engine/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <world.yaml> [more.yaml ...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		if err := validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "%s: FAILED: %v\n", filename, err)
			failed = true
			continue
		}
		fmt.Printf("%s: OK\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

var validFilename = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func validateFile(filename string) error {
	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".yaml") {
		return fmt.Errorf("world file must have .yaml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".yaml")
	if !validFilename.MatchString(nameWithoutExt) {
		return fmt.Errorf("world filename %q must be lowercase snake_case (e.g., neon_city.yaml)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var w world.World
	if err := yaml.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if w.Meta.ID == "" {
		w.Meta.ID = nameWithoutExt
	}
	if err := w.Validate(); err != nil {
		return err
	}

	// Cross-check wardrobe references that Validate can't see: every
	// default outfit and tier threshold should be usable at runtime.
	for name, c := range w.Companions {
		if c.DefaultOutfit != "" {
			if _, ok := c.Wardrobe[c.DefaultOutfit]; !ok {
				return fmt.Errorf("companion %q: default_outfit %q not in wardrobe", name, c.DefaultOutfit)
			}
		}
		for _, tier := range c.Tiers {
			if tier.Threshold < 0 || tier.Threshold > 100 {
				return fmt.Errorf("companion %q: tier threshold %d out of range [0,100]", name, tier.Threshold)
			}
		}
	}

	return nil
}
