package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/wildlight/questline/internal/loader"
	"github.com/wildlight/questline/pkg/conditionals"
)

// validate checks content pack files before they ship: schema, duplicate
// IDs, dangling dialogue node references, and filename conventions.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <pack.yaml> [pack.yaml ...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		if err := validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

var packFilenamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("content pack must have a .yaml or .yml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ext)
	if !packFilenamePattern.MatchString(nameWithoutExt) {
		return fmt.Errorf("content pack filename %q must be lowercase snake_case (e.g. village_quests.yaml)", baseName)
	}

	pack, err := loader.Load(filename)
	if err != nil {
		return err
	}

	for _, w := range lintConditions(pack) {
		fmt.Printf("  warning: %s\n", w)
	}

	fmt.Printf("  %d quests, %d dialogues, %d achievements\n",
		len(pack.Quests), len(pack.Dialogues), len(pack.Achievements))
	return nil
}

// lintConditions reports condition strings outside the evaluator
// grammar. The engine treats them as true at runtime, so a typo like
// "flags:met_elder" silently passes; surfacing it here catches the
// mistake before the content ships. Warnings never fail validation.
func lintConditions(pack *loader.Pack) []string {
	var warnings []string
	for _, q := range pack.Quests {
		for _, expr := range q.Prerequisites {
			if !conditionals.Recognized(expr) {
				warnings = append(warnings,
					fmt.Sprintf("quest %q prerequisite %q is not a recognized condition (always true)", q.ID, expr))
			}
		}
	}
	for _, d := range pack.Dialogues {
		for nodeID, node := range d.Nodes {
			for i, opt := range node.Options {
				for _, expr := range opt.Conditions {
					if !conditionals.Recognized(expr) {
						warnings = append(warnings,
							fmt.Sprintf("dialogue %q node %q option %d condition %q is not a recognized condition (always true)",
								d.ID, nodeID, i, expr))
					}
				}
			}
		}
	}
	return warnings
}
