package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"cytodash/internal/config"
)

// SettingsCmd manages settings
type SettingsCmd struct {
	Meta SettingsMetaCmd `cmd:"meta" help:"Show settings file location and available options" default:"1"`
}

// SettingsMetaCmd displays settings metadata
type SettingsMetaCmd struct {
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the meta command
func (s *SettingsMetaCmd) Run(cli *CLI) error {
	settingsFile := config.GetSettingsFilePath()
	example := config.GetSettingsExample()

	if s.Format == "json" {
		output := map[string]any{
			"settings_file": settingsFile,
			"format":        example,
		}
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Settings file: %s\n\n", settingsFile)
	fmt.Println("Example settings.json:")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	writeExample(w, "", example)
	w.Flush()

	fmt.Println()
	fmt.Println("Create or edit this file to configure cytodash.")
	fmt.Println("All settings are optional and have sensible defaults.")
	fmt.Println("Precedence: command-line flags > CYTODASH_* environment variables > settings.json > defaults.")

	return nil
}

// writeExample prints nested sections as dotted keys in sorted order
func writeExample(w *tabwriter.Writer, prefix string, example map[string]any) {
	keys := make([]string, 0, len(example))
	for k := range example {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := example[key].(type) {
		case map[string]any:
			writeExample(w, prefix+key+".", v)
		default:
			fmt.Fprintf(w, "%s%s\t%v\n", prefix, key, v)
		}
	}
}
