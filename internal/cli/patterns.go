package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/cleanse/internal/config"
)

var patternsFile string

func newPatternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect and extend the detection pattern catalogue",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every active pattern",
		RunE:  runPatternsList,
	}

	add := &cobra.Command{
		Use:   "add <name> <regex>",
		Short: "Register a custom pattern and persist it",
		Long: `Validate and persist a custom detection pattern. The pattern is stored
in the custom patterns file and loaded on every run.

Examples:
  cleanse patterns add employee_id 'EMP-\d{6}'
  cleanse patterns add badge '[A-Z]{2}\d{4}' --file ./team-patterns.toml`,
		Args: cobra.ExactArgs(2),
		RunE: runPatternsAdd,
	}
	add.Flags().StringVar(&patternsFile, "file", "", "custom patterns file (default from config)")

	cmd.AddCommand(list, add)
	return cmd
}

func runPatternsList(cmd *cobra.Command, args []string) error {
	e, err := buildEnv()
	if err != nil {
		return err
	}

	all := e.reg.Patterns()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tCUSTOM")
	for _, name := range names {
		p := all[name]
		custom := ""
		if p.Custom {
			custom = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, p.Category, custom)
	}
	return w.Flush()
}

// customPatternsFile resolves where custom patterns live.
func customPatternsFile(e *env) string {
	if patternsFile != "" {
		return config.ExpandPath(patternsFile)
	}
	if e.cfg.Patterns.File != "" {
		return config.ExpandPath(e.cfg.Patterns.File)
	}
	return filepath.Join(config.Dir(), "patterns.toml")
}

func runPatternsAdd(cmd *cobra.Command, args []string) error {
	name, raw := args[0], args[1]

	e, err := buildEnv()
	if err != nil {
		return err
	}
	// Validate before persisting.
	if err := e.reg.RegisterCustom(name, raw); err != nil {
		return err
	}

	path := customPatternsFile(e)

	var file struct {
		Patterns map[string]string `toml:"patterns"`
	}
	if _, err := toml.DecodeFile(path, &file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if file.Patterns == nil {
		file.Patterns = make(map[string]string)
	}
	file.Patterns[name] = raw

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(file); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	e.log.Info("pattern saved", "name", name, "file", path)
	return nil
}
