package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursegrid/internal/config"
	"github.com/javiermolinar/coursegrid/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
	}
	cmd.AddCommand(a.configInitCmd(), a.configShowCmd())
	return cmd
}

func (a *App) configInitCmd() *cobra.Command {
	var (
		path     string
		defaults bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or edit the config file",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  coursegrid config init
  coursegrid config init --defaults`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.DefaultConfigPath()
			}
			return runConfigInit(cmd.InOrStdin(), cmd.OutOrStdout(), path, defaults)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Config file (default "+config.DefaultConfigPath()+")")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Write defaults without prompting")
	return cmd
}

func (a *App) configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Run: func(cmd *cobra.Command, _ []string) {
			printConfig(cmd.OutOrStdout(), a.config)
		},
	}
}

func runConfigInit(in io.Reader, out io.Writer, path string, defaults bool) error {
	fmt.Fprintf(out, "Config file: %s\n\n", path)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(path)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(path); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", path)
	}

	printConfig(out, cfg)
	if defaults {
		return nil
	}

	reader := bufio.NewReader(in)
	if !promptYesNoReader(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Catalog.Source = promptValue(reader, out, "Catalog source (file or URL)", cfg.Catalog.Source)
	cfg.Storage.DBPath = promptValue(reader, out, "Database path", cfg.Storage.DBPath)
	cfg.Backend.BaseURL = promptValue(reader, out, "Backend URL", cfg.Backend.BaseURL)
	cfg.Server.Addr = promptValue(reader, out, "API listen address", cfg.Server.Addr)
	cfg.Export.TermStart = promptValue(reader, out, "Term start (YYYY-MM-DD, empty to skip)", cfg.Export.TermStart)
	cfg.UI.Theme = promptTheme(reader, out, cfg.UI.Theme)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "──────────────────────")
	fmt.Fprintln(out, "[catalog]")
	fmt.Fprintf(out, "  source                 = %s\n", cfg.Catalog.Source)
	if cfg.Catalog.DetailURL != "" {
		fmt.Fprintf(out, "  detail_url             = %s\n", cfg.Catalog.DetailURL)
	}
	fmt.Fprintln(out, "\n[storage]")
	fmt.Fprintf(out, "  db_path                = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(out, "\n[backend]")
	fmt.Fprintf(out, "  base_url               = %s\n", cfg.Backend.BaseURL)
	fmt.Fprintf(out, "  timeout                = %s\n", cfg.Backend.Timeout)
	fmt.Fprintln(out, "\n[server]")
	fmt.Fprintf(out, "  addr                   = %s\n", cfg.Server.Addr)
	fmt.Fprintf(out, "  update_rate_per_minute = %d\n", cfg.Server.UpdateRatePerMinute)
	fmt.Fprintf(out, "  cache_ttl              = %s\n", cfg.Server.CacheTTL)
	fmt.Fprintln(out, "\n[log]")
	fmt.Fprintf(out, "  level                  = %s\n", cfg.Log.Level)
	fmt.Fprintf(out, "  format                 = %s\n", cfg.Log.Format)
	if cfg.Log.File != "" {
		fmt.Fprintf(out, "  file                   = %s\n", cfg.Log.File)
	}
	fmt.Fprintln(out, "\n[ui]")
	fmt.Fprintf(out, "  theme                  = %s\n", cfg.UI.Theme)
	if cfg.Export.TermStart != "" {
		fmt.Fprintln(out, "\n[export]")
		fmt.Fprintf(out, "  term_start             = %s\n", cfg.Export.TermStart)
	}
}

func promptYesNo(in io.Reader, out io.Writer, question string) bool {
	return promptYesNoReader(bufio.NewReader(in), out, question)
}

func promptYesNoReader(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(out, "  %s: ", label)
	} else {
		fmt.Fprintf(out, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptTheme(reader *bufio.Reader, out io.Writer, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(promptValue(reader, out, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Fprintf(out, "  Invalid theme %q. Available: %s\n", value, options)
		// Keep the current theme when input runs out.
		if _, err := reader.Peek(1); err != nil {
			return current
		}
	}
}
