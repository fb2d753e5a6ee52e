// Package main provides the librarian CLI entry point.
// librarian is a reddit bot that answers friend mentions with links to the
// Japari Library wiki.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourgamermom/japari-librarian/cmd"
	"github.com/yourgamermom/japari-librarian/config"
	"github.com/yourgamermom/japari-librarian/pkg/buildinfo"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "librarian",
	Short: "A reddit bot that links friend mentions to the Japari Library",
	Long: `librarian is a reddit bot for the Japari Library wiki.

The bot watches its reddit inbox for messages that mention it and quote one
or more friend names, resolves each name to a wiki page, and replies with a
link per page (plus an image link when the page has one).

COMMON WORKFLOWS:
  First-time setup:  librarian config init  →  librarian auth login
  Run the bot:       librarian run
  Test a name:       librarian resolve "crested ibis"
  Check credentials: librarian auth status

DISCOVERY:
  librarian <command> --help   Subcommands, flags, and examples`,
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build time of the librarian binary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildinfo.Get()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "librarian version %s\n", info.Version)
		fmt.Fprintf(out, "  commit:     %s\n", info.Commit)
		fmt.Fprintf(out, "  built:      %s\n", info.BuildTime)
		return nil
	},
}

// configCmd manages bot configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage bot configuration",
	Long:  `View and modify the librarian configuration settings.`,
}

// configShowCmd displays current configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		configPath, _ := config.ConfigPath()

		fmt.Println("Current configuration:")
		fmt.Printf("  Config file:     %s\n", configPath)
		fmt.Printf("  User:            %s\n", valueOrDefault(cfg.User, "(not set)"))
		fmt.Printf("  Poll interval:   %s\n", cfg.PollInterval)
		fmt.Printf("  Message limit:   %d\n", cfg.MessageLimit)
		fmt.Printf("  Subreddits:      %s\n", formatList(cfg.Subreddits))
		fmt.Printf("  Wiki endpoint:   %s\n", valueOrDefault(cfg.WikiEndpoint, "(default)"))
		fmt.Printf("  Metrics address: %s\n", valueOrDefault(cfg.MetricsAddress, "(disabled)"))
		fmt.Printf("  Log level:       %s\n", cfg.LogLevel)
		fmt.Printf("  Log format:      %s\n", cfg.LogFormat)

		return nil
	},
}

// configInitCmd initializes configuration.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with default values if one doesn't exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.ConfigPath()
		if err != nil {
			return fmt.Errorf("getting config path: %w", err)
		}

		// Check if config already exists.
		if _, err := os.Stat(configPath); err == nil {
			fmt.Printf("Configuration file already exists: %s\n", configPath)
			fmt.Println("Use 'librarian config show' to view current settings.")
			return nil
		}

		defaultCfg := config.DefaultConfig()
		if err := config.SaveConfig(defaultCfg); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Printf("Created configuration file: %s\n", configPath)
		fmt.Println("\nSet the bot's account name before running:")
		fmt.Println("  librarian config set user <reddit-username>")

		return nil
	},
}

// configSetCmd sets a configuration value.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Available keys:
  user             - The bot's reddit account name
  poll_interval    - Time between inbox polls (e.g., 30s, 5m)
  message_limit    - Messages fetched per poll (0 means all)
  subreddits       - Comma-separated subreddit allow-list (empty means all)
  wiki_endpoint    - MediaWiki api.php URL
  metrics_address  - Prometheus listen address (empty disables)
  log_level        - Minimum log level (debug, info, warn, error)
  log_format       - Log output format (console, json)

Examples:
  librarian config set user japari_librarian
  librarian config set poll_interval 1m
  librarian config set subreddits KemonoFriends,tesagure
  librarian config set log_format json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		currentCfg, err := config.LoadConfig()
		if err != nil {
			// If config doesn't exist, start with defaults.
			currentCfg = config.DefaultConfig()
		}

		if err := currentCfg.Set(key, value); err != nil {
			return err
		}

		if err := config.SaveConfig(currentCfg); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

// completionCmd generates shell completion scripts.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for librarian.

To load completions:

Bash:
  $ source <(librarian completion bash)

Zsh:
  $ librarian completion zsh > "${fpath[1]}/_librarian"

Fish:
  $ librarian completion fish | source

PowerShell:
  PS> librarian completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

// formatList renders a string list for display.
func formatList(list []string) string {
	if len(list) == 0 {
		return "(all)"
	}
	out := list[0]
	for _, s := range list[1:] {
		out += ", " + s
	}
	return out
}

func init() {
	rootCmd.AddCommand(cmd.RunCmd)
	rootCmd.AddCommand(cmd.ResolveCmd)
	rootCmd.AddCommand(cmd.AuthCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)

	// Config subcommands.
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
}

func main() {
	// Signal handling lives in the run command, the only long-running one.
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
