package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourgamermom/japari-librarian/config"
	"github.com/yourgamermom/japari-librarian/friend"
	"github.com/yourgamermom/japari-librarian/page"
	"github.com/yourgamermom/japari-librarian/pkg/logging"
	"github.com/yourgamermom/japari-librarian/wiki"
)

// ResolveCmd resolves friend names against the wiki without touching reddit.
var ResolveCmd = &cobra.Command{
	Use:   "resolve <name>...",
	Short: "Resolve friend names against the wiki",
	Long: `Resolve one or more friend names against the Japari Library wiki and
print the page each one lands on.

Names are parsed the same way mentions in messages are: the text before the
first '/' is the friend's name, the text after it is the media, and a
leading backslash suppresses normalization. Quote names that contain spaces.

Useful for checking how a mention would resolve before the bot answers it.

Examples:
  librarian resolve serval
  librarian resolve "crested ibis" "shoebill/manga"
  librarian resolve "\Mirai"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

// runResolve handles the resolve command.
func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(&logging.Config{
		Level:       logging.Level(cfg.LogLevel),
		ServiceName: "librarian",
		JSONFormat:  cfg.LogFormat == config.LogFormatJSON,
	})

	friends := make([]friend.Friend, 0, len(args))
	for _, arg := range args {
		friends = append(friends, friend.New(arg))
	}

	wikiClient := wiki.NewClient(logger, &wiki.ClientOptions{
		Endpoint:  cfg.WikiEndpoint,
		UserAgent: cfg.UserAgent,
	})

	ctx := cmd.Context()

	partials, err := wikiClient.PartialPages(ctx, friends)
	if err != nil {
		return fmt.Errorf("querying page metadata: %w", err)
	}

	images, err := wikiClient.ImageURLs(ctx, partials)
	if err != nil {
		return fmt.Errorf("querying image urls: %w", err)
	}

	pages := page.Make(partials, images, friends)

	resolved := make(map[string]page.Page)
	for _, p := range pages {
		for _, id := range p.Friends {
			resolved[id.String()] = p
		}
	}

	for _, f := range friends {
		p, ok := resolved[f.ID.String()]
		if !ok {
			fmt.Printf("%s: no page found (looked for %q)\n", f.Name, f.Title)
			continue
		}
		fmt.Printf("%s: %s\n  %s\n", f.Name, p.Title, p.URL)
		if p.Image != "" {
			fmt.Printf("  image: %s\n", p.Image)
		}
	}

	return nil
}
