package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/config"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration file",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			printConfig(cfg)
			return nil
		},
	}
}

func printConfig(cfg *config.Config) {
	kinds := "all"
	if len(cfg.Filter.Kinds) > 0 {
		kinds = strings.Join(cfg.Filter.Kinds, ", ")
	}
	dedupe := "reference"
	if cfg.Filter.GlobalDedupe {
		dedupe = "global"
	}

	fmt.Println(StyleTitle.Render("Layout"))
	printKeyValue("kind", cfg.Layout.Kind)
	printKeyValue("canvas", fmt.Sprintf("%gx%g", cfg.Layout.Width, cfg.Layout.Height))
	printKeyValue("rankdir", cfg.Layout.RankDirection)
	printKeyValue("engine", cfg.Layout.Engine)
	printKeyValue("seed", strconv.FormatUint(cfg.Layout.Seed, 10))
	printNewline()

	fmt.Println(StyleTitle.Render("Filter"))
	printKeyValue("kinds", kinds)
	printKeyValue("strength", fmt.Sprintf("[%d,%d]", cfg.Filter.MinStrength, cfg.Filter.MaxStrength))
	printKeyValue("reference", strconv.FormatInt(cfg.Filter.Reference, 10))
	printKeyValue("dedupe", dedupe)
	printNewline()

	fmt.Println(StyleTitle.Render("Source"))
	printKeyValue("kind", cfg.Source.Kind)
	switch cfg.Source.Kind {
	case "http":
		printKeyValue("base_url", cfg.Source.BaseURL)
	case "mongo":
		printKeyValue("database", cfg.Source.MongoDatabase)
	default:
		printKeyValue("dir", cfg.Source.Dir)
	}
	printNewline()

	fmt.Println(StyleTitle.Render("Cache"))
	printKeyValue("backend", cfg.Cache.Backend)
	printKeyValue("ttl", cfg.Cache.TTL.String())
	if cfg.Cache.Backend == "redis" {
		printKeyValue("redis", cfg.Cache.RedisAddr)
	}
	printNewline()

	fmt.Println(StyleTitle.Render("Server"))
	printKeyValue("addr", cfg.Server.Addr)
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				printWarning("Config file already exists")
				printDetail("Use --force to overwrite %s", path)
				return nil
			}
			if err := config.Save(config.Default(), path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			printSuccess("Config written")
			printFile(path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
