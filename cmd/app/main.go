package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/featlint/internal"
	pkgconfig "github.com/starford/featlint/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// featureAndRoot extracts the feature argument and resolves the project
// root from the --root flag or git discovery.
func featureAndRoot(cfg *internal.Config, cmd *cli.Command) (string, string, error) {
	feature := cmd.Args().First()
	if feature == "" {
		return "", "", fmt.Errorf("didn't get a feature to check")
	}
	root, err := internal.ResolveRoot(cfg, cmd.String("root"))
	if err != nil {
		return "", "", fmt.Errorf("problem getting project root: %w", err)
	}
	return feature, root, nil
}

func runLint(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	feature, root, err := featureAndRoot(cfg, cmd)
	if err != nil {
		return err
	}
	return internal.Lint(cfg, feature, root, os.Stdout)
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	feature, root, err := featureAndRoot(cfg, cmd)
	if err != nil {
		return err
	}
	return internal.Watch(ctx, cfg, feature, root, os.Stdout)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	root, err := internal.ResolveRoot(cfg, cmd.String("root"))
	if err != nil {
		return fmt.Errorf("problem getting project root: %w", err)
	}
	return internal.Run(ctx,
		internal.WithConfig(cfg),
		internal.WithRoot(root),
	)
}

func runMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	root, err := internal.ResolveRoot(cfg, cmd.String("root"))
	if err != nil {
		return fmt.Errorf("problem getting project root: %w", err)
	}
	return internal.ServeMCP(cfg, root)
}

func runHistory(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.PrintHistory(cfg, int(cmd.Int("limit")), os.Stdout)
}

func runRecordMetrics(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	outPath := cmd.Args().First()
	if outPath == "" {
		return fmt.Errorf("argument for output file path required")
	}
	return internal.RecordMetrics(ctx, cfg, outPath, os.Stdin)
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
	rootFlag := &cli.StringFlag{
		Name:    "root",
		Usage:   "Project root (default: discovered via git)",
		Sources: cli.EnvVars("PROJECT_ROOT"),
	}

	cmd := &cli.Command{
		Name:  "featlint",
		Usage: "Static hygiene checks for app-tester feature suites",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:      "lint",
				Usage:     "Check one feature's suite directories and print PASS/FAIL per rule",
				ArgsUsage: "<feature>",
				Flags:     []cli.Flag{configFlag, rootFlag},
				Action:    runLint,
			},
			{
				Name:      "watch",
				Usage:     "Lint a feature, then re-check directories as files change",
				ArgsUsage: "<feature>",
				Flags:     []cli.Flag{configFlag, rootFlag},
				Action:    runWatch,
			},
			{
				Name:   "serve",
				Usage:  "Expose lint checks over HTTP",
				Flags:  []cli.Flag{configFlag, rootFlag},
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Expose lint checks as MCP tools on stdio",
				Flags:  []cli.Flag{configFlag, rootFlag},
				Action: runMCP,
			},
			{
				Name:  "history",
				Usage: "List recent recorded lint runs",
				Flags: []cli.Flag{
					configFlag,
					&cli.IntFlag{Name: "limit", Usage: "Maximum runs to list", Value: 20},
				},
				Action: runHistory,
			},
			{
				Name:      "record-metrics",
				Usage:     "Record session memory metrics to a CSV file",
				ArgsUsage: "<output.csv>",
				Flags:     []cli.Flag{configFlag},
				Action:    runRecordMetrics,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
