package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/bwservices06-art/bwservicesweb/internal"
	"github.com/bwservices06-art/bwservicesweb/internal/auth"
	"github.com/bwservices06-art/bwservicesweb/internal/contentservice"
	"github.com/bwservices06-art/bwservicesweb/internal/mcpserver"
	"github.com/bwservices06-art/bwservicesweb/internal/store"
	pkgconfig "github.com/bwservices06-art/bwservicesweb/pkg/config"
)

// configFlag is declared on the root command; subcommands read it through
// the command lineage.
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
}

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// withStore loads the config and opens the content store for a one-shot
// command. Logs go to stderr so stdout stays free for command output.
func withStore(cmd *cli.Command, fn func(*store.SQLite, *internal.Config, *slog.Logger) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel)
	s, err := internal.OpenStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s, cfg, logger)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(_ context.Context, cmd *cli.Command) error {
	return withStore(cmd, func(s *store.SQLite, cfg *internal.Config, logger *slog.Logger) error {
		slog.SetDefault(logger)
		logger.Info("MCP server starting", slog.String("store_path", cfg.Store.Path))
		srv := mcpserver.New(contentservice.NewService(s), cfg.Uploads.Path,
			mcpserver.WithBaseURL(cfg.App.BaseURL))
		return srv.ServeStdio()
	})
}

func seed(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return errors.New("seed: file argument is required")
	}
	return withStore(cmd, func(s *store.SQLite, _ *internal.Config, logger *slog.Logger) error {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := store.Seed(ctx, s, f, logger)
		if err != nil {
			return err
		}
		logger.Info("seed complete",
			slog.Any("appended", res.Appended),
			slog.Any("merged", res.Merged))
		return nil
	})
}

func export(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return errors.New("export: file argument is required")
	}
	return withStore(cmd, func(s *store.SQLite, _ *internal.Config, logger *slog.Logger) error {
		if err := store.Export(ctx, s, file); err != nil {
			return err
		}
		logger.Info("export complete", slog.String("file", file))
		return nil
	})
}

// hashPassword prints the bcrypt hash for admin.password_hash. The password
// is read from the first argument or, when absent, from stdin.
func hashPassword(_ context.Context, cmd *cli.Command) error {
	password := cmd.Args().First()
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		password = strings.TrimRight(line, "\r\n")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, hash)
	return err
}

func main() {
	cmd := &cli.Command{
		Name:   "bwservicesweb",
		Usage:  "Agency website with live content, public intake forms and an admin console",
		Action: serve,
		Flags:  []cli.Flag{configFlag()},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the web server (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the content tools over MCP on stdio",
				Action: serveMCP,
			},
			{
				Name:      "seed",
				Usage:     "Import a YAML seed file into the content store",
				ArgsUsage: "<file.yaml>",
				Action:    seed,
			},
			{
				Name:      "export",
				Usage:     "Write the whole content tree as JSON",
				ArgsUsage: "<file.json>",
				Action:    export,
			},
			{
				Name:      "hash-password",
				Usage:     "Print the bcrypt hash of a password for admin.password_hash",
				ArgsUsage: "[password]",
				Action:    hashPassword,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
