package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/reinforcer/internal"
	"github.com/starford/reinforcer/internal/pipeline"
	"github.com/starford/reinforcer/internal/workflow"
	pkgconfig "github.com/starford/reinforcer/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
		internal.WithVersion(version))
}

// withComponents runs fn against a wired service, logging to stderr so that
// stdout carries only command output.
func withComponents(cmd *cli.Command, fn func(*internal.Components) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(cfg, os.Stderr)
	comps, err := internal.NewComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()
	return fn(comps)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func submissionFrom(cmd *cli.Command) workflow.Submission {
	var tags []string
	for _, t := range cmd.StringSlice("tags") {
		tags = append(tags, pipeline.SplitTags(t)...)
	}
	return workflow.Submission{
		URL:     cmd.String("url"),
		Text:    cmd.String("text"),
		Title:   cmd.String("title"),
		Tags:    tags,
		Purpose: cmd.String("purpose"),
	}
}

func ingest(ctx context.Context, cmd *cli.Command) error {
	return withComponents(cmd, func(c *internal.Components) error {
		entry, err := c.Service.Ingest(ctx, submissionFrom(cmd))
		if err != nil {
			return err
		}
		return printJSON(entry)
	})
}

func analyze(ctx context.Context, cmd *cli.Command) error {
	return withComponents(cmd, func(c *internal.Components) error {
		sug, err := c.Service.Analyze(ctx, submissionFrom(cmd))
		if err != nil {
			return err
		}
		return printJSON(sug)
	})
}

func entries(_ context.Context, cmd *cli.Command) error {
	return withComponents(cmd, func(c *internal.Components) error {
		list, err := c.Service.Entries(cmd.Bool("newest"))
		if err != nil {
			return err
		}
		return printJSON(list)
	})
}

func sweep(_ context.Context, cmd *cli.Command) error {
	return withComponents(cmd, func(c *internal.Components) error {
		fmt.Fprintf(os.Stdout, "removed %d staged document(s)\n", c.Service.Sweep())
		return nil
	})
}

func contentFlags(withEdits bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "Web page or YouTube URL to fetch"},
		&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Direct text content"},
		&cli.StringFlag{Name: "title", Usage: "Document title"},
	}
	if withEdits {
		flags = append(flags,
			&cli.StringSliceFlag{Name: "tags", Usage: "Comma separated tags"},
			&cli.StringFlag{Name: "purpose", Aliases: []string{"p"}, Usage: "Why this content is worth keeping"},
		)
	}
	return flags
}

func main() {
	cmd := &cli.Command{
		Name:    "reinforcer",
		Usage:   "Turn web pages, YouTube transcripts and notes into a summarized Markdown knowledge base",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
			{
				Name:   "ingest",
				Usage:  "Process content and commit it to the knowledge base",
				Flags:  contentFlags(true),
				Action: ingest,
			},
			{
				Name:   "analyze",
				Usage:  "Suggest a summary, keywords, tags and purpose without saving",
				Flags:  contentFlags(false),
				Action: analyze,
			},
			{
				Name:  "entries",
				Usage: "List committed entries",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "newest", Usage: "Newest first"},
				},
				Action: entries,
			},
			{
				Name:   "sweep",
				Usage:  "Remove staged documents older than the staging TTL",
				Action: sweep,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
