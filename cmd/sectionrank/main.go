// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/sectionrank"
	"github.com/poiesic/sectionrank/ai"
	"github.com/poiesic/sectionrank/config"
	"github.com/poiesic/sectionrank/core"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	inputFlag := &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "Path to the job JSON file",
		Required: true,
	}
	baseDirFlag := &cli.StringFlag{
		Name:  "base-dir",
		Usage: "Directory holding the job's documents (defaults to the input file's directory)",
	}

	return &cli.App{
		Name:  "sectionrank",
		Usage: "Rank document sections by relevance to a persona and task",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "rank",
				Usage:  "Rank the sections of a job's documents",
				Action: rankCommand,
				Flags: []cli.Flag{
					inputFlag,
					baseDirFlag,
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the result JSON to this file instead of stdout",
					},
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Embedding provider (fastembed, openai, none); overrides the configuration",
					},
					&cli.IntFlag{
						Name:  "top-n",
						Usage: "Number of sections to return; overrides the configuration",
					},
					&cli.StringFlag{
						Name:  "metrics-file",
						Usage: "Write Prometheus metrics in text format to this file",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Embed the sections of a job's documents into the embedding cache",
				Action: reembedCommand,
				Flags: []cli.Flag{
					inputFlag,
					baseDirFlag,
					&cli.StringFlag{
						Name:  "cache",
						Usage: "Path to the BadgerDB embedding cache; overrides the configuration",
					},
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Embedding provider (fastembed, openai); overrides the configuration",
					},
				},
			},
			{
				Name:   "sections",
				Usage:  "List the candidate sections of a job's documents without ranking",
				Action: sectionsCommand,
				Flags:  []cli.Flag{inputFlag, baseDirFlag},
			},
		},
	}
}

// jobFile is the on-disk job format.
type jobFile struct {
	Documents []core.JobDocument `json:"documents"`
	Persona   struct {
		Role string `json:"role"`
	} `json:"persona"`
	JobToBeDone struct {
		Task string `json:"task"`
	} `json:"job_to_be_done"`
}

func readJob(path string) (*core.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	var jf jobFile
	if err := json.Unmarshal(data, &jf); err != nil {
		return nil, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}
	return &core.Job{
		Documents: jf.Documents,
		Persona:   jf.Persona.Role,
		Task:      jf.JobToBeDone.Task,
	}, nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if provider := c.String("provider"); provider != "" {
		cfg.Embedding.Provider = provider
	}
	if cache := c.String("cache"); cache != "" {
		cfg.Embedding.EmbeddingCachePath = cache
	}
	if c.IsSet("top-n") {
		cfg.Ranking.TopN = c.Int("top-n")
	}
	return cfg, nil
}

func newRanker(c *cli.Context, cfg *config.Config) (*sectionrank.Ranker, error) {
	baseDir := c.String("base-dir")
	if baseDir == "" {
		baseDir = filepath.Dir(c.String("input"))
	}
	return sectionrank.New(
		sectionrank.WithConfig(cfg),
		sectionrank.WithBaseDir(baseDir),
	)
}

func rankCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	job, err := readJob(c.String("input"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ranker, err := newRanker(c, cfg)
	if err != nil {
		return fmt.Errorf("failed to create ranker: %w", err)
	}
	defer ranker.Close()

	result, err := ranker.Rank(ctx, job)
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}
	for _, w := range result.Metadata.Warnings {
		slog.Warn(w)
	}

	if path := c.String("metrics-file"); path != "" {
		if err := prometheus.WriteToTextfile(path, ranker.Metrics().Registry()); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	out := c.App.Writer
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return writeJSON(out, result)
}

func reembedCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	job, err := readJob(c.String("input"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Embedding.EmbeddingCachePath == "" {
		return fmt.Errorf("an embedding cache path is required (--cache or embedding.embedding_cache_path)")
	}

	ranker, err := newRanker(c, cfg)
	if err != nil {
		return fmt.Errorf("failed to create ranker: %w", err)
	}
	defer ranker.Close()

	fmt.Fprintf(c.App.ErrWriter, "Embedding cache: %s\n", cfg.Embedding.EmbeddingCachePath)
	fmt.Fprintf(c.App.ErrWriter, "Embedding provider: %s\n", cfg.Embedding.Provider)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.Embedding.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	if _, err := ranker.Reembed(ctx, job, c.App.ErrWriter); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

// sectionSummary is one line of the sections listing.
type sectionSummary struct {
	Document   string           `json:"document"`
	Title      string           `json:"section_title"`
	PageNumber int              `json:"page_number"`
	Type       core.SectionType `json:"section_type"`
	WordCount  int              `json:"word_count"`
}

func sectionsCommand(c *cli.Context) error {
	job, err := readJob(c.String("input"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	// Listing never embeds anything.
	cfg.Embedding.Provider = ai.ProviderNone

	ranker, err := newRanker(c, cfg)
	if err != nil {
		return fmt.Errorf("failed to create ranker: %w", err)
	}
	defer ranker.Close()

	sections, warnings, err := ranker.Sections(c.Context, job)
	if err != nil {
		return fmt.Errorf("loading documents failed: %w", err)
	}
	for _, w := range warnings {
		slog.Warn(w)
	}

	summaries := make([]sectionSummary, len(sections))
	for i, s := range sections {
		summaries[i] = sectionSummary{
			Document:   s.DocumentName(),
			Title:      s.Title,
			PageNumber: s.PageNumber,
			Type:       s.Type,
			WordCount:  s.WordCount,
		}
	}
	return writeJSON(c.App.Writer, summaries)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
