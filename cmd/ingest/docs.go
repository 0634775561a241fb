package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roivaz/ragsplit/internal/config"
	"github.com/roivaz/ragsplit/internal/db"
	dbmigrate "github.com/roivaz/ragsplit/internal/db/migrate"
	"github.com/roivaz/ragsplit/internal/embeddings"
	"github.com/roivaz/ragsplit/internal/ingest"
	"github.com/roivaz/ragsplit/internal/logging"
	"github.com/roivaz/ragsplit/internal/source"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Ingest a landing directory, a git clone or a GitHub repository into the vector store",
	Long: `Exactly one source is read per run:

  --landing <dir>           landing tree <dir>/<category>/<sub_category>/<file>
  --repo-path <dir>         local clone, read at --ref
  --github owner/repo@ref   GitHub repository archive

Every file is split, embedded and stored; the stored chunks of a file are
replaced as a whole.`,
	RunE: runDocs,
}

func init() {
	addDocsFlags(docsCmd)
}

func addDocsFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("landing", "", "Landing directory root (defaults to landing_dir when no other source is given)")
	f.StringSlice("category", nil, "Landing categories to read (default: all)")
	f.Bool("dated", false, "Landing categories hold extraction_date=<date> folders")
	f.String("extraction-date", "", "Extraction date to read from a dated landing tree (default: newest)")
	f.String("repo-path", "", "Local git clone to read")
	f.String("repo-url", "", "Clone URL used when --repo-path does not exist yet")
	f.String("ref", "", "Branch, tag or commit to read (default: HEAD)")
	f.String("github", "", "GitHub repository as owner/repo[@ref] or a repository URL")
	f.StringSlice("include", []string{"**/*.md", "**/*.mdx", "**/*.txt", "**/*.json", "**/*.yaml", "**/*.yml", "**/*.html", "**/*.pdf"}, "Globs of repository files to read")
	f.StringSlice("exclude", []string{"**/.git/**", "**/vendor/**", "**/node_modules/**"}, "Globs of repository files to skip")
	f.Int("max-files", 0, "Maximum repository files to read (0 = no limit)")
	f.Bool("skip-embeddings", false, "Store chunks without embeddings")
	f.Int(config.KeyIngestWorkers, 4, "Files processed concurrently")
	f.Bool(config.KeyAutoMigrate, false, "Apply pending migrations before ingesting")
}

func bindDocsFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	_ = viper.BindPFlag(config.KeyIngestWorkers, f.Lookup(config.KeyIngestWorkers))
	_ = viper.BindPFlag(config.KeyAutoMigrate, f.Lookup(config.KeyAutoMigrate))
}

func runDocs(cmd *cobra.Command, _ []string) error {
	cfg, err := ingest.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireStore(); err != nil {
		return err
	}
	log := newLogger()

	src, err := sourceFromFlags(cmd, cfg, log)
	if err != nil {
		return err
	}
	factory, err := newFactory(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	database, err := db.NewDatabase(db.Config{DSN: cfg.PostgresURL, Debug: cfg.DBDebug})
	if err != nil {
		return err
	}
	defer database.Close()

	if err := dbmigrate.EnsureCurrent(ctx, database.Bun(), cfg.MigrationsDir, cfg.AutoMigrate); err != nil {
		return err
	}

	opts := []ingest.Option{
		ingest.WithWorkers(cfg.Workers),
		ingest.WithPrettyJSON(cfg.Pretty),
		ingest.WithLogger(log),
	}
	if skip, _ := cmd.Flags().GetBool("skip-embeddings"); !skip {
		client, err := embeddings.NewClient(embeddings.Config{
			BaseURL:   cfg.OllamaURL,
			Model:     cfg.EmbeddingModel,
			Timeout:   cfg.LLMCallTimeout,
			BatchSize: cfg.EmbedBatchSize,
		}, log)
		if err != nil {
			return err
		}
		opts = append(opts, ingest.WithEmbedder(client))
	}

	svc := ingest.NewService(factory, db.NewChunkRepository(database), opts...)
	stats, err := svc.Run(ctx, src)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "files=%d skipped=%d failed=%d documents=%d embedded=%d elapsed=%s\n",
		stats.Files, stats.Skipped, stats.Failed, stats.Documents, stats.Embedded, stats.ElapsedTime)
	return nil
}

func sourceFromFlags(cmd *cobra.Command, cfg ingest.Config, log logging.Logger) (source.Source, error) {
	flags := cmd.Flags()
	landing, _ := flags.GetString("landing")
	repoPath, _ := flags.GetString("repo-path")
	repoURL, _ := flags.GetString("repo-url")
	ghSpec, _ := flags.GetString("github")
	ref, _ := flags.GetString("ref")
	include, _ := flags.GetStringSlice("include")
	exclude, _ := flags.GetStringSlice("exclude")
	maxFiles, _ := flags.GetInt("max-files")
	filter := source.Filter{Include: include, Exclude: exclude, MaxFiles: maxFiles}

	selected := 0
	for _, v := range []string{landing, repoPath, ghSpec} {
		if v != "" {
			selected++
		}
	}
	if selected > 1 {
		return nil, errors.New("--landing, --repo-path and --github are mutually exclusive")
	}

	switch {
	case ghSpec != "":
		owner, repo, specRef, err := source.ParseRepo(ghSpec)
		if err != nil {
			return nil, err
		}
		if ref == "" {
			ref = specRef
		}
		return source.NewGitHub(source.NewGitHubClient(cfg.GitHubToken), owner, repo, ref, filter, log), nil
	case repoPath != "":
		return source.NewGit(source.GitConfig{Path: repoPath, URL: repoURL, Ref: ref, Filter: filter}, log), nil
	case repoURL != "":
		return nil, errors.New("--repo-url requires --repo-path")
	default:
		if landing == "" {
			landing = cfg.LandingDir
		}
		if landing == "" {
			return nil, errors.New("one of --landing, --repo-path or --github is required")
		}
		categories, _ := flags.GetStringSlice("category")
		dated, _ := flags.GetBool("dated")
		date, _ := flags.GetString("extraction-date")
		return source.NewLanding(source.LandingConfig{
			Root:           filepath.Clean(landing),
			Categories:     categories,
			Dated:          dated || date != "",
			ExtractionDate: date,
		}, log), nil
	}
}
