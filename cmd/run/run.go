package run

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dreamerjackson/ducrawler/engine"
	"github.com/dreamerjackson/ducrawler/log"
	"github.com/dreamerjackson/ducrawler/proxy"
	"github.com/dreamerjackson/ducrawler/spider"
	"github.com/dreamerjackson/ducrawler/storage/jsonstorage"
	"github.com/dreamerjackson/ducrawler/storage/sqlstorage"
	_ "github.com/dreamerjackson/ducrawler/tasklib"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var Cmd = &cobra.Command{
	Use:          "run [task...]",
	Short:        "crawl the registered sources and write the results.",
	Long:         "crawl the registered sources, all of them when no task is named, and write one JSON file per task.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			return fmt.Errorf("load config %s: %w", configPath, err)
		}

		return Run(cmd.Context(), cfg, args, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(
		&configPath, "config", DefaultConfigPath, "path of the TOML config file")
}

// Run crawls the named tasks, or every registered task, and prints a
// summary table to out. The returned error joins every task failure.
func Run(ctx context.Context, cfg Config, names []string, out io.Writer) error {
	logger, closer, err := log.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	zap.ReplaceGlobals(logger)

	tasks, err := spider.TaskStore.Select(names...)
	if err != nil {
		return err
	}

	overrides := make(map[string]spider.TaskConfig, len(cfg.Tasks))
	for _, tc := range cfg.Tasks {
		overrides[tc.Name] = tc
	}

	for _, t := range tasks {
		t.Apply(spider.WithLogger(logger.Named(t.Name)))
		if tc, ok := overrides[t.Name]; ok {
			t.Apply(spider.ConfigOptions(tc)...)
		}
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	storage, err := newStorage(cfg, logger)
	if err != nil {
		return err
	}

	crawler := engine.NewCrawler(
		engine.WithFetcher(fetcher),
		engine.WithStorage(storage),
		engine.WithLogger(logger),
		engine.WithSeeds(tasks),
	)

	reports, err := crawler.Run(ctx)
	PrintSummary(out, cfg.OutputDir, reports)

	return err
}

func newFetcher(cfg Config) (spider.Fetcher, error) {
	opts := []spider.FetchOption{spider.WithFetchTimeout(cfg.Timeout)}

	if len(cfg.Proxy) > 0 {
		p, err := proxy.RoundRobinProxySwitcher(cfg.Proxy...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, spider.WithFetchProxy(p))
	}

	return spider.NewFetchService(spider.ParseFetchType(cfg.FetcherType), opts...), nil
}

func newStorage(cfg Config, logger *zap.Logger) (spider.DataRepository, error) {
	js := jsonstorage.New(
		jsonstorage.WithDir(cfg.OutputDir),
		jsonstorage.WithLogger(logger.Named("json")),
	)

	if cfg.SQLURL == "" {
		return js, nil
	}

	sq, err := sqlstorage.New(
		sqlstorage.WithSQLURL(cfg.SQLURL),
		sqlstorage.WithLogger(logger.Named("sqlDB")),
		sqlstorage.WithBatchCount(cfg.BatchCount),
	)
	if err != nil {
		return nil, fmt.Errorf("create sqlstorage: %w", err)
	}

	return &spider.MirroredRepository{
		Primary: js,
		Mirrors: []spider.DataRepository{sq},
		Logger:  logger.Named("mirror"),
	}, nil
}

func PrintSummary(out io.Writer, dir string, reports []engine.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Task", "Records", "Followed", "Follow Failed", "Gaps", "Output", "Status"})

	for _, r := range reports {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}

		t.AppendRow(table.Row{r.Task, r.Records, r.Followed, r.FollowFailed, r.Gaps, filepath.Join(dir, r.Output), status})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
