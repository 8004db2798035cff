package run

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dreamerjackson/ducrawler/spider"
	"github.com/go-micro/plugins/v4/config/encoder/toml"
	"go-micro.dev/v4/config"
	"go-micro.dev/v4/config/reader"
	"go-micro.dev/v4/config/reader/json"
	"go-micro.dev/v4/config/source"
	"go-micro.dev/v4/config/source/file"
)

const DefaultConfigPath = "config.toml"

type Config struct {
	LogLevel    string
	LogFile     string
	OutputDir   string
	FetcherType string
	Timeout     time.Duration
	Proxy       []string
	SQLURL      string
	BatchCount  int
	Tasks       []spider.TaskConfig
}

func DefaultConfig() Config {
	return Config{
		LogLevel:    "INFO",
		OutputDir:   "results",
		FetcherType: "browser",
		Timeout:     10 * time.Second,
		BatchCount:  50,
	}
}

// LoadConfig reads path as TOML on top of DefaultConfig. A missing file is
// an error only when required is set.
func LoadConfig(path string, required bool) (Config, error) {
	c := DefaultConfig()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return c, nil
		}

		return c, err
	}

	enc := toml.NewEncoder()
	cfg, err := config.NewConfig(config.WithReader(json.NewReader(reader.WithEncoder(enc))))
	if err != nil {
		return c, err
	}

	if err := cfg.Load(file.NewSource(
		file.WithPath(path),
		source.WithEncoder(enc),
	)); err != nil {
		return c, err
	}

	c.LogLevel = cfg.Get("logLevel").String(c.LogLevel)
	c.LogFile = cfg.Get("logFile").String(c.LogFile)
	c.OutputDir = cfg.Get("output", "dir").String(c.OutputDir)
	c.FetcherType = cfg.Get("fetcher", "type").String(c.FetcherType)
	c.Timeout = time.Duration(cfg.Get("fetcher", "timeout").Int(int(c.Timeout/time.Millisecond))) * time.Millisecond
	c.Proxy = cfg.Get("fetcher", "proxy").StringSlice(c.Proxy)
	c.SQLURL = cfg.Get("storage", "sqlURL").String(c.SQLURL)
	c.BatchCount = cfg.Get("storage", "batchCount").Int(c.BatchCount)

	if err := cfg.Get("tasks").Scan(&c.Tasks); err != nil {
		return c, err
	}

	return c, nil
}
