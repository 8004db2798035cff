package engine

import (
	"github.com/dreamerjackson/ducrawler/spider"
	"go.uber.org/zap"
)

type Option func(opts *options)

type options struct {
	Fetcher spider.Fetcher
	Storage spider.DataRepository
	Logger  *zap.Logger
	Seeds   []*spider.Task
}

var defaultOptions = options{
	Logger: zap.NewNop(),
}

func WithStorage(s spider.DataRepository) Option {
	return func(opts *options) {
		opts.Storage = s
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.Logger = logger
	}
}

func WithFetcher(fetcher spider.Fetcher) Option {
	return func(opts *options) {
		opts.Fetcher = fetcher
	}
}

func WithSeeds(seed []*spider.Task) Option {
	return func(opts *options) {
		opts.Seeds = seed
	}
}
