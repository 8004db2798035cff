package spider

import (
	"net/url"

	"go.uber.org/zap"
)

// 一个任务实例
type Task struct {
	Rule RuleTree
	Options
}

// TaskConfig is the per-task section of the config file.
type TaskConfig struct {
	Name   string            `json:"name"`
	URL    string            `json:"url"`
	Output string            `json:"output"`
	Params map[string]string `json:"params"`
}

type Options struct {
	Name       string            `json:"name"` // 任务名称，应保证唯一性
	URL        string            `json:"url"`
	Params     map[string]string `json:"params"` // 追加到根请求的查询参数
	Collection string            `json:"collection"`
	Output     string            `json:"output"` // 输出文件名
	MaxDepth   int64             `json:"max_depth"`
	Fetcher    Fetcher
	Storage    DataRepository
	logger     *zap.Logger
}

var defaultOptions = Options{
	logger:   zap.NewNop(),
	MaxDepth: 1,
}

type Option func(opts *Options)

func NewTask(opts ...Option) *Task {
	options := defaultOptions
	options.Params = map[string]string{}
	for _, opt := range opts {
		opt(&options)
	}

	d := &Task{}
	d.Options = options

	return d
}

// Apply changes the options of an existing task.
func (t *Task) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(&t.Options)
	}
}

func (t *Task) Logger() *zap.Logger {
	return t.logger
}

// RootURL is the task URL with Params merged into its query.
func (t *Task) RootURL() (string, error) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return "", err
	}

	if len(t.Params) == 0 {
		return u.String(), nil
	}

	q := u.Query()
	for k, v := range t.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// RootRequest is the usual Root of a single-page task.
func (t *Task) RootRequest(ruleName string) ([]*Request, error) {
	u, err := t.RootURL()
	if err != nil {
		return nil, err
	}

	return []*Request{{
		Task:     t,
		URL:      u,
		Method:   "GET",
		RuleName: ruleName,
	}}, nil
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *Options) {
		opts.logger = logger
	}
}

func WithName(name string) Option {
	return func(opts *Options) {
		opts.Name = name
	}
}

func WithURL(url string) Option {
	return func(opts *Options) {
		opts.URL = url
	}
}

func WithParam(key, value string) Option {
	return func(opts *Options) {
		if opts.Params == nil {
			opts.Params = map[string]string{}
		}
		opts.Params[key] = value
	}
}

func WithCollection(collection string) Option {
	return func(opts *Options) {
		opts.Collection = collection
	}
}

func WithOutput(output string) Option {
	return func(opts *Options) {
		opts.Output = output
	}
}

func WithMaxDepth(maxDepth int64) Option {
	return func(opts *Options) {
		opts.MaxDepth = maxDepth
	}
}

func WithFetcher(f Fetcher) Option {
	return func(opts *Options) {
		opts.Fetcher = f
	}
}

func WithStorage(s DataRepository) Option {
	return func(opts *Options) {
		opts.Storage = s
	}
}

// ConfigOptions turns a TaskConfig into options, skipping empty values.
func ConfigOptions(cfg TaskConfig) []Option {
	var opts []Option
	if cfg.URL != "" {
		opts = append(opts, WithURL(cfg.URL))
	}

	if cfg.Output != "" {
		opts = append(opts, WithOutput(cfg.Output))
	}

	for k, v := range cfg.Params {
		opts = append(opts, WithParam(k, v))
	}

	return opts
}
