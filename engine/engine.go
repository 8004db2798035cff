package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreamerjackson/ducrawler/spider"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Report summarises one task run.
type Report struct {
	Task         string
	URL          string
	Output       string
	Records      int
	Followed     int
	FollowFailed int
	Gaps         int
	Err          error
}

type Crawler struct {
	options
}

func NewCrawler(opts ...Option) *Crawler {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	return &Crawler{options: options}
}

// Run executes the seed tasks one after another. A failed task does not stop
// the others; every failure is part of the returned error.
func (c *Crawler) Run(ctx context.Context) ([]Report, error) {
	var err error

	reports := make([]Report, 0, len(c.Seeds))
	for _, task := range c.Seeds {
		r := c.RunTask(ctx, task)
		if r.Err != nil {
			c.Logger.Error("task failed", zap.String("task", task.Name), zap.Error(r.Err))
			err = multierr.Append(err, fmt.Errorf("task %s: %w", task.Name, r.Err))
		} else {
			c.Logger.Info("task done",
				zap.String("task", task.Name),
				zap.Int("records", r.Records),
				zap.Int("follow_failed", r.FollowFailed),
			)
		}
		reports = append(reports, r)
	}

	return reports, err
}

// RunTask fetches and parses the root requests of task, follows the requests
// they produce and saves the collected items. Failures of a root request or
// of the storage abort the task; failures of follow-up requests do not.
func (c *Crawler) RunTask(ctx context.Context, task *spider.Task) Report {
	r := Report{Task: task.Name, Output: task.Output}

	fetcher := task.Fetcher
	if fetcher == nil {
		fetcher = c.Fetcher
	}

	storage := task.Storage
	if storage == nil {
		storage = c.Storage
	}

	if fetcher == nil || storage == nil {
		r.Err = errors.New("task has no fetcher or storage")
		return r
	}

	logger := c.Logger.With(zap.String("task", task.Name))

	roots, err := task.Rule.Root()
	if err != nil {
		r.Err = err
		return r
	}

	var (
		items  []interface{}
		fields []string
		next   []*spider.Request
	)

	for _, req := range roots {
		req.Task = task
		if r.URL == "" {
			r.URL = req.URL
		}

		result, rule, err := c.handle(ctx, fetcher, logger, req)
		if err != nil {
			r.Err = err
			return r
		}

		if fields == nil {
			fields = rule.ItemFields
		}

		items = append(items, result.Items...)
		next = append(next, result.Requests...)
		r.Gaps += len(result.Gaps)
	}

	followed, err := c.follow(ctx, fetcher, logger, next)
	if err != nil {
		r.Err = err
		return r
	}

	r.Followed = followed.done
	r.FollowFailed = followed.failed
	r.Gaps += followed.gaps
	items = append(items, followed.items...)
	r.Records = len(items)

	cell := &spider.DataCell{
		Task:       task.Name,
		Collection: task.Collection,
		Output:     task.Output,
		URL:        r.URL,
		Fields:     fields,
		Items:      items,
	}

	if err := storage.Save(cell); err != nil {
		r.Err = err
	}

	return r
}

type followStats struct {
	done   int
	failed int
	gaps   int
	items  []interface{}
}

// follow handles queue strictly in order, one request at a time: a request is
// fetched only after the previous one was fetched and parsed. Requests a rule
// returns are appended to the end of the queue. A failed request is logged
// and skipped.
func (c *Crawler) follow(ctx context.Context, fetcher spider.Fetcher, logger *zap.Logger, queue []*spider.Request) (followStats, error) {
	var s followStats

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return s, err
		}

		req := queue[0]
		queue = queue[1:]

		result, _, err := c.handle(ctx, fetcher, logger, req)
		if err != nil {
			s.failed++
			logger.Warn("follow-up request failed",
				zap.String("url", req.URL),
				zap.String("rule", req.RuleName),
				zap.Error(err),
			)
			continue
		}

		s.done++
		s.gaps += len(result.Gaps)
		s.items = append(s.items, result.Items...)
		queue = append(queue, result.Requests...)
	}

	return s, nil
}

func (c *Crawler) handle(ctx context.Context, fetcher spider.Fetcher, logger *zap.Logger, req *spider.Request) (spider.ParseResult, *spider.Rule, error) {
	if err := req.Check(); err != nil {
		return spider.ParseResult{}, nil, err
	}

	rule, ok := req.Task.Rule.Trunk[req.RuleName]
	if !ok {
		return spider.ParseResult{}, nil, fmt.Errorf("%w: %s", spider.ErrNoRule, req.RuleName)
	}

	logger.Debug("fetch", zap.String("url", req.URL), zap.String("rule", req.RuleName))

	body, err := fetcher.Get(ctx, req)
	if err != nil {
		return spider.ParseResult{}, nil, err
	}

	result, err := rule.ParseFunc(&spider.Context{Body: body, Req: req, Log: logger})
	if err != nil {
		return spider.ParseResult{}, nil, err
	}

	for _, gap := range result.Gaps {
		logger.Debug("extraction gap", zap.String("url", req.URL), zap.Stringer("gap", gap))
	}

	for _, nr := range result.Requests {
		if nr.Task == nil {
			nr.Task = req.Task
		}
	}

	return result, rule, nil
}
