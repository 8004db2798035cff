package spider

import (
	"errors"
	"net/url"
)

// 单个请求
type Request struct {
	Task     *Task
	URL      string
	Method   string
	Depth    int64
	RuleName string
	TmpData  Temp
}

func (r *Request) Check() error {
	if r.Task != nil && r.Depth > r.Task.MaxDepth {
		return errors.New("max depth limit reached")
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return err
	}

	if !u.IsAbs() {
		return errors.New("url is not absolute: " + r.URL)
	}

	return nil
}

// Follow builds a request one level below r, resolving ref against r.URL.
func (r *Request) Follow(ref string, ruleName string) (*Request, error) {
	base, err := url.Parse(r.URL)
	if err != nil {
		return nil, err
	}

	u, err := base.Parse(ref)
	if err != nil {
		return nil, err
	}

	return &Request{
		Task:     r.Task,
		URL:      u.String(),
		Method:   "GET",
		Depth:    r.Depth + 1,
		RuleName: ruleName,
	}, nil
}
