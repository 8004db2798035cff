package spider

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

type Context struct {
	Body []byte
	Req  *Request
	Log  *zap.Logger
}

// Doc parses the body as an HTML document.
func (c *Context) Doc() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(c.Body))
	if err != nil {
		return nil, &ParseError{URL: c.Req.URL, Stage: "html", Err: err}
	}

	return doc, nil
}

func (c *Context) Logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}

	return c.Log
}
