package athletics

import (
	"errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/dreamerjackson/ducrawler/spider"
	"github.com/titanous/json5"
	"go.uber.org/zap"
)

const (
	Name           = "athletics"
	URL            = "https://denverpioneers.com/index.aspx"
	ruleScoreboard = "scoreboard"

	sectionSelector = `section[aria-labelledby="h2_scoreboard"]`
	variable        = "obj"
)

const (
	UnknownTeam     = "Unknown DU Team"
	UnknownOpponent = "Unknown Opponent"
	UnknownDate     = "Unknown Date"
)

type Event struct {
	Team     string `json:"duTeam"`
	Opponent string `json:"opponent"`
	Date     string `json:"date"`
}

func NewTask(opts ...spider.Option) *spider.Task {
	t := spider.NewTask(append([]spider.Option{
		spider.WithName(Name),
		spider.WithURL(URL),
		spider.WithCollection("events"),
		spider.WithOutput("athletic_events.json"),
		spider.WithMaxDepth(0),
	}, opts...)...)

	t.Rule = spider.RuleTree{
		Root: func() ([]*spider.Request, error) {
			return t.RootRequest(ruleScoreboard)
		},
		Trunk: map[string]*spider.Rule{
			ruleScoreboard: {
				ItemFields: []string{"duTeam", "opponent", "date"},
				ParseFunc:  ParseScoreboard,
			},
		},
	}

	return t
}

// ParseScoreboard decodes the scoreboard blob. Any failure to find or decode
// it fails the whole page.
func ParseScoreboard(ctx *spider.Context) (spider.ParseResult, error) {
	doc, err := ctx.Doc()
	if err != nil {
		return spider.ParseResult{}, err
	}

	blob, err := Isolate(doc.Selection)
	if err != nil {
		return spider.ParseResult{}, &spider.ParseError{URL: ctx.Req.URL, Stage: "isolate", Err: err}
	}

	data, err := Decode(blob)
	if err != nil {
		return spider.ParseResult{}, &spider.ParseError{URL: ctx.Req.URL, Stage: "decode", Err: err}
	}

	events := Events(data)

	result := spider.ParseResult{}
	for _, e := range events {
		result.Items = append(result.Items, e)
	}

	ctx.Logger().Debug("parse scoreboard", zap.Int("events", len(events)))

	return result, nil
}

// Isolate returns the object literal assigned in the first scoreboard script
// that contains one.
func Isolate(root *goquery.Selection) (string, error) {
	section := root.Find(sectionSelector)
	if section.Length() == 0 {
		return "", errors.New("scoreboard section not found")
	}

	scripts := section.Find("script")
	if scripts.Length() == 0 {
		return "", errors.New("scoreboard script not found")
	}

	err := spider.ErrBlobNotFound
	for i := range scripts.Nodes {
		var blob string
		blob, err = spider.ExtractJSObject(scripts.Eq(i).Text(), variable)
		if err == nil {
			return blob, nil
		}
	}

	return "", err
}

// Decode parses the isolated literal. Both JSON and JS object syntax are
// accepted; the literal must hold a "data" array.
func Decode(blob string) ([]interface{}, error) {
	var raw map[string]interface{}
	if err := json5.Unmarshal([]byte(blob), &raw); err != nil {
		return nil, err
	}

	data, ok := raw["data"]
	if !ok || data == nil {
		return nil, errors.New(`missing "data" list`)
	}

	list, ok := data.([]interface{})
	if !ok {
		return nil, errors.New(`"data" is not a list`)
	}

	return list, nil
}

// Events maps every element of the decoded list to an Event, substituting
// the Unknown sentinels for absent fields.
func Events(data []interface{}) []Event {
	events := make([]Event, 0, len(data))
	for _, d := range data {
		events = append(events, Event{
			Team:     spider.Lookup(d, UnknownTeam, "sport", "title"),
			Opponent: spider.Lookup(d, UnknownOpponent, "opponent", "title"),
			Date:     spider.Lookup(d, UnknownDate, "date"),
		})
	}

	return events
}
