package calendar

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dreamerjackson/ducrawler/spider"
	"go.uber.org/zap"
)

const (
	Name       = "calendar"
	URL        = "https://www.du.edu/calendar"
	ruleList   = "event_list"
	ruleDetail = "event_detail"

	ParamStart   = "start_date"
	ParamEnd     = "end_date"
	DefaultStart = "2025-01-01"
	DefaultEnd   = "2025-12-31"
)

const (
	cardSelector        = ".events-listing__item a.event-card"
	clockSelector       = ".icon-du-clock"
	descriptionSelector = ".event-description"
	tmpKey              = "event"
)

type Event struct {
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Time        *string `json:"time,omitempty"`
	URL         string  `json:"url"`
	Description *string `json:"description,omitempty"`
}

// NewTask builds the calendar task. start and end are sent as query
// parameters as they are; the listing is not assumed to honour them.
func NewTask(start, end string, opts ...spider.Option) *spider.Task {
	t := spider.NewTask(append([]spider.Option{
		spider.WithName(Name),
		spider.WithURL(URL),
		spider.WithParam(ParamStart, start),
		spider.WithParam(ParamEnd, end),
		spider.WithCollection("events"),
		spider.WithOutput("calendar_events.json"),
		spider.WithMaxDepth(1),
	}, opts...)...)

	t.Rule = spider.RuleTree{
		Root: func() ([]*spider.Request, error) {
			for _, k := range []string{ParamStart, ParamEnd} {
				if err := validateDate(k, t.Params[k]); err != nil {
					return nil, err
				}
			}

			return t.RootRequest(ruleList)
		},
		Trunk: map[string]*spider.Rule{
			ruleList: {
				ItemFields: []string{"title", "date", "time", "url", "description"},
				ParseFunc:  ParseEventList,
			},
			ruleDetail: {ParseFunc: ParseEventDetail},
		},
	}

	return t
}

func validateDate(key, v string) error {
	if v == "" {
		return nil
	}

	if _, err := time.Parse("2006-01-02", v); err != nil {
		return fmt.Errorf("%s must be YYYY-MM-DD, got %q", key, v)
	}

	return nil
}

// ParseEventList extracts the event cards and queues one detail request per
// event, in listing order.
func ParseEventList(ctx *spider.Context) (spider.ParseResult, error) {
	doc, err := ctx.Doc()
	if err != nil {
		return spider.ParseResult{}, err
	}

	base, err := url.Parse(ctx.Req.URL)
	if err != nil {
		return spider.ParseResult{}, &spider.ParseError{URL: ctx.Req.URL, Stage: "base url", Err: err}
	}

	events, gaps := Extract(doc.Selection, base)

	result := spider.ParseResult{Gaps: gaps}
	for _, e := range events {
		req, err := ctx.Req.Follow(e.URL, ruleDetail)
		if err != nil {
			return spider.ParseResult{}, err
		}

		req.TmpData = spider.Temp{tmpKey: e}

		result.Items = append(result.Items, e)
		result.Requests = append(result.Requests, req)
	}

	ctx.Logger().Debug("parse event list", zap.Int("events", len(events)), zap.String("url", ctx.Req.URL))

	return result, nil
}

// Extract maps event cards to events. A card without a usable href is
// dropped; a card without a clock icon gets no time, which is not a gap.
func Extract(root *goquery.Selection, base *url.URL) ([]*Event, []spider.Gap) {
	var (
		events []*Event
		gaps   []spider.Gap
	)

	root.Find(cardSelector).Each(func(i int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			gaps = append(gaps, spider.Gap{Index: i, Field: "href"})
			return
		}

		u, err := base.Parse(href)
		if err != nil {
			gaps = append(gaps, spider.Gap{Index: i, Field: "href"})
			return
		}

		e := &Event{
			Title: strings.TrimSpace(s.Find("h3").First().Text()),
			Date:  strings.TrimSpace(s.Find("p").First().Text()),
			URL:   u.String(),
		}

		if e.Title == "" {
			gaps = append(gaps, spider.Gap{Index: i, Field: "title"})
		}

		if t := Time(s); t != "" {
			e.Time = &t
		}

		events = append(events, e)
	})

	return events, gaps
}

// Time is the text of the element holding the clock icon, or "" when the
// card has no icon.
func Time(card *goquery.Selection) string {
	icon := card.Find(clockSelector).First()
	if icon.Length() == 0 {
		return ""
	}

	return strings.TrimSpace(icon.Parent().Text())
}

// ParseEventDetail copies the description of a detail page onto the event
// that queued it. A page without one leaves the event unchanged.
func ParseEventDetail(ctx *spider.Context) (spider.ParseResult, error) {
	e, ok := ctx.Req.TmpData.Get(tmpKey).(*Event)
	if !ok {
		return spider.ParseResult{}, errors.New("detail request without event")
	}

	doc, err := ctx.Doc()
	if err != nil {
		return spider.ParseResult{}, err
	}

	desc := Description(doc.Selection)
	if desc == "" {
		return spider.ParseResult{Gaps: []spider.Gap{{Field: "description"}}}, nil
	}

	e.Description = &desc

	return spider.ParseResult{}, nil
}

func Description(root *goquery.Selection) string {
	return strings.TrimSpace(root.Find(descriptionSelector).First().Text())
}
