package athletics

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dreamerjackson/ducrawler/spider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(script string) string {
	return `<html><body>
<section aria-labelledby="h2_news"><script>var obj = {"data":[{"sport":{"title":"Wrong"}}]};</script></section>
<section aria-labelledby="h2_scoreboard">
  <h2 id="h2_scoreboard">Scoreboard</h2>
  <script src="/scoreboard.js"></script>
  <script>` + script + `</script>
</section>
</body></html>`
}

func parse(t *testing.T, html string) (spider.ParseResult, error) {
	req := &spider.Request{URL: "https://denverpioneers.com/index.aspx"}
	return ParseScoreboard(&spider.Context{Body: []byte(html), Req: req})
}

func TestParseScoreboard(t *testing.T) {
	script := `
	$(function () {
		var obj = {"data":[
			{"sport":{"title":"Soccer"},"opponent":{"title":"Air Force"},"date":"2025-09-01T19:00:00"},
			{"sport":{"title":"Hockey"},"opponent":null,"date":null},
			{"sport":null,"opponent":{"title":"St. Cloud State"}},
			{}
		]};
		render(obj);
	});`

	result, err := parse(t, page(script))
	require.NoError(t, err)

	assert.Equal(t, []interface{}{
		Event{Team: "Soccer", Opponent: "Air Force", Date: "2025-09-01T19:00:00"},
		Event{Team: "Hockey", Opponent: UnknownOpponent, Date: UnknownDate},
		Event{Team: UnknownTeam, Opponent: "St. Cloud State", Date: UnknownDate},
		Event{Team: UnknownTeam, Opponent: UnknownOpponent, Date: UnknownDate},
	}, result.Items)
	assert.Empty(t, result.Requests)
}

func TestParseScoreboardMissingOpponent(t *testing.T) {
	result, err := parse(t, page(`var obj = {"data":[{"sport":{"title":"Soccer"},"date":"2025-09-01"}]};`))
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, Event{Team: "Soccer", Opponent: "Unknown Opponent", Date: "2025-09-01"}, result.Items[0])
}

func TestParseScoreboardJSLiteral(t *testing.T) {
	result, err := parse(t, page(`var obj = {data: [{sport: {title: 'Lacrosse'}, date: '2025-03-01'}]};`))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{Event{Team: "Lacrosse", Opponent: UnknownOpponent, Date: "2025-03-01"}}, result.Items)
}

func TestParseScoreboardErrors(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		stage string
	}{
		{"no section", `<html><body><script>var obj = {"data":[]};</script></body></html>`, "isolate"},
		{"no script", `<section aria-labelledby="h2_scoreboard"></section>`, "isolate"},
		{"no assignment", page(`render({"data":[]});`), "isolate"},
		{"bad literal", page(`var obj = {"data":[{"sport": }]};`), "decode"},
		{"no data", page(`var obj = {"items":[]};`), "decode"},
		{"data not list", page(`var obj = {"data":{"a":1}};`), "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parse(t, tt.html)
			var pe *spider.ParseError
			require.True(t, errors.As(err, &pe), "%v", err)
			assert.Equal(t, tt.stage, pe.Stage)
			assert.Empty(t, result.Items)
		})
	}
}

func TestIsolateFirstMatchingScript(t *testing.T) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(page(`var obj = {"data":[]};`)))
	require.NoError(t, err)

	blob, err := Isolate(d.Selection)
	require.NoError(t, err)
	assert.Equal(t, `{"data":[]}`, blob)
}

func TestEventsEmpty(t *testing.T) {
	assert.Empty(t, Events(nil))

	events := Events([]interface{}{nil, "x"})
	assert.Equal(t, []Event{
		{UnknownTeam, UnknownOpponent, UnknownDate},
		{UnknownTeam, UnknownOpponent, UnknownDate},
	}, events)
}
