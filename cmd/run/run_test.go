package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dreamerjackson/ducrawler/engine"
	"github.com/dreamerjackson/ducrawler/spider"
	"github.com/dreamerjackson/ducrawler/tasklib/athletics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	PrintSummary(&out, "results", []engine.Report{
		{Task: "calendar", Output: "calendar_events.json", Records: 3, Followed: 2, FollowFailed: 1},
		{Task: "athletics", Output: "athletic_events.json", Err: errors.New("status code 503")},
	})

	s := out.String()
	assert.Contains(t, s, "calendar")
	assert.Contains(t, s, filepath.Join("results", "calendar_events.json"))
	assert.Contains(t, s, "ok")
	assert.Contains(t, s, "status code 503")
}

func TestRunUnknownTask(t *testing.T) {
	c := DefaultConfig()
	c.OutputDir = t.TempDir()

	err := Run(context.Background(), c, []string{"nope"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunAthletics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><section aria-labelledby="h2_scoreboard"><script>
var obj = {"data":[{"sport":{"title":"Hockey"},"opponent":{"title":"Colorado College"},"date":"2025-11-01"}]};
</script></section></body></html>`)
	}))
	defer srv.Close()

	c := DefaultConfig()
	c.LogLevel = "error"
	c.FetcherType = "base"
	c.OutputDir = t.TempDir()
	c.Tasks = []spider.TaskConfig{{Name: athletics.Name, URL: srv.URL}}

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), c, []string{athletics.Name}, &out))
	assert.Contains(t, out.String(), athletics.Name)

	b, err := os.ReadFile(filepath.Join(c.OutputDir, "athletic_events.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[{"duTeam":"Hockey","opponent":"Colorado College","date":"2025-11-01"}]}`, string(b))
}
