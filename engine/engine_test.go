package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dreamerjackson/ducrawler/spider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepository struct {
	cells []*spider.DataCell
	err   error
}

func (m *memRepository) Save(cell *spider.DataCell) error {
	if m.err != nil {
		return m.err
	}
	m.cells = append(m.cells, cell)
	return nil
}

type item struct {
	Name  string
	Extra string
}

// newListTask builds a two-level task: the root page lists names separated
// by commas, each name is followed to /detail/<name> whose body is copied
// into Extra.
func newListTask(url string) *spider.Task {
	t := spider.NewTask(
		spider.WithName("list"),
		spider.WithURL(url),
		spider.WithCollection("items"),
		spider.WithOutput("list.json"),
	)
	t.Rule = spider.RuleTree{
		Root: func() ([]*spider.Request, error) {
			return t.RootRequest("list")
		},
		Trunk: map[string]*spider.Rule{
			"list": {
				ItemFields: []string{"name"},
				ParseFunc: func(ctx *spider.Context) (spider.ParseResult, error) {
					body := strings.TrimSpace(string(ctx.Body))
					if body == "" {
						return spider.ParseResult{}, &spider.ParseError{URL: ctx.Req.URL, Stage: "list", Err: errors.New("empty")}
					}
					result := spider.ParseResult{}
					for _, name := range strings.Split(body, ",") {
						it := &item{Name: name}
						req, err := ctx.Req.Follow("/detail/"+name, "detail")
						if err != nil {
							return result, err
						}
						req.TmpData = spider.Temp{"item": it}
						result.Items = append(result.Items, it)
						result.Requests = append(result.Requests, req)
					}
					return result, nil
				},
			},
			"detail": {
				ParseFunc: func(ctx *spider.Context) (spider.ParseResult, error) {
					it := ctx.Req.TmpData.Get("item").(*item)
					it.Extra = string(ctx.Body)
					return spider.ParseResult{Gaps: []spider.Gap{{Index: 0, Field: "x"}}}, nil
				},
			},
		},
	}
	return t
}

type listServer struct {
	*httptest.Server
	mu       sync.Mutex
	order    []string
	inFlight int32
	maxSeen  int32
}

func newListServer(t *testing.T, list string, failing ...string) *listServer {
	s := &listServer{}
	fail := map[string]bool{}
	for _, f := range failing {
		fail[f] = true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, list)
	})
	mux.HandleFunc("/detail/", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&s.inFlight, 1)
		defer atomic.AddInt32(&s.inFlight, -1)
		if n > atomic.LoadInt32(&s.maxSeen) {
			atomic.StoreInt32(&s.maxSeen, n)
		}
		time.Sleep(5 * time.Millisecond)

		name := strings.TrimPrefix(r.URL.Path, "/detail/")
		s.mu.Lock()
		s.order = append(s.order, name)
		s.mu.Unlock()

		if fail[name] {
			http.Error(w, "gone", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "about "+name)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

func TestRunTaskFollowsInOrder(t *testing.T) {
	srv := newListServer(t, "a,b,c,d", "b")
	repo := &memRepository{}

	c := NewCrawler(
		WithFetcher(spider.NewFetchService(spider.BaseFetchType)),
		WithStorage(repo),
	)
	r := c.RunTask(context.Background(), newListTask(srv.URL+"/list"))

	require.NoError(t, r.Err)
	assert.Equal(t, 4, r.Records)
	assert.Equal(t, 3, r.Followed)
	assert.Equal(t, 1, r.FollowFailed)
	assert.Equal(t, 3, r.Gaps)
	assert.Equal(t, srv.URL+"/list", r.URL)

	assert.Equal(t, []string{"a", "b", "c", "d"}, srv.order)
	assert.Equal(t, int32(1), srv.maxSeen)

	require.Len(t, repo.cells, 1)
	cell := repo.cells[0]
	assert.Equal(t, "items", cell.Collection)
	assert.Equal(t, "list.json", cell.Output)
	assert.Equal(t, []string{"name"}, cell.Fields)
	require.Len(t, cell.Items, 4)
	assert.Equal(t, &item{Name: "a", Extra: "about a"}, cell.Items[0])
	assert.Equal(t, &item{Name: "b"}, cell.Items[1])
	assert.Equal(t, &item{Name: "d", Extra: "about d"}, cell.Items[3])
}

func TestRunTaskPrimaryFailure(t *testing.T) {
	srv := newListServer(t, "a")
	repo := &memRepository{}
	c := NewCrawler(WithFetcher(spider.NewFetchService(spider.BaseFetchType)), WithStorage(repo))

	r := c.RunTask(context.Background(), newListTask(srv.URL+"/nope"))
	var fe *spider.FetchError
	require.True(t, errors.As(r.Err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Empty(t, repo.cells)

	empty := newListServer(t, "")
	r = c.RunTask(context.Background(), newListTask(empty.URL+"/list"))
	var pe *spider.ParseError
	require.True(t, errors.As(r.Err, &pe))
	assert.Empty(t, repo.cells)
}

func TestRunTaskStorageFailure(t *testing.T) {
	srv := newListServer(t, "a")
	repo := &memRepository{err: &spider.IOError{Path: "results/list.json", Err: errors.New("read-only")}}
	c := NewCrawler(WithFetcher(spider.NewFetchService(spider.BaseFetchType)), WithStorage(repo))

	r := c.RunTask(context.Background(), newListTask(srv.URL+"/list"))
	var ioErr *spider.IOError
	require.True(t, errors.As(r.Err, &ioErr))
	assert.Equal(t, "results/list.json", ioErr.Path)
}

func TestRunTaskCanceled(t *testing.T) {
	srv := newListServer(t, "a,b")
	repo := &memRepository{}
	c := NewCrawler(WithFetcher(spider.NewFetchService(spider.BaseFetchType)), WithStorage(repo))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := c.RunTask(ctx, newListTask(srv.URL+"/list"))
	assert.Error(t, r.Err)
	assert.Empty(t, repo.cells)
}

func TestRunContinuesAfterFailedTask(t *testing.T) {
	srv := newListServer(t, "a")
	repo := &memRepository{}

	bad := newListTask(srv.URL + "/nope")
	bad.Name = "bad"
	good := newListTask(srv.URL + "/list")

	c := NewCrawler(
		WithFetcher(spider.NewFetchService(spider.BaseFetchType)),
		WithStorage(repo),
		WithSeeds([]*spider.Task{bad, good}),
	)
	reports, err := c.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "task bad")
	require.Len(t, reports, 2)
	assert.Error(t, reports[0].Err)
	assert.NoError(t, reports[1].Err)
	require.Len(t, repo.cells, 1)
	assert.Equal(t, "list", repo.cells[0].Task)
}

func TestRunTaskMissingDeps(t *testing.T) {
	r := NewCrawler().RunTask(context.Background(), spider.NewTask(spider.WithName("x")))
	assert.Error(t, r.Err)
}
