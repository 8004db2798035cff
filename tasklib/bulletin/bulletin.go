package bulletin

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dreamerjackson/ducrawler/spider"
	"go.uber.org/zap"
)

const (
	Name     = "bulletin"
	URL      = "https://bulletin.du.edu/undergraduate/coursedescriptions/comp/"
	ruleList = "course_list"

	DefaultPrefix = "COMP"

	// MinNumber is the lowest course number kept (upper division).
	MinNumber = 3000
)

const (
	blockSelector = "#coursedescriptionstextcontainer .courseblock"
	titleSelector = "p.courseblocktitle strong"
	descSelector  = "p.courseblockdesc"
)

type Course struct {
	Code  string `json:"course"`
	Title string `json:"title"`
}

// Candidate is a course block whose title matched the pattern.
type Candidate struct {
	Prefix      string
	Number      string
	Title       string
	Description string
}

var (
	spaceRe  = regexp.MustCompile(`[\s\p{Z}]+`)
	prereqRe = regexp.MustCompile(`(?i)prerequisites?:`)
)

// titleRe matches "<prefix> <4 digits> <title> (" and stops the title at the
// first " (", which opens the credit hours.
func titleRe(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`(` + regexp.QuoteMeta(prefix) + `)\s*([0-9]{4})\s+(.+?)\s+\(`)
}

func NewTask(prefix string, opts ...spider.Option) *spider.Task {
	t := spider.NewTask(append([]spider.Option{
		spider.WithName(Name),
		spider.WithURL(URL),
		spider.WithCollection("courses"),
		spider.WithOutput("bulletin.json"),
		spider.WithMaxDepth(0),
	}, opts...)...)

	re := titleRe(prefix)

	t.Rule = spider.RuleTree{
		Root: func() ([]*spider.Request, error) {
			return t.RootRequest(ruleList)
		},
		Trunk: map[string]*spider.Rule{
			ruleList: {
				ItemFields: []string{"course", "title"},
				ParseFunc: func(ctx *spider.Context) (spider.ParseResult, error) {
					return ParseCourseList(ctx, re)
				},
			},
		},
	}

	return t
}

func ParseCourseList(ctx *spider.Context, re *regexp.Regexp) (spider.ParseResult, error) {
	doc, err := ctx.Doc()
	if err != nil {
		return spider.ParseResult{}, err
	}

	candidates, gaps := Extract(doc.Selection, re)
	courses := Filter(candidates)

	result := spider.ParseResult{Gaps: gaps}
	for _, c := range courses {
		result.Items = append(result.Items, c)
	}

	ctx.Logger().Debug("parse course list",
		zap.Int("candidates", len(candidates)),
		zap.Int("courses", len(courses)),
		zap.Int("gaps", len(gaps)),
	)

	return result, nil
}

// Extract maps every course block to a candidate. Blocks without a title
// node or with a title that does not match re are reported as gaps.
func Extract(root *goquery.Selection, re *regexp.Regexp) ([]Candidate, []spider.Gap) {
	var (
		candidates []Candidate
		gaps       []spider.Gap
	)

	root.Find(blockSelector).Each(func(i int, s *goquery.Selection) {
		title := s.Find(titleSelector)
		if title.Length() == 0 {
			gaps = append(gaps, spider.Gap{Index: i, Field: "title"})
			return
		}

		c, ok := ParseTitle(title.Text(), re)
		if !ok {
			gaps = append(gaps, spider.Gap{Index: i, Field: "title pattern"})
			return
		}

		c.Description = s.Find(descSelector).Text()
		candidates = append(candidates, c)
	})

	return candidates, gaps
}

// ParseTitle collapses whitespace in text and matches it against re.
func ParseTitle(text string, re *regexp.Regexp) (Candidate, bool) {
	normalized := spaceRe.ReplaceAllString(strings.TrimSpace(text), " ")

	m := re.FindStringSubmatch(normalized)
	if m == nil {
		return Candidate{}, false
	}

	title := strings.TrimSpace(m[3])
	if title == "" {
		return Candidate{}, false
	}

	return Candidate{Prefix: m[1], Number: m[2], Title: title}, true
}

// Filter keeps upper-division candidates whose description does not list a
// prerequisite, formatting their code as PREFIX-NNNN.
func Filter(candidates []Candidate) []Course {
	courses := make([]Course, 0, len(candidates))
	for _, c := range candidates {
		n, err := strconv.Atoi(c.Number)
		if err != nil || n < MinNumber {
			continue
		}

		if HasPrerequisite(c.Description) {
			continue
		}

		courses = append(courses, Course{
			Code:  fmt.Sprintf("%s-%s", c.Prefix, c.Number),
			Title: c.Title,
		})
	}

	return courses
}

func HasPrerequisite(desc string) bool {
	return prereqRe.MatchString(desc)
}
