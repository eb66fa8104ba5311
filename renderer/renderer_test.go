package renderer

import (
	"strings"
	"testing"

	"github.com/etnz/performance"
	"github.com/etnz/performance/date"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// document summarizes a parsed markdown document.
type document struct {
	headings []string
	tables   []int // number of body rows of each table
	items    int   // list items
}

func parse(t *testing.T, md string) document {
	t.Helper()
	source := []byte(md)
	parser := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()
	root := parser.Parse(text.NewReader(source))

	var doc document
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			doc.headings = append(doc.headings, string(n.Text(source)))
		case *east.Table:
			rows := 0
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if _, ok := c.(*east.TableRow); ok {
					rows++
				}
			}
			doc.tables = append(doc.tables, rows)
		case *ast.ListItem:
			doc.items++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func snapshot(t *testing.T, acts []performance.Activity) *performance.PortfolioSnapshot {
	t.Helper()
	m := performance.NewMarketData()
	m.AddPrice("NVEI.TO", date.MustParse("2021-09-20"), performance.D("180"))
	c, err := performance.NewCalculator(performance.Config{
		CalculationType: performance.TWR,
		BaseCurrency:    "CAD",
		EvaluationDate:  date.MustParse("2021-09-20"),
	}, acts, m)
	if err != nil {
		t.Fatal(err)
	}
	s, err := c.ComputeSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func activities() []performance.Activity {
	return []performance.Activity{
		performance.NewBuy(date.MustParse("2021-09-16"), "NVEI.TO", "CAD", performance.D("1.569"), performance.D("177.2")),
		performance.NewBuy(date.MustParse("2021-09-17"), "UNQUOTED", "CAD", performance.D("1"), performance.D("10")),
	}
}

func TestRenderSnapshot(t *testing.T) {
	s := snapshot(t, activities())
	md := RenderSnapshot(NewSnapshot(s))
	doc := parse(t, md)

	want := []string{"Portfolio Performance on 2021-09-20", "Totals", "Positions", "Excluded Positions"}
	if strings.Join(doc.headings, "|") != strings.Join(want, "|") {
		t.Errorf("headings = %q, want %q\n%s", doc.headings, want, md)
	}
	if len(doc.tables) != 2 {
		t.Fatalf("got %d tables, want 2\n%s", len(doc.tables), md)
	}
	if got, want := doc.tables[1], 2; got != want {
		t.Errorf("positions table has %d rows, want %d", got, want)
	}
	if got, want := doc.items, 1; got != want {
		t.Errorf("got %d excluded positions, want %d", got, want)
	}
	if !strings.Contains(md, "NVEI.TO") {
		t.Errorf("report does not mention NVEI.TO:\n%s", md)
	}
}

func TestRenderSnapshot_NoErrors(t *testing.T) {
	s := snapshot(t, activities()[:1])
	doc := parse(t, RenderSnapshot(NewSnapshot(s)))
	for _, h := range doc.headings {
		if h == "Excluded Positions" {
			t.Error("report has an Excluded Positions section without errors")
		}
	}
}

func TestRenderHistory(t *testing.T) {
	s := snapshot(t, activities()[:1])
	doc := parse(t, RenderHistory(NewHistory(s, date.MustParse("2021-09-18"))))
	if got, want := doc.headings, []string{"History from 2021-09-18 to 2021-09-20"}; len(got) != 1 || got[0] != want[0] {
		t.Errorf("headings = %q, want %q", got, want)
	}
	if len(doc.tables) != 1 || doc.tables[0] != 3 {
		t.Errorf("tables = %v, want one table of 3 rows", doc.tables)
	}
}

func TestRenderInvestments(t *testing.T) {
	s := snapshot(t, activities()[:1])
	items := performance.InvestmentsByGroup(s.HistoricalData, date.Monthly)
	md := RenderInvestments(NewInvestments(items, date.Monthly, s.Currency))
	doc := parse(t, md)
	if len(doc.tables) != 1 || doc.tables[0] != 1 {
		t.Errorf("tables = %v, want one table of 1 row\n%s", doc.tables, md)
	}
	if !strings.Contains(md, "2021-09") {
		t.Errorf("report does not contain the 2021-09 bucket:\n%s", md)
	}
}

func TestPercent(t *testing.T) {
	testCases := []struct {
		in, want string
	}{
		{"0.1234", "+12.34%"},
		{"-0.3744896791248977", "-37.45%"},
		{"0", "0.00%"},
	}
	for _, tc := range testCases {
		if got := percent(performance.D(tc.in)); got != tc.want {
			t.Errorf("percent(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
