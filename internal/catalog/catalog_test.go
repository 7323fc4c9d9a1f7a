package catalog

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func ids(views []ProductView) []int {
	out := make([]int, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func mustDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default("pawshearts-20")
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return c
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Query
	}{
		{"defaults", "", Query{Category: "all", MinRating: 4.5, SortBy: "reviews"}},
		{"unparsable rating", "minRating=abc", Query{Category: "all", MinRating: 4.5, SortBy: "reviews"}},
		{"explicit zero rating", "minRating=0", Query{Category: "all", MinRating: 0, SortBy: "reviews"}},
		{"all fields", "category=Cat&q=tower&minRating=4.7&sortBy=price", Query{Category: "cat", Search: "tower", MinRating: 4.7, SortBy: "price"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			values, err := url.ParseQuery(tc.raw)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if diff := cmp.Diff(tc.want, ParseQuery(values)); diff != "" {
				t.Fatalf("query mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindFilteringAndSorting(t *testing.T) {
	c := mustDefault(t)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		query Query
		want  []int
	}{
		{"default sorts by reviews", Query{Category: "all", MinRating: 4.5, SortBy: SortReviews}, []int{4, 3, 5, 1, 2, 6}},
		{"category matches type", Query{Category: "toys", MinRating: 4.5, SortBy: SortReviews}, []int{2}},
		{"cats by price", Query{Category: "cat", MinRating: 4.5, SortBy: SortPrice}, []int{1, 3, 5}},
		{"rating sort is stable", Query{Category: "all", MinRating: 4.8, SortBy: SortRating}, []int{4, 1, 6}},
		{"title search", Query{Category: "all", Search: "DOG BED", MinRating: 4.5, SortBy: SortReviews}, []int{4}},
		{"unknown sort keeps catalog order", Query{Category: "dog", MinRating: 0, SortBy: "newest"}, []int{2, 4, 6}},
		{"nothing matches", Query{Category: "all", MinRating: 5, SortBy: SortReviews}, []int{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := c.Find(tc.query, now)
			if diff := cmp.Diff(tc.want, ids(res.Products)); diff != "" {
				t.Fatalf("products mismatch (-want +got):\n%s", diff)
			}
			if res.TotalProducts != len(tc.want) {
				t.Fatalf("expected total %d, got %d", len(tc.want), res.TotalProducts)
			}
		})
	}

	if diff := cmp.Diff([]int{1, 2, 3, 4, 5, 6}, ids(viewsOf(c))); diff != "" {
		t.Fatalf("Find must not reorder the catalog (-want +got):\n%s", diff)
	}
}

func viewsOf(c *Catalog) []ProductView {
	var out []ProductView
	for _, p := range c.Products() {
		out = append(out, c.View(p))
	}
	return out
}

func TestFindInsightsAndRecommendations(t *testing.T) {
	c := mustDefault(t)
	res := c.Find(Query{Category: "all", MinRating: 4.5, SortBy: SortReviews}, time.Now())

	wantInsights := Insights{BestsellerCount: 4, TrendingCount: 5, AverageRating: 4.75, TotalPotentialCommission: 11.6}
	if diff := cmp.Diff(wantInsights, res.Insights); diff != "" {
		t.Fatalf("insights mismatch (-want +got):\n%s", diff)
	}
	wantRecs := []Recommendation{
		{ASIN: "B08GHI3456", Reason: "Highest number of reviews - very popular", Action: "Feature on homepage"},
		{ASIN: "B08GHI3456", Reason: "Both bestseller and trending", Action: "Add to trending section"},
	}
	if diff := cmp.Diff(wantRecs, res.Recommendations); diff != "" {
		t.Fatalf("recommendations mismatch (-want +got):\n%s", diff)
	}
	if res.Status != "success" {
		t.Fatalf("unexpected status %q", res.Status)
	}
}

func TestFindEmptyResult(t *testing.T) {
	c := mustDefault(t)
	res := c.Find(Query{Category: "hamster", MinRating: 4.5, SortBy: SortReviews}, time.Now())
	if diff := cmp.Diff(Insights{}, res.Insights); diff != "" {
		t.Fatalf("expected zero insights (-want +got):\n%s", diff)
	}
	if res.Recommendations == nil || len(res.Recommendations) != 0 {
		t.Fatalf("expected empty recommendations, got %#v", res.Recommendations)
	}
	if res.Products == nil {
		t.Fatalf("products must encode as an empty list")
	}
}

func TestFindOmitsMissingTrendingBestseller(t *testing.T) {
	c := mustDefault(t)
	res := c.Find(Query{Category: "all", Search: "leash", MinRating: 4.5, SortBy: SortReviews}, time.Now())
	if len(res.Recommendations) != 1 || res.Recommendations[0].ASIN != "B08MNO1234" {
		t.Fatalf("unexpected recommendations %#v", res.Recommendations)
	}
}

func TestFeaturedAndViews(t *testing.T) {
	c := mustDefault(t)
	featured := c.Featured(4)
	if diff := cmp.Diff([]int{1, 2, 3, 4}, ids(featured)); diff != "" {
		t.Fatalf("featured mismatch (-want +got):\n%s", diff)
	}
	if featured[0].AffiliateURL != "https://www.amazon.com/dp/B08XYZ1234?tag=pawshearts-20" {
		t.Fatalf("unexpected affiliate url %q", featured[0].AffiliateURL)
	}
	if featured[0].Meals != 1 || featured[1].Meals != 0 {
		t.Fatalf("unexpected meals %d/%d", featured[0].Meals, featured[1].Meals)
	}
	if featured[0].AddedDate.IsZero() {
		t.Fatalf("added date should default to load time")
	}
	if got := AffiliateURL("B0", ""); got != "https://www.amazon.com/dp/B0" {
		t.Fatalf("unexpected untagged url %q", got)
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		format string
	}{
		{"unknown format", `[]`, "toml"},
		{"missing title", `[{"id":1,"asin":"B1"}]`, "json"},
		{"missing asin", "- id: 1\n  title: Bowl\n", "yaml"},
		{"duplicate id", "- {id: 1, title: A, asin: B1}\n- {id: 1, title: B, asin: B2}\n", "yml"},
		{"malformed json", `{`, "json"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.raw), tc.format); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestOpenFromJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	raw := `[{"id":7,"title":"Bird Swing","category":"bird","type":"toys","price":9.5,"rating":4.9,"reviews":10,"asin":"B7","trending":true,"commission":5}]`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Open(path, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	products := c.Products()
	if len(products) != 1 || products[0].Title != "Bird Swing" {
		t.Fatalf("unexpected products %#v", products)
	}
	if got := c.View(products[0]).Meals; got != 2 {
		t.Fatalf("expected 2 meals, got %d", got)
	}
}
