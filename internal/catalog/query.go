package catalog

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinRating applies when minRating is absent or unparsable.
const DefaultMinRating = 4.5

// Sort keys. Every key sorts descending.
const (
	SortReviews = "reviews"
	SortRating  = "rating"
	SortPrice   = "price"
)

// Query selects and orders catalog products.
type Query struct {
	Category  string
	Search    string
	MinRating float64
	SortBy    string
}

// ParseQuery reads category, q, minRating and sortBy from values.
func ParseQuery(values url.Values) Query {
	q := Query{
		Category:  strings.ToLower(strings.TrimSpace(values.Get("category"))),
		Search:    strings.TrimSpace(values.Get("q")),
		MinRating: DefaultMinRating,
		SortBy:    strings.ToLower(strings.TrimSpace(values.Get("sortBy"))),
	}
	if q.Category == "" {
		q.Category = "all"
	}
	if q.SortBy == "" {
		q.SortBy = SortReviews
	}
	if raw := strings.TrimSpace(values.Get("minRating")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			q.MinRating = v
		}
	}
	return q
}

// Insights summarises a result set.
type Insights struct {
	BestsellerCount          int     `json:"bestsellerCount"`
	TrendingCount            int     `json:"trendingCount"`
	AverageRating            float64 `json:"averageRating"`
	TotalPotentialCommission float64 `json:"totalPotentialCommission"`
}

// Recommendation suggests where to feature a product.
type Recommendation struct {
	ASIN   string `json:"asin"`
	Reason string `json:"reason"`
	Action string `json:"action"`
}

// Result is the product listing response.
type Result struct {
	Status          string           `json:"status"`
	LastUpdated     time.Time        `json:"lastUpdated"`
	TotalProducts   int              `json:"totalProducts"`
	Products        []ProductView    `json:"products"`
	Insights        Insights         `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Find filters and sorts the catalog. It never mutates the stored order.
func (c *Catalog) Find(q Query, now time.Time) Result {
	search := strings.ToLower(q.Search)
	matched := make([]ProductView, 0)
	for _, p := range c.Products() {
		if q.Category != "" && q.Category != "all" && p.Category != q.Category && p.Type != q.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		if p.Rating < q.MinRating {
			continue
		}
		matched = append(matched, c.View(p))
	}

	switch q.SortBy {
	case SortReviews:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Reviews > matched[j].Reviews })
	case SortRating:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Rating > matched[j].Rating })
	case SortPrice:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	}

	return Result{
		Status:          "success",
		LastUpdated:     now,
		TotalProducts:   len(matched),
		Products:        matched,
		Insights:        insights(matched),
		Recommendations: recommend(matched),
	}
}

func insights(products []ProductView) Insights {
	var out Insights
	if len(products) == 0 {
		return out
	}
	ratingSum := decimal.Zero
	commission := decimal.Zero
	for _, p := range products {
		if p.Bestseller {
			out.BestsellerCount++
		}
		if p.Trending {
			out.TrendingCount++
		}
		ratingSum = ratingSum.Add(decimal.NewFromFloat(p.Rating))
		commission = commission.Add(decimal.NewFromFloat(p.Commission))
	}
	out.AverageRating = ratingSum.Div(decimal.NewFromInt(int64(len(products)))).Round(2).InexactFloat64()
	out.TotalPotentialCommission = commission.Round(2).InexactFloat64()
	return out
}

func recommend(products []ProductView) []Recommendation {
	out := []Recommendation{}
	if len(products) == 0 {
		return out
	}
	out = append(out, Recommendation{
		ASIN:   products[0].ASIN,
		Reason: "Highest number of reviews - very popular",
		Action: "Feature on homepage",
	})
	for _, p := range products {
		if p.Bestseller && p.Trending {
			out = append(out, Recommendation{
				ASIN:   p.ASIN,
				Reason: "Both bestseller and trending",
				Action: "Add to trending section",
			})
			break
		}
	}
	return out
}
