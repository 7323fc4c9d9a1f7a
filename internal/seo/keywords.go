// Package seo serves the curated trending keyword lists used for storefront
// meta tags and content planning in the US and UK markets.
package seo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnsupportedRegion is returned for regions outside the US and UK markets.
var ErrUnsupportedRegion = errors.New("seo: unsupported region")

// Category names one keyword list.
type Category string

const (
	CategoryCat     Category = "cat"
	CategoryDog     Category = "dog"
	CategoryGeneral Category = "general"
)

var (
	catKeywords = []string{
		"best cat toys 2026",
		"automatic cat feeder",
		"cat tower for large cats",
		"interactive cat toys",
		"cat scratching post",
		"cat litter box automatic",
		"cat water fountain",
		"cat bed heated",
	}
	dogKeywords = []string{
		"orthopedic dog bed",
		"dog puzzle toys",
		"automatic dog feeder",
		"dog training collar",
		"dog harness no pull",
		"dog toys for aggressive chewers",
		"dog car seat",
		"dog raincoat waterproof",
	}
	generalKeywords = []string{
		"pet supplies online",
		"best pet products 2026",
		"pet accessories",
		"pet food bowls",
		"pet grooming tools",
	}
)

const (
	metaTitle = "Shop Trending Pet Products - Help Feed Street Cats & Dogs | Paws & Hearts"

	topCat     = 5
	topDog     = 5
	topGeneral = 3
)

var (
	regionUS = language.MustParseRegion("US")
	regionGB = language.MustParseRegion("GB")
)

// Region is a supported market.
type Region struct {
	code   string
	region language.Region
}

var (
	US = Region{code: "US", region: regionUS}
	UK = Region{code: "UK", region: regionGB}
)

// Code returns the market code used in responses ("US" or "UK").
func (r Region) Code() string { return r.code }

// Locale returns the BCP 47 tag for the market, e.g. en-GB.
func (r Region) Locale() string {
	tag, err := language.Compose(language.English, r.region)
	if err != nil {
		return "en"
	}
	return tag.String()
}

// ParseRegion accepts US, UK and GB (case-insensitive). Well-formed codes for
// other markets return ErrUnsupportedRegion.
func ParseRegion(raw string) (Region, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return Region{}, fmt.Errorf("%w: empty", ErrUnsupportedRegion)
	}
	if code == "UK" {
		return UK, nil
	}
	parsed, err := language.ParseRegion(code)
	if err != nil {
		return Region{}, fmt.Errorf("%w: %q", ErrUnsupportedRegion, raw)
	}
	switch parsed {
	case regionUS:
		return US, nil
	case regionGB:
		return UK, nil
	}
	return Region{}, fmt.Errorf("%w: %q", ErrUnsupportedRegion, raw)
}

// RegionForCountry maps an ISO country code to a market, falling back when
// the country is unknown or outside the supported markets.
func RegionForCountry(country string, fallback Region) Region {
	if r, err := ParseRegion(country); err == nil {
		return r
	}
	return fallback
}

// ParseCategory validates an optional category filter. Empty means all lists.
func ParseCategory(raw string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(raw))); c {
	case "", CategoryCat, CategoryDog, CategoryGeneral:
		return c, nil
	}
	return "", fmt.Errorf("seo: unknown category %q", raw)
}

// Keywords holds the top keywords per list. Lists excluded by a category
// filter are omitted from JSON.
type Keywords struct {
	Cat     []string `json:"cat,omitempty"`
	Dog     []string `json:"dog,omitempty"`
	General []string `json:"general,omitempty"`
}

// MetaTags are the storefront head tags derived from the lists.
type MetaTags struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

// Suggestion is a content idea for one keyword.
type Suggestion struct {
	Keyword      string `json:"keyword"`
	Headline     string `json:"headline"`
	SearchVolume int    `json:"searchVolume"`
	Competition  string `json:"competition"`
	Suggestion   string `json:"suggestion"`
}

// Report is the keyword lookup response.
type Report struct {
	Region      string       `json:"region"`
	Locale      string       `json:"locale"`
	LastUpdated time.Time    `json:"lastUpdated"`
	Keywords    Keywords     `json:"keywords"`
	MetaTags    MetaTags     `json:"metaTags"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Lookup builds the keyword report for a market.
func Lookup(region Region, category Category, now time.Time) Report {
	title := cases.Title(language.English)

	kw := Keywords{}
	if category == "" || category == CategoryCat {
		kw.Cat = clone(catKeywords[:topCat])
	}
	if category == "" || category == CategoryDog {
		kw.Dog = clone(dogKeywords[:topDog])
	}
	if category == "" || category == CategoryGeneral {
		kw.General = clone(generalKeywords[:topGeneral])
	}

	metaKeywords := make([]string, 0, 9)
	metaKeywords = append(metaKeywords, catKeywords[:3]...)
	metaKeywords = append(metaKeywords, dogKeywords[:3]...)
	metaKeywords = append(metaKeywords, "amazon pet products", "help street pets", "pet charity")

	return Report{
		Region:      region.Code(),
		Locale:      region.Locale(),
		LastUpdated: now.UTC(),
		Keywords:    kw,
		MetaTags: MetaTags{
			Title: metaTitle,
			Description: fmt.Sprintf("Browse %s, %s and more. Every purchase feeds homeless pets. 100%% transparent.",
				catKeywords[0], dogKeywords[0]),
			Keywords: strings.Join(metaKeywords, ", "),
		},
		Suggestions: []Suggestion{
			{
				Keyword:      catKeywords[0],
				Headline:     title.String(catKeywords[0]),
				SearchVolume: 45000,
				Competition:  "medium",
				Suggestion:   "Create blog post about this topic",
			},
			{
				Keyword:      dogKeywords[0],
				Headline:     title.String(dogKeywords[0]),
				SearchVolume: 38000,
				Competition:  "low",
				Suggestion:   "Add more products in this category",
			},
		},
	}
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
