package seo

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseRegion(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		locale string
	}{
		{"US", "US", "en-US"},
		{"us", "US", "en-US"},
		{"UK", "UK", "en-GB"},
		{"gb", "UK", "en-GB"},
		{" GB ", "UK", "en-GB"},
	}
	for _, tc := range cases {
		got, err := ParseRegion(tc.in)
		if err != nil {
			t.Fatalf("ParseRegion(%q): %v", tc.in, err)
		}
		if got.Code() != tc.want || got.Locale() != tc.locale {
			t.Fatalf("ParseRegion(%q) = %s/%s, want %s/%s", tc.in, got.Code(), got.Locale(), tc.want, tc.locale)
		}
	}
}

func TestParseRegionRejectsOtherMarkets(t *testing.T) {
	for _, in := range []string{"", "DE", "FR", "not-a-region", "123x"} {
		if _, err := ParseRegion(in); !errors.Is(err, ErrUnsupportedRegion) {
			t.Fatalf("ParseRegion(%q) err = %v, want ErrUnsupportedRegion", in, err)
		}
	}
}

func TestRegionForCountryFallsBack(t *testing.T) {
	if got := RegionForCountry("GB", US); got != UK {
		t.Fatalf("GB should map to UK, got %s", got.Code())
	}
	if got := RegionForCountry("DE", US); got != US {
		t.Fatalf("DE should fall back to US, got %s", got.Code())
	}
	if got := RegionForCountry("", UK); got != UK {
		t.Fatalf("empty country should fall back, got %s", got.Code())
	}
}

func TestLookupFullReport(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	report := Lookup(US, "", now)

	if report.Region != "US" || report.Locale != "en-US" {
		t.Fatalf("unexpected region %s/%s", report.Region, report.Locale)
	}
	if !report.LastUpdated.Equal(now) {
		t.Fatalf("lastUpdated = %v", report.LastUpdated)
	}
	if len(report.Keywords.Cat) != 5 || len(report.Keywords.Dog) != 5 || len(report.Keywords.General) != 3 {
		t.Fatalf("unexpected list sizes %d/%d/%d", len(report.Keywords.Cat), len(report.Keywords.Dog), len(report.Keywords.General))
	}
	if report.Keywords.Cat[0] != "best cat toys 2026" || report.Keywords.Dog[4] != "dog harness no pull" {
		t.Fatalf("unexpected keyword order: %v %v", report.Keywords.Cat, report.Keywords.Dog)
	}
	wantDesc := "Browse best cat toys 2026, orthopedic dog bed and more. Every purchase feeds homeless pets. 100% transparent."
	if report.MetaTags.Description != wantDesc {
		t.Fatalf("description = %q", report.MetaTags.Description)
	}
	if !strings.HasSuffix(report.MetaTags.Keywords, "amazon pet products, help street pets, pet charity") {
		t.Fatalf("keywords = %q", report.MetaTags.Keywords)
	}
	if n := strings.Count(report.MetaTags.Keywords, ", "); n != 8 {
		t.Fatalf("expected 9 meta keywords, got %d separators", n)
	}
	if len(report.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(report.Suggestions))
	}
	first := report.Suggestions[0]
	if first.SearchVolume != 45000 || first.Competition != "medium" || first.Headline != "Best Cat Toys 2026" {
		t.Fatalf("unexpected first suggestion %+v", first)
	}
	if report.Suggestions[1].SearchVolume != 38000 || report.Suggestions[1].Competition != "low" {
		t.Fatalf("unexpected second suggestion %+v", report.Suggestions[1])
	}
}

func TestLookupCategoryFilter(t *testing.T) {
	report := Lookup(UK, CategoryDog, time.Now())
	if report.Keywords.Cat != nil || report.Keywords.General != nil {
		t.Fatalf("only dog keywords expected, got %+v", report.Keywords)
	}
	if len(report.Keywords.Dog) != 5 {
		t.Fatalf("dog list size = %d", len(report.Keywords.Dog))
	}
	report.Keywords.Dog[0] = "mutated"
	if dogKeywords[0] != "orthopedic dog bed" {
		t.Fatalf("report must not alias the keyword lists")
	}
}

func TestParseCategory(t *testing.T) {
	for _, in := range []string{"", "cat", "DOG", "general"} {
		if _, err := ParseCategory(in); err != nil {
			t.Fatalf("ParseCategory(%q): %v", in, err)
		}
	}
	if _, err := ParseCategory("bird"); err == nil {
		t.Fatalf("expected error for bird")
	}
}
