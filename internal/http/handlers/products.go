package handlers

import (
	"net/http"

	"pawshearts/internal/catalog"
	"pawshearts/internal/middleware"
	"pawshearts/internal/seo"
)

const featuredCount = 4

func (a *App) ProductsList(w http.ResponseWriter, r *http.Request) {
	q := catalog.ParseQuery(r.URL.Query())
	a.json(w, http.StatusOK, a.Catalog.Find(q, a.now()))
}

func (a *App) ProductsFeatured(w http.ResponseWriter, r *http.Request) {
	items := a.Catalog.Featured(featuredCount)
	a.json(w, http.StatusOK, map[string]any{"products": items, "count": len(items)})
}

func (a *App) SEOKeywords(w http.ResponseWriter, r *http.Request) {
	fallback := a.DefaultRegion
	if fallback.Code() == "" {
		fallback = seo.US
	}
	region := seo.RegionForCountry(middleware.CountryFromContext(r.Context()), fallback)
	if raw := r.URL.Query().Get("region"); raw != "" {
		parsed, err := seo.ParseRegion(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "region must be US or UK")
			return
		}
		region = parsed
	}
	category, err := seo.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "category must be cat, dog or general")
		return
	}
	a.json(w, http.StatusOK, seo.Lookup(region, category, a.now()))
}
