// Package catalog serves the affiliate product list: filtering, sorting,
// insights and the derived affiliate links shown on the storefront.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"pawshearts/internal/domain"
	"pawshearts/internal/impact"
)

//go:embed products.yaml
var defaultProducts []byte

const amazonProductURL = "https://www.amazon.com/dp/"

// ProductView is a product as returned to clients.
type ProductView struct {
	domain.Product
	Meals        int64  `json:"meals"`
	AffiliateURL string `json:"affiliateUrl"`
}

// Catalog is a concurrency-safe product list that can be swapped at runtime.
type Catalog struct {
	mu           sync.RWMutex
	products     []domain.Product
	loadedAt     time.Time
	associateTag string
}

// New returns a catalog holding products.
func New(products []domain.Product, associateTag string) *Catalog {
	c := &Catalog{associateTag: strings.TrimSpace(associateTag)}
	c.Replace(products)
	return c
}

// Default returns the embedded catalog.
func Default(associateTag string) (*Catalog, error) {
	products, err := Parse(defaultProducts, "yaml")
	if err != nil {
		return nil, fmt.Errorf("catalog: embedded products: %w", err)
	}
	return New(products, associateTag), nil
}

// Open loads the catalog from path, or the embedded catalog when path is empty.
func Open(path, associateTag string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(associateTag)
	}
	products, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(products, associateTag), nil
}

// LoadFile reads a product list from a .json, .yaml or .yml file.
func LoadFile(path string) ([]domain.Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	products, err := Parse(raw, format)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return products, nil
}

// Parse decodes a product list. format is "json", "yaml" or "yml".
func Parse(raw []byte, format string) ([]domain.Product, error) {
	var products []domain.Product
	switch format {
	case "json":
		if err := json.Unmarshal(raw, &products); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(raw, &products); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	seen := make(map[int]struct{}, len(products))
	for i, p := range products {
		if strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("product %d: title is required", i)
		}
		if strings.TrimSpace(p.ASIN) == "" {
			return nil, fmt.Errorf("product %d: asin is required", i)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("product %d: duplicate id %d", i, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return products, nil
}

// Replace swaps the product list. Products without an added date are stamped
// with the load time.
func (c *Catalog) Replace(products []domain.Product) {
	now := time.Now().UTC()
	next := make([]domain.Product, len(products))
	copy(next, products)
	for i := range next {
		if next[i].AddedDate.IsZero() {
			next[i].AddedDate = now
		}
	}
	c.mu.Lock()
	c.products = next
	c.loadedAt = now
	c.mu.Unlock()
}

// Products returns a copy of the current product list in catalog order.
func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// LoadedAt reports when the current product list was installed.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Featured returns up to n trending products in catalog order.
func (c *Catalog) Featured(n int) []ProductView {
	out := []ProductView{}
	for _, p := range c.Products() {
		if len(out) >= n {
			break
		}
		if p.Trending {
			out = append(out, c.View(p))
		}
	}
	return out
}

// View derives the client fields for p.
func (c *Catalog) View(p domain.Product) ProductView {
	return ProductView{
		Product:      p,
		Meals:        impact.Meals(decimal.NewFromFloat(p.Commission)),
		AffiliateURL: AffiliateURL(p.ASIN, c.associateTag),
	}
}

// AffiliateURL builds the Amazon product link carrying the associate tag.
func AffiliateURL(asin, tag string) string {
	link := amazonProductURL + url.PathEscape(asin)
	if tag == "" {
		return link
	}
	return link + "?tag=" + url.QueryEscape(tag)
}
