package domain

import "time"

// Product is an affiliate catalog entry.
type Product struct {
	ID         int       `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	Category   string    `json:"category" yaml:"category"`
	Type       string    `json:"type" yaml:"type"`
	Price      float64   `json:"price" yaml:"price"`
	Rating     float64   `json:"rating" yaml:"rating"`
	Reviews    int       `json:"reviews" yaml:"reviews"`
	ASIN       string    `json:"asin" yaml:"asin"`
	Image      string    `json:"image" yaml:"image"`
	Trending   bool      `json:"trending" yaml:"trending"`
	Bestseller bool      `json:"bestseller" yaml:"bestseller"`
	Commission float64   `json:"commission" yaml:"commission"`
	AddedDate  time.Time `json:"addedDate" yaml:"added_date"`
}
