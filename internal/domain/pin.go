package domain

import "time"

// PinStatus is the publishing state of a scheduled pin.
type PinStatus string

const (
	PinQueued     PinStatus = "queued"
	PinPublishing PinStatus = "publishing"
	PinPublished  PinStatus = "published"
	PinFailed     PinStatus = "failed"
)

// ScheduledPin is a Pinterest pin waiting in (or done with) the publish queue.
type ScheduledPin struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"productId"`
	ProductTitle string     `json:"productTitle"`
	Caption      string     `json:"caption"`
	Image        string     `json:"image"`
	Link         string     `json:"link"`
	Category     string     `json:"category"`
	BoardName    string     `json:"boardName"`
	ScheduledFor time.Time  `json:"scheduledFor"`
	Status       PinStatus  `json:"status"`
	RemotePinID  string     `json:"remotePinId,omitempty"`
	PinURL       string     `json:"pinUrl"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	PublishedAt  *time.Time `json:"publishedAt"`
}

// PinFilter narrows pin listings. Zero values match everything.
type PinFilter struct {
	Status PinStatus
	Limit  int
}
