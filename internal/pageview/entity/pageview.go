package entity

import "time"

// Device type buckets persisted with each view.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// PageView is one immutable view record. Never updated or deleted.
type PageView struct {
	ID            int64     `db:"id"`
	ArticleID     string    `db:"article_id"`
	ViewedAt      time.Time `db:"viewed_at"`
	IPAddress     string    `db:"ip_address"`
	UserAgent     *string   `db:"user_agent"`
	DeviceType    string    `db:"device_type"`
	DeviceOS      *string   `db:"device_os"`
	DeviceBrowser *string   `db:"device_browser"`
}

// ArticleRef is the (id, title, status) tuple of an article referenced by
// matching view records; each distinct tuple appears once in analytics
// output regardless of view count.
type ArticleRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// CountResult is the response of the count query.
type CountResult struct {
	Count    int64        `json:"count"`
	Articles []ArticleRef `json:"articles"`
}

// Bucket is one calendar-aligned aggregation bucket.
type Bucket struct {
	Date     string       `json:"date"`
	Count    int64        `json:"count"`
	Articles []ArticleRef `json:"articles"`
}
