package pageview

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/penlight/blog-api-core/internal/pageview/entity"
	"github.com/penlight/blog-api-core/pkg/utilities"
)

// Interval selects the calendar bucket size for aggregation.
type Interval string

const (
	IntervalHourly  Interval = "hourly"
	IntervalDaily   Interval = "daily"
	IntervalMonthly Interval = "monthly"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrInvalidDate     = errors.New("invalid date")
)

// ParseInterval validates the interval selector, defaulting to daily when
// absent.
func ParseInterval(s string) (Interval, error) {
	switch Interval(s) {
	case "":
		return IntervalDaily, nil
	case IntervalHourly, IntervalDaily, IntervalMonthly:
		return Interval(s), nil
	default:
		return "", ErrInvalidInterval
	}
}

// Filter narrows analytics queries to one article and/or an inclusive
// [StartAt, EndAt] range over the view timestamp.
type Filter struct {
	ArticleID string
	StartAt   *time.Time
	EndAt     *time.Time
}

// Repository is the data access contract the service depends on.
type Repository interface {
	PublishedArticle(ctx context.Context, id string) (*entity.ArticleRef, error)
	Insert(ctx context.Context, v *entity.PageView) error
	Count(ctx context.Context, f Filter) (*entity.CountResult, error)
	AggregateByInterval(ctx context.Context, f Filter, interval Interval) ([]entity.Bucket, error)
}

// Service records view events and produces count and time-bucketed
// aggregates.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record creates exactly one immutable view record for a published,
// non-deleted article. No deduplication by IP, session or time window.
func (s *Service) Record(ctx context.Context, articleID, ipAddress, rawUserAgent string) (*entity.ArticleRef, error) {
	ref, err := s.repo.PublishedArticle(ctx, articleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("check article: %w", err)
	}

	id, err := utilities.NewSnowflakeID()
	if err != nil {
		return nil, fmt.Errorf("generate view id: %w", err)
	}
	device := ParseDevice(rawUserAgent)
	v := &entity.PageView{
		ID:            id,
		ArticleID:     ref.ID,
		IPAddress:     ipAddress,
		UserAgent:     optional(rawUserAgent),
		DeviceType:    device.Type,
		DeviceOS:      optional(device.OS),
		DeviceBrowser: optional(device.Browser),
	}
	if err := s.repo.Insert(ctx, v); err != nil {
		return nil, fmt.Errorf("insert page view: %w", err)
	}
	return ref, nil
}

// Count returns the number of matching view records plus the distinct set
// of article tuples they reference.
func (s *Service) Count(ctx context.Context, articleID, startAt, endAt string) (*entity.CountResult, error) {
	f, err := buildFilter(articleID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	return s.repo.Count(ctx, f)
}

// Aggregate groups matching records into calendar buckets, ascending.
func (s *Service) Aggregate(ctx context.Context, interval, articleID, startAt, endAt string) ([]entity.Bucket, error) {
	iv, err := ParseInterval(interval)
	if err != nil {
		return nil, err
	}
	f, err := buildFilter(articleID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	buckets, err := s.repo.AggregateByInterval(ctx, f, iv)
	if err != nil {
		return nil, err
	}
	if buckets == nil {
		buckets = []entity.Bucket{}
	}
	return buckets, nil
}

func buildFilter(articleID, startAt, endAt string) (Filter, error) {
	f := Filter{ArticleID: articleID}
	if startAt != "" {
		t, err := parseEventTime(startAt)
		if err != nil {
			return f, err
		}
		f.StartAt = &t
	}
	if endAt != "" {
		t, err := parseEventTime(endAt)
		if err != nil {
			return f, err
		}
		f.EndAt = &t
	}
	return f, nil
}

// parseEventTime accepts RFC 3339 timestamps and bare dates.
func parseEventTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
