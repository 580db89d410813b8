package youtube

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/canteenlab/jukebox/internal/domain"
)

// VideoMeta is the metadata resolved for one video.
// DurationSeconds is -1 when the platform did not report a duration the
// client could parse; the service rejects such submissions.
type VideoMeta struct {
	VideoID         string
	Title           string
	ThumbnailURL    string
	DurationSeconds int
}

// MetadataClient abstracts the video platform. Mocking this interface in
// tests gives full control over platform behaviour without real API calls.
type MetadataClient interface {
	Resolve(ctx context.Context, videoID string) (*VideoMeta, error)
	Search(ctx context.Context, query string) ([]*VideoMeta, error)
}

// Options configures a Client.
type Options struct {
	APIKey string

	// QPS caps outbound calls to the platform. The upstream API is
	// quota-limited per project, so the client paces itself instead of
	// burning the daily quota on a search storm.
	QPS int

	// MaxSearchResults caps candidates returned per search.
	MaxSearchResults int64

	// OnCall, when set, observes the latency of each upstream call.
	OnCall func(call string, latency time.Duration)
}

// Client resolves video metadata through the YouTube Data API v3.
type Client struct {
	svc        *yt.Service
	limiter    *rate.Limiter
	maxResults int64
	onCall     func(call string, latency time.Duration)
}

var _ MetadataClient = (*Client)(nil)

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	svc, err := yt.NewService(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	onCall := opts.OnCall
	if onCall == nil {
		onCall = func(string, time.Duration) {}
	}

	return &Client{
		svc:        svc,
		limiter:    rate.NewLimiter(rate.Limit(opts.QPS), opts.QPS),
		maxResults: opts.MaxSearchResults,
		onCall:     onCall,
	}, nil
}

// Resolve fetches title, thumbnail and duration for a single video id.
// Returns domain.ErrVideoNotFound when the platform reports zero items,
// domain.ErrUpstream on any network or API error.
func (c *Client) Resolve(ctx context.Context, videoID string) (*VideoMeta, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.svc.Videos.
		List([]string{"snippet", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	c.onCall("resolve", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: videos lookup: %v", domain.ErrUpstream, err)
	}

	if len(resp.Items) == 0 {
		return nil, domain.ErrVideoNotFound
	}

	return metaFromVideo(resp.Items[0]), nil
}

// Search runs the platform's two-step search: a text search yielding
// candidate ids, then one batch detail lookup for the durations of exactly
// those ids. Zero search hits short-circuit to an empty slice without the
// detail call.
func (c *Client) Search(ctx context.Context, query string) ([]*VideoMeta, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	searchResp, err := c.svc.Search.
		List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(c.maxResults).
		Context(ctx).
		Do()
	c.onCall("search", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: video search: %v", domain.ErrUpstream, err)
	}

	var ids []string
	for _, item := range searchResp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	if len(ids) == 0 {
		return []*VideoMeta{}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start = time.Now()
	detailResp, err := c.svc.Videos.
		List([]string{"contentDetails"}).
		Id(ids...).
		Context(ctx).
		Do()
	c.onCall("resolve", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: search detail lookup: %v", domain.ErrUpstream, err)
	}

	durations := make(map[string]int, len(detailResp.Items))
	for _, item := range detailResp.Items {
		if item.ContentDetails == nil {
			continue
		}
		if secs, err := parseISOSeconds(item.ContentDetails.Duration); err == nil {
			durations[item.Id] = secs
		}
	}

	// Keep the platform's search ranking; durations are matched by id, not
	// by index, so a missing detail row cannot shift results.
	results := make([]*VideoMeta, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		m := &VideoMeta{
			VideoID:         item.Id.VideoId,
			DurationSeconds: -1,
		}
		if item.Snippet != nil {
			m.Title = item.Snippet.Title
			m.ThumbnailURL = defaultThumbnail(item.Snippet.Thumbnails)
		}
		if secs, ok := durations[item.Id.VideoId]; ok {
			m.DurationSeconds = secs
		}
		results = append(results, m)
	}
	return results, nil
}

func metaFromVideo(v *yt.Video) *VideoMeta {
	m := &VideoMeta{
		VideoID:         v.Id,
		DurationSeconds: -1,
	}
	if v.Snippet != nil {
		m.Title = v.Snippet.Title
		m.ThumbnailURL = defaultThumbnail(v.Snippet.Thumbnails)
	}
	if v.ContentDetails != nil {
		if secs, err := parseISOSeconds(v.ContentDetails.Duration); err == nil {
			m.DurationSeconds = secs
		}
	}
	return m
}

func defaultThumbnail(t *yt.ThumbnailDetails) string {
	if t == nil || t.Default == nil {
		return ""
	}
	return t.Default.Url
}
