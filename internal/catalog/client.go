// Package catalog implements the remote video catalog boundary against the
// YouTube Data API v3.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hszk-dev/tvcast/internal/domain/model"
	"github.com/hszk-dev/tvcast/internal/domain/repository"
)

// ClientConfig holds configuration for the catalog client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client is a thin HTTP client for the catalog API. It performs no caching
// and no retries; the usecase layer wraps it with both.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a catalog client.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Supported channel reference formats.
var (
	channelIDRe = regexp.MustCompile(`youtube\.com/channel/([^/?&]+)`)
	customURLRe = regexp.MustCompile(`youtube\.com/c/([^/?&]+)`)
	usernameRe  = regexp.MustCompile(`youtube\.com/user/([^/?&]+)`)
	handleRe    = regexp.MustCompile(`youtube\.com/@([^/?&]+)`)
)

// ResolveChannelID extracts or looks up the channel identifier behind a
// channel URL. Direct /channel/ URLs resolve without a remote call; custom
// URLs and handles go through search, usernames through the channels
// endpoint. Unsupported formats resolve to ErrNotFound.
func (c *Client) ResolveChannelID(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("empty channel reference: %w", ErrNotFound)
	}

	if m := channelIDRe.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if m := customURLRe.FindStringSubmatch(ref); m != nil {
		return c.searchChannelID(ctx, m[1])
	}
	if m := usernameRe.FindStringSubmatch(ref); m != nil {
		return c.channelIDByUsername(ctx, m[1])
	}
	if m := handleRe.FindStringSubmatch(ref); m != nil {
		return c.searchChannelID(ctx, m[1])
	}

	return "", fmt.Errorf("unsupported channel reference %q: %w", ref, ErrNotFound)
}

// ListUploads returns up to limit items from the channel's uploads playlist.
func (c *Client) ListUploads(ctx context.Context, channelID string, limit int) ([]model.VideoItem, error) {
	playlistID, err := c.uploadsPlaylistID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	var resp playlistItemsResponse
	q := url.Values{
		"playlistId": {playlistID},
		"part":       {"snippet,contentDetails"},
		"maxResults": {strconv.Itoa(limit)},
	}
	if err := c.getJSON(ctx, "listUploads", "/playlistItems", q, &resp); err != nil {
		return nil, err
	}

	items := make([]model.VideoItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, model.VideoItem{
			ID:           it.ContentDetails.VideoID,
			Title:        it.Snippet.Title,
			Description:  it.Snippet.Description,
			ThumbnailURL: it.Snippet.Thumbnails.Medium.URL,
			Link:         watchURL(it.ContentDetails.VideoID),
			PublishedAt:  parsePublishedAt(it.Snippet.PublishedAt),
		})
	}
	return items, nil
}

// VideoDetail fetches detail for one video. A minimal lookup requests only
// contentDetails to keep quota usage down.
func (c *Client) VideoDetail(ctx context.Context, videoID string, minimal bool) (*repository.VideoDetail, error) {
	parts := "snippet,contentDetails"
	if minimal {
		parts = "contentDetails"
	}

	var resp videosResponse
	q := url.Values{
		"id":   {videoID},
		"part": {parts},
	}
	if err := c.getJSON(ctx, "videoDetail", "/videos", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}

	v := resp.Items[0]
	minutes := ParseISODuration(v.ContentDetails.Duration)
	detail := &repository.VideoDetail{
		ID:              videoID,
		DurationMinutes: minutes,
		DurationLabel:   FormatDuration(minutes),
	}
	if !minimal {
		detail.Title = v.Snippet.Title
		detail.Description = v.Snippet.Description
		detail.ThumbnailURL = v.Snippet.Thumbnails.Medium.URL
		detail.PublishedAt = v.Snippet.PublishedAt
	}
	return detail, nil
}

// SearchRecent lists a channel's recent videos, newest first, one page at a
// time.
func (c *Client) SearchRecent(ctx context.Context, channelID string, limit int, pageToken string) (*repository.SearchPage, error) {
	q := url.Values{
		"channelId":  {channelID},
		"part":       {"snippet"},
		"order":      {"date"},
		"type":       {"video"},
		"maxResults": {strconv.Itoa(limit)},
	}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "searchRecent", "/search", q, &resp); err != nil {
		return nil, err
	}

	page := &repository.SearchPage{NextPageToken: resp.NextPageToken}
	for _, it := range resp.Items {
		if it.ID.VideoID == "" {
			continue
		}
		page.Items = append(page.Items, model.VideoItem{
			ID:           it.ID.VideoID,
			Title:        it.Snippet.Title,
			Description:  it.Snippet.Description,
			ThumbnailURL: it.Snippet.Thumbnails.Medium.URL,
			Link:         watchURL(it.ID.VideoID),
			PublishedAt:  parsePublishedAt(it.Snippet.PublishedAt),
		})
	}
	return page, nil
}

// VideoStats returns view counts for up to 50 video IDs in one call, the
// API's batch ceiling.
func (c *Client) VideoStats(ctx context.Context, videoIDs []string) (map[string]uint64, error) {
	if len(videoIDs) == 0 {
		return map[string]uint64{}, nil
	}
	if len(videoIDs) > 50 {
		videoIDs = videoIDs[:50]
	}

	var resp videosResponse
	q := url.Values{
		"id":   {strings.Join(videoIDs, ",")},
		"part": {"statistics"},
	}
	if err := c.getJSON(ctx, "videoStats", "/videos", q, &resp); err != nil {
		return nil, err
	}

	stats := make(map[string]uint64, len(resp.Items))
	for _, it := range resp.Items {
		count, err := strconv.ParseUint(it.Statistics.ViewCount, 10, 64)
		if err != nil {
			continue
		}
		stats[it.ID] = count
	}
	return stats, nil
}

// searchChannelID finds a channel by name, custom URL or handle.
func (c *Client) searchChannelID(ctx context.Context, query string) (string, error) {
	var resp searchResponse
	q := url.Values{
		"q":          {query},
		"type":       {"channel"},
		"part":       {"id"},
		"maxResults": {"1"},
	}
	if err := c.getJSON(ctx, "resolveChannel", "/search", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 || resp.Items[0].ID.ChannelID == "" {
		return "", fmt.Errorf("no channel matches %q: %w", query, ErrNotFound)
	}
	return resp.Items[0].ID.ChannelID, nil
}

// channelIDByUsername resolves a legacy username to a channel identifier.
func (c *Client) channelIDByUsername(ctx context.Context, username string) (string, error) {
	var resp channelsResponse
	q := url.Values{
		"forUsername": {username},
		"part":        {"id"},
	}
	if err := c.getJSON(ctx, "resolveChannel", "/channels", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("no channel for username %q: %w", username, ErrNotFound)
	}
	return resp.Items[0].ID, nil
}

// uploadsPlaylistID looks up the channel's uploads playlist.
func (c *Client) uploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	var resp channelsResponse
	q := url.Values{
		"id":   {channelID},
		"part": {"contentDetails"},
	}
	if err := c.getJSON(ctx, "listUploads", "/channels", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}
	playlistID := resp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if playlistID == "" {
		return "", fmt.Errorf("channel %s has no uploads playlist: %w", channelID, ErrNotFound)
	}
	return playlistID, nil
}

// getJSON performs one GET against the catalog API and decodes the body.
// Transport failures and 429/5xx responses come back as retriable
// RemoteErrors, other statuses as non-retriable ones.
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Retriable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RemoteError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Retriable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
			Err:        fmt.Errorf("unexpected status"),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func parsePublishedAt(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// API response shapes, trimmed to the fields consumed here.

type thumbnails struct {
	Medium struct {
		URL string `json:"url"`
	} `json:"medium"`
}

type snippet struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PublishedAt string     `json:"publishedAt"`
	Thumbnails  thumbnails `json:"thumbnails"`
}

type searchResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			ChannelID string `json:"channelId"`
			VideoID   string `json:"videoId"`
		} `json:"id"`
		Snippet snippet `json:"snippet"`
	} `json:"items"`
}

type channelsResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	Items []struct {
		Snippet        snippet `json:"snippet"`
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID             string  `json:"id"`
		Snippet        snippet `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}
