package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
	})
	return client, srv
}

func TestClient_ResolveChannelID_DirectURL(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("direct channel URLs must not hit the API, got %s", r.URL.Path)
	}))

	got, err := client.ResolveChannelID(context.Background(), "https://www.youtube.com/channel/UCabc123")
	if err != nil {
		t.Fatalf("ResolveChannelID() error = %v", err)
	}
	if got != "UCabc123" {
		t.Errorf("ResolveChannelID() = %q, want %q", got, "UCabc123")
	}
}

func TestClient_ResolveChannelID_Handle(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s, want /search", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "somehandle" {
			t.Errorf("q = %q, want %q", got, "somehandle")
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want %q", got, "test-key")
		}
		w.Write([]byte(`{"items":[{"id":{"channelId":"UCfromsearch"}}]}`))
	}))

	got, err := client.ResolveChannelID(context.Background(), "https://www.youtube.com/@somehandle")
	if err != nil {
		t.Fatalf("ResolveChannelID() error = %v", err)
	}
	if got != "UCfromsearch" {
		t.Errorf("ResolveChannelID() = %q, want %q", got, "UCfromsearch")
	}
}

func TestClient_ResolveChannelID_Username(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels" {
			t.Errorf("path = %s, want /channels", r.URL.Path)
		}
		if got := r.URL.Query().Get("forUsername"); got != "olduser" {
			t.Errorf("forUsername = %q, want %q", got, "olduser")
		}
		w.Write([]byte(`{"items":[{"id":"UCfromuser"}]}`))
	}))

	got, err := client.ResolveChannelID(context.Background(), "https://www.youtube.com/user/olduser")
	if err != nil {
		t.Fatalf("ResolveChannelID() error = %v", err)
	}
	if got != "UCfromuser" {
		t.Errorf("ResolveChannelID() = %q, want %q", got, "UCfromuser")
	}
}

func TestClient_ResolveChannelID_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))

	tests := []struct {
		name string
		ref  string
	}{
		{"unsupported format", "https://example.com/watch?v=abc"},
		{"empty reference", ""},
		{"search finds nothing", "https://www.youtube.com/c/ghostchannel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ResolveChannelID(context.Background(), tt.ref)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("ResolveChannelID(%q) error = %v, want ErrNotFound", tt.ref, err)
			}
			if IsRetriable(err) {
				t.Errorf("not-found must not be retriable, got %v", err)
			}
		})
	}
}

func TestClient_ListUploads(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels":
			w.Write([]byte(`{"items":[{"contentDetails":{"relatedPlaylists":{"uploads":"UUabc"}}}]}`))
		case "/playlistItems":
			if got := r.URL.Query().Get("playlistId"); got != "UUabc" {
				t.Errorf("playlistId = %q, want %q", got, "UUabc")
			}
			if got := r.URL.Query().Get("maxResults"); got != "3" {
				t.Errorf("maxResults = %q, want %q", got, "3")
			}
			w.Write([]byte(`{"items":[
				{"snippet":{"title":"First","publishedAt":"2025-05-01T10:00:00Z","thumbnails":{"medium":{"url":"http://img/1"}}},"contentDetails":{"videoId":"vid1"}},
				{"snippet":{"title":"Second","publishedAt":"2025-04-01T10:00:00Z"},"contentDetails":{"videoId":"vid2"}}
			]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	items, err := client.ListUploads(context.Background(), "UCabc", 3)
	if err != nil {
		t.Fatalf("ListUploads() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].ID != "vid1" || items[0].Title != "First" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[0].Link != "https://www.youtube.com/watch?v=vid1" {
		t.Errorf("Link = %q", items[0].Link)
	}
	if items[0].PublishedAt.IsZero() {
		t.Error("PublishedAt should be parsed")
	}
}

func TestClient_VideoDetail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("part"); got != "contentDetails" {
			t.Errorf("part = %q, want contentDetails for minimal lookup", got)
		}
		w.Write([]byte(`{"items":[{"id":"vid1","contentDetails":{"duration":"PT1H30M0S"}}]}`))
	}))

	detail, err := client.VideoDetail(context.Background(), "vid1", true)
	if err != nil {
		t.Fatalf("VideoDetail() error = %v", err)
	}
	if detail.DurationMinutes != 90 {
		t.Errorf("DurationMinutes = %d, want 90", detail.DurationMinutes)
	}
	if detail.DurationLabel != "1h 30m" {
		t.Errorf("DurationLabel = %q, want %q", detail.DurationLabel, "1h 30m")
	}
}

func TestClient_VideoDetail_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))

	_, err := client.VideoDetail(context.Background(), "missing", false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("VideoDetail() error = %v, want ErrNotFound", err)
	}
}

func TestClient_SearchRecent(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pageToken"); got != "tok1" {
			t.Errorf("pageToken = %q, want %q", got, "tok1")
		}
		if got := r.URL.Query().Get("order"); got != "date" {
			t.Errorf("order = %q, want date", got)
		}
		w.Write([]byte(`{"nextPageToken":"tok2","items":[
			{"id":{"videoId":"vid1"},"snippet":{"title":"A"}},
			{"id":{},"snippet":{"title":"not a video"}},
			{"id":{"videoId":"vid2"},"snippet":{"title":"B"}}
		]}`))
	}))

	page, err := client.SearchRecent(context.Background(), "UCabc", 10, "tok1")
	if err != nil {
		t.Fatalf("SearchRecent() error = %v", err)
	}
	if page.NextPageToken != "tok2" {
		t.Errorf("NextPageToken = %q, want %q", page.NextPageToken, "tok2")
	}
	if len(page.Items) != 2 {
		t.Fatalf("len(items) = %d, want 2 (non-video results skipped)", len(page.Items))
	}
}

func TestClient_VideoStats(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("part"); got != "statistics" {
			t.Errorf("part = %q, want statistics", got)
		}
		w.Write([]byte(`{"items":[
			{"id":"vid1","statistics":{"viewCount":"12345"}},
			{"id":"vid2","statistics":{"viewCount":"not-a-number"}},
			{"id":"vid3","statistics":{"viewCount":"99"}}
		]}`))
	}))

	stats, err := client.VideoStats(context.Background(), []string{"vid1", "vid2", "vid3"})
	if err != nil {
		t.Fatalf("VideoStats() error = %v", err)
	}
	if stats["vid1"] != 12345 || stats["vid3"] != 99 {
		t.Errorf("stats = %v", stats)
	}
	if _, ok := stats["vid2"]; ok {
		t.Error("malformed view count should be absent from the map")
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantRetriable bool
	}{
		{"rate limited is retriable", http.StatusTooManyRequests, true},
		{"server error is retriable", http.StatusInternalServerError, true},
		{"bad gateway is retriable", http.StatusBadGateway, true},
		{"forbidden is not retriable", http.StatusForbidden, false},
		{"bad request is not retriable", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := client.ListUploads(context.Background(), "UCabc", 5)
			if err == nil {
				t.Fatal("expected error")
			}

			var re *RemoteError
			if !errors.As(err, &re) {
				t.Fatalf("error %T is not a RemoteError", err)
			}
			if re.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", re.StatusCode, tt.status)
			}
			if IsRetriable(err) != tt.wantRetriable {
				t.Errorf("IsRetriable() = %v, want %v", IsRetriable(err), tt.wantRetriable)
			}
		})
	}
}

func TestClient_TransportErrorIsRetriable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(ClientConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second})

	_, err := client.VideoStats(context.Background(), []string{"vid1"})
	if err == nil {
		t.Fatal("expected error against closed server")
	}
	if !IsRetriable(err) {
		t.Errorf("transport failure should be retriable, got %v", err)
	}
}
