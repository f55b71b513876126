package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/tvcast/internal/domain/model"
	"github.com/hszk-dev/tvcast/internal/domain/repository"
	"github.com/hszk-dev/tvcast/internal/usecase"
)

// Request/Response types

type ChannelRequest struct {
	Name          string   `json:"name"`
	Sources       []string `json:"sources"`
	DisplayPolicy string   `json:"display_policy"`
	StationID     int      `json:"station_id,omitempty"`
}

type ChannelResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Sources       []string `json:"sources"`
	DisplayPolicy string   `json:"display_policy"`
	StationID     int      `json:"station_id"`
}

type VideoItemResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	Link            string `json:"link"`
	PublishedAt     string `json:"published_at,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
	DurationLabel   string `json:"duration_label"`
}

type SlotResponse struct {
	Video     *VideoItemResponse `json:"video"`
	IsCurrent bool               `json:"is_current"`
}

type GuideEntryResponse struct {
	Channel ChannelResponse `json:"channel"`
	Slots   []SlotResponse  `json:"slots"`
}

type GuideResponse struct {
	CurrentTime string               `json:"current_time"`
	Channels    []GuideEntryResponse `json:"channels"`
}

type VideosPageResponse struct {
	Items         []VideoItemResponse `json:"items"`
	NextPageToken string              `json:"next_page_token,omitempty"`
}

// ChannelHandler handles channel configuration and guide HTTP requests.
type ChannelHandler struct {
	channels usecase.ChannelService
	guide    usecase.GuideService
}

// NewChannelHandler creates a new ChannelHandler.
func NewChannelHandler(channels usecase.ChannelService, guide usecase.GuideService) *ChannelHandler {
	return &ChannelHandler{channels: channels, guide: guide}
}

// List handles GET /v1/channels
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	channels, err := h.channels.ListChannels(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	out := make([]ChannelResponse, len(channels))
	for i, ch := range channels {
		out[i] = toChannelResponse(ch)
	}
	JSON(w, http.StatusOK, out)
}

// Get handles GET /v1/channels/{id}
func (h *ChannelHandler) Get(w http.ResponseWriter, r *http.Request) {
	ch, err := h.channels.GetChannel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, toChannelResponse(ch))
}

// Create handles POST /v1/channels
func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	ch, err := h.channels.CreateChannel(r.Context(), usecase.CreateChannelInput{
		Name:          req.Name,
		Sources:       req.Sources,
		DisplayPolicy: model.DisplayPolicy(req.DisplayPolicy),
		StationID:     req.StationID,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusCreated, toChannelResponse(ch))
}

// Update handles PUT /v1/channels/{id}
func (h *ChannelHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	ch, err := h.channels.UpdateChannel(r.Context(), chi.URLParam(r, "id"), usecase.UpdateChannelInput{
		Name:          req.Name,
		Sources:       req.Sources,
		DisplayPolicy: model.DisplayPolicy(req.DisplayPolicy),
		StationID:     req.StationID,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, toChannelResponse(ch))
}

// Delete handles DELETE /v1/channels/{id}
func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ch, err := h.channels.DeleteChannel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, toChannelResponse(ch))
}

// Guide handles GET /v1/guide
func (h *ChannelHandler) Guide(w http.ResponseWriter, r *http.Request) {
	guides, err := h.guide.Guide(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	entries := make([]GuideEntryResponse, len(guides))
	for i, g := range guides {
		entries[i] = toGuideEntryResponse(g)
	}
	JSON(w, http.StatusOK, GuideResponse{
		CurrentTime: time.Now().Format("15:04"),
		Channels:    entries,
	})
}

// Schedule handles GET /v1/channels/{id}/schedule
func (h *ChannelHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	guide, err := h.guide.ChannelSchedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, toGuideEntryResponse(*guide))
}

// Videos handles GET /v1/channels/{id}/videos
func (h *ChannelHandler) Videos(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			Error(w, http.StatusBadRequest, "invalid_limit", "Limit must be between 1 and 50")
			return
		}
		limit = n
	}

	page, err := h.guide.MoreVideos(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("page_token"), limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	items := make([]VideoItemResponse, len(page.Items))
	for i := range page.Items {
		items[i] = toVideoItemResponse(&page.Items[i])
	}
	JSON(w, http.StatusOK, VideosPageResponse{Items: items, NextPageToken: page.NextPageToken})
}

func (h *ChannelHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrChannelNotFound):
		Error(w, http.StatusNotFound, "channel_not_found", "Channel not found")
	case errors.Is(err, repository.ErrDuplicateChannel):
		Error(w, http.StatusConflict, "duplicate_channel", "Channel already exists")
	case errors.Is(err, model.ErrEmptyChannelName):
		Error(w, http.StatusBadRequest, "invalid_name", "Name cannot be empty")
	case errors.Is(err, model.ErrNoSources):
		Error(w, http.StatusBadRequest, "invalid_sources", "At least one source is required")
	case errors.Is(err, model.ErrEmptySource):
		Error(w, http.StatusBadRequest, "invalid_sources", "Sources cannot be empty strings")
	case errors.Is(err, model.ErrInvalidDisplayPolicy):
		Error(w, http.StatusBadRequest, "invalid_display_policy", "Display policy must be one of random, popular, new")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}

func toChannelResponse(ch *model.Channel) ChannelResponse {
	return ChannelResponse{
		ID:            ch.ID,
		Name:          ch.Name,
		Sources:       ch.Sources,
		DisplayPolicy: ch.DisplayPolicy.String(),
		StationID:     ch.StationID,
	}
}

func toVideoItemResponse(item *model.VideoItem) VideoItemResponse {
	resp := VideoItemResponse{
		ID:              item.ID,
		Title:           item.Title,
		Description:     item.Description,
		ThumbnailURL:    item.ThumbnailURL,
		Link:            item.Link,
		DurationMinutes: item.DurationMinutes,
		DurationLabel:   item.DurationLabel,
	}
	if !item.PublishedAt.IsZero() {
		resp.PublishedAt = item.PublishedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

func toGuideEntryResponse(g usecase.ChannelGuide) GuideEntryResponse {
	slots := make([]SlotResponse, len(g.Slots))
	for i, s := range g.Slots {
		slot := SlotResponse{IsCurrent: s.Airing}
		if s.Item != nil {
			item := toVideoItemResponse(s.Item)
			slot.Video = &item
		}
		slots[i] = slot
	}
	return GuideEntryResponse{
		Channel: toChannelResponse(g.Channel),
		Slots:   slots,
	}
}
