package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ewintr.nl/tubecast/model"
	"ewintr.nl/tubecast/podcast"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

type ChannelService interface {
	ListChannels(ctx context.Context) ([]*model.ChannelRecord, error)
	GetChannel(ctx context.Context, id string) (*model.ChannelRecord, error)
	CreateChannel(ctx context.Context, in podcast.ChannelInput) (*model.ChannelRecord, error)
	UpdateChannel(ctx context.Context, id string, upd podcast.ChannelUpdate) (*model.ChannelRecord, error)
	DeleteChannel(ctx context.Context, id string) error
}

type ChannelAPI struct {
	channels ChannelService
	logger   *slog.Logger
}

func NewChannelAPI(channels ChannelService, logger *slog.Logger) *ChannelAPI {
	return &ChannelAPI{
		channels: channels,
		logger:   logger,
	}
}

func (c *ChannelAPI) Register(r chi.Router) {
	r.Route("/api/channels", func(r chi.Router) {
		r.Get("/", c.List)
		r.Post("/", c.Create)
		r.Get("/{id}", c.Get)
		r.Put("/{id}", c.Update)
		r.Delete("/{id}", c.Delete)
	})
}

type channelResponse struct {
	ID              string `json:"id"`
	ChannelID       string `json:"channel_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Thumbnail       string `json:"thumbnail"`
	SubscriberCount int64  `json:"subscriber_count"`
	VideoCount      int64  `json:"video_count"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func toChannelResponse(rec *model.ChannelRecord) channelResponse {
	return channelResponse{
		ID:              rec.ID,
		ChannelID:       string(rec.ChannelID),
		Title:           rec.Title,
		Description:     rec.Description,
		Thumbnail:       rec.Thumbnail,
		SubscriberCount: rec.SubscriberCount,
		VideoCount:      rec.VideoCount,
		CreatedAt:       rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (c *ChannelAPI) List(w http.ResponseWriter, r *http.Request) {
	channels, err := c.channels.ListChannels(r.Context())
	if err != nil {
		c.returnErr(w, http.StatusInternalServerError, "could not list channels", err)
		return
	}

	resp := struct {
		Channels []channelResponse `json:"channels"`
	}{
		Channels: make([]channelResponse, 0, len(channels)),
	}
	for _, ch := range channels {
		resp.Channels = append(resp.Channels, toChannelResponse(ch))
	}

	JSON(w, http.StatusOK, resp)
}

func (c *ChannelAPI) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := c.channels.GetChannel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.returnErr(w, StatusFor(err), "could not get channel", err)
		return
	}

	JSON(w, http.StatusOK, toChannelResponse(rec))
}

func (c *ChannelAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID   string `json:"channel_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Thumbnail   string `json:"thumbnail"`
	}
	if err := decode(r, &req); err != nil {
		c.returnErr(w, http.StatusBadRequest, "channel_id is required", err)
		return
	}

	rec, err := c.channels.CreateChannel(r.Context(), podcast.ChannelInput{
		Reference:   req.ChannelID,
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
	})
	if err != nil {
		c.returnErr(w, StatusFor(err), "could not create channel", err)
		return
	}

	JSON(w, http.StatusCreated, toChannelResponse(rec))
}

func (c *ChannelAPI) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title           *string `json:"title"`
		Description     *string `json:"description"`
		Thumbnail       *string `json:"thumbnail"`
		SubscriberCount *int64  `json:"subscriber_count"`
		VideoCount      *int64  `json:"video_count"`
	}
	if err := decode(r, &req); err != nil {
		c.returnErr(w, http.StatusBadRequest, "invalid channel update", err)
		return
	}

	rec, err := c.channels.UpdateChannel(r.Context(), chi.URLParam(r, "id"), podcast.ChannelUpdate{
		Title:           req.Title,
		Description:     req.Description,
		Thumbnail:       req.Thumbnail,
		SubscriberCount: req.SubscriberCount,
		VideoCount:      req.VideoCount,
	})
	if err != nil {
		c.returnErr(w, StatusFor(err), "could not update channel", err)
		return
	}

	JSON(w, http.StatusOK, toChannelResponse(rec))
}

func (c *ChannelAPI) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.channels.DeleteChannel(r.Context(), chi.URLParam(r, "id")); err != nil {
		c.returnErr(w, StatusFor(err), "could not delete channel", err)
		return
	}

	Message(w, http.StatusOK, "Channel deleted successfully")
}

func (c *ChannelAPI) returnErr(w http.ResponseWriter, status int, message string, err error, details ...any) {
	c.logger.Error(message, slog.String("err", err.Error()), slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}
