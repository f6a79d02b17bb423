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

type FeedService interface {
	GenerateFeed(ctx context.Context, ref string) (string, error)
	ReadFeed(ctx context.Context, feedID string) (*model.Feed, error)
	PreviewFeed(ctx context.Context, id string) (*podcast.Preview, error)
	CheckFeed(ctx context.Context, feedID string) (*podcast.FeedStatus, error)
	ListFeeds(ctx context.Context) ([]*model.Feed, error)
	CreateFeedForChannel(ctx context.Context, recordID string) (*model.Feed, bool, error)
	FeedURL(feedID string) string
}

type FeedAPI struct {
	feeds  FeedService
	logger *slog.Logger
}

func NewFeedAPI(feeds FeedService, logger *slog.Logger) *FeedAPI {
	return &FeedAPI{
		feeds:  feeds,
		logger: logger,
	}
}

func (f *FeedAPI) Register(r chi.Router) {
	r.Post("/generate", f.Generate)
	r.Get("/feed/{id}", f.Read)
	r.Get("/preview/{id}", f.Preview)
	r.Get("/api/feeds", f.List)
	r.Post("/api/feeds", f.Create)
	r.Get("/api/check-feed/{id}", f.Check)
}

type feedResponse struct {
	ID           string `json:"id"`
	ChannelID    string `json:"channel_id"`
	ChannelTitle string `json:"channel_title"`
	LastUpdated  string `json:"last_updated"`
	FeedURL      string `json:"feed_url"`
}

func (f *FeedAPI) toResponse(feed *model.Feed) feedResponse {
	return feedResponse{
		ID:           feed.ID,
		ChannelID:    string(feed.ChannelID),
		ChannelTitle: feed.ChannelTitle,
		LastUpdated:  feed.LastUpdated.UTC().Format(time.RFC3339),
		FeedURL:      f.feeds.FeedURL(feed.ID),
	}
}

func (f *FeedAPI) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		YoutubeURL string `json:"youtube_url"`
	}
	if err := decode(r, &req); err != nil {
		f.returnErr(w, http.StatusBadRequest, "Please provide a YouTube URL", err)
		return
	}

	feedID, err := f.feeds.GenerateFeed(r.Context(), req.YoutubeURL)
	if err != nil {
		f.returnErr(w, StatusFor(err), "could not generate feed", err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{"feed_id": feedID})
}

func (f *FeedAPI) Read(w http.ResponseWriter, r *http.Request) {
	feedID := chi.URLParam(r, "id")
	feed, err := f.feeds.ReadFeed(r.Context(), feedID)
	if err != nil {
		f.returnErr(w, StatusFor(err), fmt.Sprintf("Feed with ID %s not found", feedID), err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(feed.RSS))
}

func (f *FeedAPI) Preview(w http.ResponseWriter, r *http.Request) {
	preview, err := f.feeds.PreviewFeed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		f.returnErr(w, StatusFor(err), "could not preview feed", err)
		return
	}

	JSON(w, http.StatusOK, preview)
}

func (f *FeedAPI) List(w http.ResponseWriter, r *http.Request) {
	feeds, err := f.feeds.ListFeeds(r.Context())
	if err != nil {
		f.returnErr(w, http.StatusInternalServerError, "could not list feeds", err)
		return
	}

	resp := struct {
		Feeds []feedResponse `json:"feeds"`
	}{
		Feeds: make([]feedResponse, 0, len(feeds)),
	}
	for _, feed := range feeds {
		resp.Feeds = append(resp.Feeds, f.toResponse(feed))
	}

	JSON(w, http.StatusOK, resp)
}

func (f *FeedAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channel_id"`
	}
	if err := decode(r, &req); err != nil {
		f.returnErr(w, http.StatusBadRequest, "channel_id is required", err)
		return
	}

	feed, created, err := f.feeds.CreateFeedForChannel(r.Context(), req.ChannelID)
	if err != nil {
		f.returnErr(w, StatusFor(err), "could not create feed", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	JSON(w, status, f.toResponse(feed))
}

func (f *FeedAPI) Check(w http.ResponseWriter, r *http.Request) {
	feedID := chi.URLParam(r, "id")
	status, err := f.feeds.CheckFeed(r.Context(), feedID)
	if err != nil {
		code := StatusFor(err)
		if code != http.StatusNotFound {
			f.returnErr(w, code, "could not check feed", err)
			return
		}
		JSON(w, http.StatusNotFound, struct {
			Exists  bool   `json:"exists"`
			Message string `json:"message"`
		}{
			Exists:  false,
			Message: fmt.Sprintf("Feed with ID %s not found", feedID),
		})
		return
	}

	JSON(w, http.StatusOK, struct {
		Exists        bool   `json:"exists"`
		FeedID        string `json:"feed_id"`
		ChannelID     string `json:"channel_id"`
		ChannelTitle  string `json:"channel_title"`
		LastUpdated   string `json:"last_updated"`
		HasRSSContent bool   `json:"has_rss_content"`
	}{
		Exists:        true,
		FeedID:        status.FeedID,
		ChannelID:     string(status.ChannelID),
		ChannelTitle:  status.ChannelTitle,
		LastUpdated:   status.LastUpdated.UTC().Format(time.RFC3339),
		HasRSSContent: status.HasRSSContent,
	})
}

func (f *FeedAPI) returnErr(w http.ResponseWriter, status int, message string, err error, details ...any) {
	f.logger.Error(message, slog.String("err", err.Error()), slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}
