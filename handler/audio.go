package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"ewintr.nl/tubecast/audio"
	"ewintr.nl/tubecast/model"
	"ewintr.nl/tubecast/podcast"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

type AudioService interface {
	StreamAudio(ctx context.Context, videoID model.YoutubeVideoID) (io.ReadCloser, error)
	ExtractAudio(ctx context.Context, videoID model.YoutubeVideoID) (*model.CachedVideo, error)
}

type AudioAPI struct {
	audio  AudioService
	logger *slog.Logger
}

func NewAudioAPI(audio AudioService, logger *slog.Logger) *AudioAPI {
	return &AudioAPI{
		audio:  audio,
		logger: logger,
	}
}

func (a *AudioAPI) Register(r chi.Router) {
	r.Get("/audio/{id}", a.Serve)
}

func (a *AudioAPI) Serve(w http.ResponseWriter, r *http.Request) {
	videoID := model.YoutubeVideoID(chi.URLParam(r, "id"))
	if !videoID.Valid() {
		a.returnErr(w, http.StatusBadRequest, "invalid video id", fmt.Errorf("%w: %q", podcast.ErrInvalidInput, videoID))
		return
	}
	if r.URL.Query().Get("cached") == "1" {
		a.serveFile(w, r, videoID)
		return
	}

	// headers go out before the tool runs, so failures from here on can
	// only end the stream early
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	stream, err := a.audio.StreamAudio(r.Context(), videoID)
	if err != nil {
		a.logger.Error("could not start audio stream", slog.String("id", string(videoID)), slog.String("error", err.Error()))
		return
	}
	defer stream.Close()

	n, err := audio.Copy(w, stream)
	if err != nil {
		a.logger.Info("audio stream interrupted", slog.String("id", string(videoID)), slog.Int64("bytes", n), slog.String("error", err.Error()))
		return
	}
	a.logger.Info("audio streamed", slog.String("id", string(videoID)), slog.Int64("bytes", n))
}

func (a *AudioAPI) serveFile(w http.ResponseWriter, r *http.Request, videoID model.YoutubeVideoID) {
	cached, err := a.audio.ExtractAudio(r.Context(), videoID)
	if err != nil {
		a.returnErr(w, StatusFor(err), "could not extract audio", err)
		return
	}

	f, err := os.Open(cached.AudioPath)
	if err != nil {
		a.returnErr(w, http.StatusInternalServerError, "could not open audio", err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		a.returnErr(w, http.StatusInternalServerError, "could not open audio", err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeContent(w, r, filepath.Base(cached.AudioPath), info.ModTime(), f)
}

func (a *AudioAPI) returnErr(w http.ResponseWriter, status int, message string, err error, details ...any) {
	a.logger.Error(message, slog.String("err", err.Error()), slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}
