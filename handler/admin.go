package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

type AdminService interface {
	Cleanup(ctx context.Context, key string) (int, error)
}

type AdminAPI struct {
	admin  AdminService
	logger *slog.Logger
}

func NewAdminAPI(admin AdminService, logger *slog.Logger) *AdminAPI {
	return &AdminAPI{
		admin:  admin,
		logger: logger,
	}
}

func (a *AdminAPI) Register(r chi.Router) {
	r.Get("/cleanup", a.Cleanup)
}

func (a *AdminAPI) Cleanup(w http.ResponseWriter, r *http.Request) {
	count, err := a.admin.Cleanup(r.Context(), r.URL.Query().Get("key"))
	if err != nil {
		status := StatusFor(err)
		message := "cleanup failed"
		if status == http.StatusForbidden {
			message = "Access denied"
		}
		a.logger.Error(message, slog.String("err", err.Error()))
		Error(w, status, message, err)
		return
	}

	JSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		Count   int    `json:"count"`
	}{
		Message: fmt.Sprintf("Cleanup completed. %d files removed.", count),
		Count:   count,
	})
}
