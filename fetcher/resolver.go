package fetcher

import (
	"context"
	"errors"
	"regexp"

	"ewintr.nl/tubecast/model"
	"golang.org/x/exp/slog"
)

var (
	channelURL  = regexp.MustCompile(`youtube\.com/channel/([^/?]+)`)
	handleRef   = regexp.MustCompile(`@([^/?]+)`)
	customURL   = regexp.MustCompile(`youtube\.com/(?:c|user)/([^/?]+)`)
	canonicalID = regexp.MustCompile(`^UC[0-9A-Za-z_-]{22}$`)
)

// Resolver maps the different ways people refer to a channel onto its
// canonical id.
type Resolver struct {
	provider Provider
	logger   *slog.Logger
}

func NewResolver(provider Provider, logger *slog.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		logger:   logger,
	}
}

// Resolve never returns an upstream error. Everything that does not end in
// a channel id is logged and reported as ErrUnresolved.
func (r *Resolver) Resolve(ctx context.Context, ref string) (model.YoutubeChannelID, error) {
	if m := channelURL.FindStringSubmatch(ref); m != nil {
		return model.YoutubeChannelID(m[1]), nil
	}
	if canonicalID.MatchString(ref) {
		return model.YoutubeChannelID(ref), nil
	}

	if m := handleRef.FindStringSubmatch(ref); m != nil {
		return r.byHandle(ctx, m[1])
	}

	if m := customURL.FindStringSubmatch(ref); m != nil {
		id, err := r.provider.SearchChannel(ctx, m[1])
		if err != nil {
			r.logger.Error("could not resolve custom url", slog.String("name", m[1]), slog.String("error", err.Error()))
			return "", ErrUnresolved
		}
		return id, nil
	}

	r.logger.Info("unsupported channel reference", slog.String("reference", ref))
	return "", ErrUnresolved
}

func (r *Resolver) byHandle(ctx context.Context, handle string) (model.YoutubeChannelID, error) {
	id, err := r.provider.ChannelByHandle(ctx, handle)
	switch {
	case err == nil:
		return id, nil
	case !errors.Is(err, ErrNoChannel):
		r.logger.Error("could not resolve handle", slog.String("handle", handle), slog.String("error", err.Error()))
		return "", ErrUnresolved
	}

	id, err = r.provider.SearchChannel(ctx, handle)
	if err != nil {
		r.logger.Error("could not find channel for handle", slog.String("handle", handle), slog.String("error", err.Error()))
		return "", ErrUnresolved
	}

	return id, nil
}
