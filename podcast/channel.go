package podcast

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ewintr.nl/tubecast/model"
	"ewintr.nl/tubecast/storage"
	"golang.org/x/exp/slog"
)

// ChannelInput creates a channel. Reference is a canonical channel id or
// anything the resolver understands. The other fields override the values
// from YouTube when set.
type ChannelInput struct {
	Reference   string
	Title       string
	Description string
	Thumbnail   string
}

// ChannelUpdate changes only the fields that are not nil.
type ChannelUpdate struct {
	Title           *string
	Description     *string
	Thumbnail       *string
	SubscriberCount *int64
	VideoCount      *int64
}

func (s *Service) ListChannels(ctx context.Context) ([]*model.ChannelRecord, error) {
	return s.channels.List(ctx)
}

func (s *Service) GetChannel(ctx context.Context, id string) (*model.ChannelRecord, error) {
	rec, err := s.channels.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: channel %s", ErrNotFound, id)
	}

	return rec, err
}

// CreateChannel registers a channel and tries to create its feed as well. A
// failing feed does not undo the channel.
func (s *Service) CreateChannel(ctx context.Context, in ChannelInput) (*model.ChannelRecord, error) {
	ref := strings.TrimSpace(in.Reference)
	if ref == "" {
		return nil, fmt.Errorf("%w: channel_id is required", ErrInvalidInput)
	}

	channelID := model.YoutubeChannelID(ref)
	if strings.Contains(ref, "youtube.com") || strings.Contains(ref, "@") {
		id, err := s.resolver.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		channelID = id
	}

	switch _, err := s.channels.FindByChannelID(ctx, channelID); {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrConflict, channelID)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	ch, err := s.metadata.Channel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &model.ChannelRecord{
		ID:              model.ChannelRecordIDFor(channelID),
		ChannelID:       channelID,
		Title:           firstNonEmpty(in.Title, ch.Title),
		Description:     firstNonEmpty(in.Description, ch.Description),
		Thumbnail:       firstNonEmpty(in.Thumbnail, ch.Thumbnail),
		SubscriberCount: ch.SubscriberCount,
		VideoCount:      ch.VideoCount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.channels.Create(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrExists) {
			return nil, fmt.Errorf("%w: %s", ErrConflict, channelID)
		}
		return nil, err
	}
	s.logger.Info("created channel", slog.String("id", rec.ID), slog.String("channelid", string(channelID)))

	switch _, err := s.feeds.FindByID(ctx, model.FeedIDFor(channelID)); {
	case errors.Is(err, storage.ErrNotFound):
		if _, err := s.buildForRecord(ctx, rec); err != nil {
			s.logger.Error("could not create feed for channel", slog.String("id", rec.ID), slog.String("error", err.Error()))
		}
	case err != nil:
		s.logger.Error("could not look up feed for channel", slog.String("id", rec.ID), slog.String("error", err.Error()))
	}

	return rec, nil
}

func (s *Service) UpdateChannel(ctx context.Context, id string, upd ChannelUpdate) (*model.ChannelRecord, error) {
	rec, err := s.GetChannel(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		rec.Title = *upd.Title
	}
	if upd.Description != nil {
		rec.Description = *upd.Description
	}
	if upd.Thumbnail != nil {
		rec.Thumbnail = *upd.Thumbnail
	}
	if upd.SubscriberCount != nil {
		rec.SubscriberCount = *upd.SubscriberCount
	}
	if upd.VideoCount != nil {
		rec.VideoCount = *upd.VideoCount
	}
	rec.UpdatedAt = s.now().UTC()

	if err := s.channels.Save(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *Service) DeleteChannel(ctx context.Context, id string) error {
	err := s.channels.Delete(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: channel %s", ErrNotFound, id)
	}

	return err
}

func (s *Service) upsertChannelRecord(ctx context.Context, channelID model.YoutubeChannelID, ch *model.Channel, videoCount int64) error {
	now := s.now().UTC()
	rec, err := s.channels.FindByChannelID(ctx, channelID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s.channels.Create(ctx, &model.ChannelRecord{
			ID:              model.ChannelRecordIDFor(channelID),
			ChannelID:       channelID,
			Title:           ch.Title,
			Description:     ch.Description,
			Thumbnail:       ch.Thumbnail,
			SubscriberCount: ch.SubscriberCount,
			VideoCount:      videoCount,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	case err != nil:
		return err
	}

	rec.Title = ch.Title
	rec.Description = ch.Description
	rec.Thumbnail = ch.Thumbnail
	rec.SubscriberCount = ch.SubscriberCount
	rec.VideoCount = videoCount
	rec.UpdatedAt = now

	return s.channels.Save(ctx, rec)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
