package storage

import (
	"context"
	"database/sql"
	"errors"

	"ewintr.nl/tubecast/model"
)

type SQLChannelRepository struct {
	db *DB
}

func NewSQLChannelRepository(db *DB) *SQLChannelRepository {
	return &SQLChannelRepository{db: db}
}

const channelColumns = `id, channel_id, title, description, thumbnail, subscriber_count, video_count, created_at, updated_at`

func (r *SQLChannelRepository) FindByID(ctx context.Context, id string) (*model.ChannelRecord, error) {
	row := r.db.db.QueryRowContext(ctx, r.db.rebind(`
SELECT `+channelColumns+`
FROM youtube_channel
WHERE id = $1`), id)

	return findChannel(row)
}

func (r *SQLChannelRepository) FindByChannelID(ctx context.Context, channelID model.YoutubeChannelID) (*model.ChannelRecord, error) {
	row := r.db.db.QueryRowContext(ctx, r.db.rebind(`
SELECT `+channelColumns+`
FROM youtube_channel
WHERE channel_id = $1`), string(channelID))

	return findChannel(row)
}

func (r *SQLChannelRepository) Create(ctx context.Context, channel *model.ChannelRecord) error {
	res, err := r.db.db.ExecContext(ctx, r.db.rebind(`
INSERT INTO youtube_channel (`+channelColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT DO NOTHING`),
		channel.ID, string(channel.ChannelID), channel.Title, nullString(channel.Description), nullString(channel.Thumbnail),
		channel.SubscriberCount, channel.VideoCount, channel.CreatedAt.UTC(), channel.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrExists
	}

	return nil
}

func (r *SQLChannelRepository) Save(ctx context.Context, channel *model.ChannelRecord) error {
	_, err := r.db.db.ExecContext(ctx, r.db.rebind(`
INSERT INTO youtube_channel (`+channelColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
title = excluded.title,
description = excluded.description,
thumbnail = excluded.thumbnail,
subscriber_count = excluded.subscriber_count,
video_count = excluded.video_count,
updated_at = excluded.updated_at`),
		channel.ID, string(channel.ChannelID), channel.Title, nullString(channel.Description), nullString(channel.Thumbnail),
		channel.SubscriberCount, channel.VideoCount, channel.CreatedAt.UTC(), channel.UpdatedAt.UTC())

	return err
}

func (r *SQLChannelRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.db.ExecContext(ctx, r.db.rebind(`DELETE FROM youtube_channel WHERE id = $1`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *SQLChannelRepository) List(ctx context.Context) ([]*model.ChannelRecord, error) {
	rows, err := r.db.db.QueryContext(ctx, `
SELECT `+channelColumns+`
FROM youtube_channel
ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := []*model.ChannelRecord{}
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}

	return channels, rows.Err()
}

func findChannel(row *sql.Row) (*model.ChannelRecord, error) {
	channel, err := scanChannel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return channel, err
}

func scanChannel(s scanner) (*model.ChannelRecord, error) {
	var (
		channel     model.ChannelRecord
		channelID   string
		description sql.NullString
		thumbnail   sql.NullString
	)
	if err := s.Scan(&channel.ID, &channelID, &channel.Title, &description, &thumbnail,
		&channel.SubscriberCount, &channel.VideoCount, &channel.CreatedAt, &channel.UpdatedAt); err != nil {
		return nil, err
	}
	channel.ChannelID = model.YoutubeChannelID(channelID)
	channel.Description = description.String
	channel.Thumbnail = thumbnail.String
	channel.CreatedAt = channel.CreatedAt.UTC()
	channel.UpdatedAt = channel.UpdatedAt.UTC()

	return &channel, nil
}
