package storage

import (
	"context"
	"database/sql"
	"errors"

	"ewintr.nl/tubecast/model"
)

type SQLFeedRepository struct {
	db *DB
}

func NewSQLFeedRepository(db *DB) *SQLFeedRepository {
	return &SQLFeedRepository{db: db}
}

func (r *SQLFeedRepository) FindByID(ctx context.Context, id string) (*model.Feed, error) {
	row := r.db.db.QueryRowContext(ctx, r.db.rebind(`
SELECT id, channel_id, channel_title, rss_content, last_updated
FROM feed
WHERE id = $1`), id)

	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return feed, err
}

func (r *SQLFeedRepository) Save(ctx context.Context, feed *model.Feed) error {
	_, err := r.db.db.ExecContext(ctx, r.db.rebind(`
INSERT INTO feed (id, channel_id, channel_title, rss_content, last_updated)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
channel_id = excluded.channel_id,
channel_title = excluded.channel_title,
rss_content = excluded.rss_content,
last_updated = excluded.last_updated`),
		feed.ID, string(feed.ChannelID), feed.ChannelTitle, nullString(feed.RSS), feed.LastUpdated.UTC())

	return err
}

func (r *SQLFeedRepository) List(ctx context.Context) ([]*model.Feed, error) {
	rows, err := r.db.db.QueryContext(ctx, `
SELECT id, channel_id, channel_title, rss_content, last_updated
FROM feed
ORDER BY last_updated DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feeds := []*model.Feed{}
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}

	return feeds, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeed(s scanner) (*model.Feed, error) {
	var (
		feed      model.Feed
		channelID string
		rss       sql.NullString
	)
	if err := s.Scan(&feed.ID, &channelID, &feed.ChannelTitle, &rss, &feed.LastUpdated); err != nil {
		return nil, err
	}
	feed.ChannelID = model.YoutubeChannelID(channelID)
	feed.RSS = rss.String
	feed.LastUpdated = feed.LastUpdated.UTC()

	return &feed, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
