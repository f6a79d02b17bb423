package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ewintr.nl/tubecast/model"
)

type SQLVideoCacheRepository struct {
	db *DB
}

func NewSQLVideoCacheRepository(db *DB) *SQLVideoCacheRepository {
	return &SQLVideoCacheRepository{db: db}
}

func (r *SQLVideoCacheRepository) FindByID(ctx context.Context, id model.YoutubeVideoID) (*model.CachedVideo, error) {
	row := r.db.db.QueryRowContext(ctx, r.db.rebind(`
SELECT id, title, audio_path, last_accessed, file_size, duration
FROM cached_video
WHERE id = $1`), string(id))

	video, err := scanCachedVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return video, err
}

func (r *SQLVideoCacheRepository) Save(ctx context.Context, video *model.CachedVideo) error {
	duration := video.Duration
	if duration == "" {
		duration = "00:00"
	}
	_, err := r.db.db.ExecContext(ctx, r.db.rebind(`
INSERT INTO cached_video (id, title, audio_path, last_accessed, file_size, duration)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
title = excluded.title,
audio_path = excluded.audio_path,
last_accessed = excluded.last_accessed,
file_size = excluded.file_size,
duration = excluded.duration`),
		string(video.ID), video.Title, nullString(video.AudioPath), video.LastAccessed.UTC(), video.FileSize, duration)

	return err
}

func (r *SQLVideoCacheRepository) Touch(ctx context.Context, id model.YoutubeVideoID, at time.Time) error {
	res, err := r.db.db.ExecContext(ctx, r.db.rebind(`
UPDATE cached_video
SET last_accessed = $1
WHERE id = $2`), at.UTC(), string(id))
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

func (r *SQLVideoCacheRepository) FindNotAccessedSince(ctx context.Context, before time.Time) ([]*model.CachedVideo, error) {
	rows, err := r.db.db.QueryContext(ctx, r.db.rebind(`
SELECT id, title, audio_path, last_accessed, file_size, duration
FROM cached_video
WHERE last_accessed < $1
ORDER BY last_accessed`), before.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := []*model.CachedVideo{}
	for rows.Next() {
		video, err := scanCachedVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}

	return videos, rows.Err()
}

func (r *SQLVideoCacheRepository) Delete(ctx context.Context, id model.YoutubeVideoID) error {
	_, err := r.db.db.ExecContext(ctx, r.db.rebind(`DELETE FROM cached_video WHERE id = $1`), string(id))
	return err
}

func scanCachedVideo(s scanner) (*model.CachedVideo, error) {
	var (
		video     model.CachedVideo
		id        string
		audioPath sql.NullString
	)
	if err := s.Scan(&id, &video.Title, &audioPath, &video.LastAccessed, &video.FileSize, &video.Duration); err != nil {
		return nil, err
	}
	video.ID = model.YoutubeVideoID(id)
	video.AudioPath = audioPath.String
	video.LastAccessed = video.LastAccessed.UTC()

	return &video, nil
}
