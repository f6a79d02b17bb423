package storage

var pgMigration = []string{
	`CREATE TABLE feed (
id VARCHAR(64) PRIMARY KEY,
channel_id VARCHAR(100) NOT NULL,
channel_title TEXT NOT NULL,
rss_content TEXT,
last_updated TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE cached_video (
id VARCHAR(64) PRIMARY KEY,
title TEXT NOT NULL,
audio_path TEXT,
last_accessed TIMESTAMPTZ NOT NULL,
file_size BIGINT NOT NULL DEFAULT 0,
duration VARCHAR(20) NOT NULL DEFAULT '00:00'
)`,
	`CREATE INDEX cached_video_last_accessed ON cached_video (last_accessed)`,
	`CREATE TABLE youtube_channel (
id VARCHAR(64) PRIMARY KEY,
channel_id VARCHAR(100) NOT NULL UNIQUE,
title TEXT NOT NULL,
description TEXT,
thumbnail TEXT,
subscriber_count BIGINT NOT NULL DEFAULT 0,
video_count BIGINT NOT NULL DEFAULT 0,
created_at TIMESTAMPTZ NOT NULL,
updated_at TIMESTAMPTZ NOT NULL
)`,
}

var sqliteMigration = []string{
	`CREATE TABLE feed (
id TEXT PRIMARY KEY,
channel_id TEXT NOT NULL,
channel_title TEXT NOT NULL,
rss_content TEXT,
last_updated TIMESTAMP NOT NULL
)`,
	`CREATE TABLE cached_video (
id TEXT PRIMARY KEY,
title TEXT NOT NULL,
audio_path TEXT,
last_accessed TIMESTAMP NOT NULL,
file_size INTEGER NOT NULL DEFAULT 0,
duration TEXT NOT NULL DEFAULT '00:00'
)`,
	`CREATE INDEX cached_video_last_accessed ON cached_video (last_accessed)`,
	`CREATE TABLE youtube_channel (
id TEXT PRIMARY KEY,
channel_id TEXT NOT NULL UNIQUE,
title TEXT NOT NULL,
description TEXT,
thumbnail TEXT,
subscriber_count INTEGER NOT NULL DEFAULT 0,
video_count INTEGER NOT NULL DEFAULT 0,
created_at TIMESTAMP NOT NULL,
updated_at TIMESTAMP NOT NULL
)`,
}
