package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"ewintr.nl/tubecast/model"
	"golang.org/x/exp/slog"
)

type YtDlpInfo struct {
	YtDlpPath   string
	FfprobePath string
	CacheDir    string
}

// YtDlp runs yt-dlp for downloads and live streams and ffprobe to measure
// the result.
type YtDlp struct {
	ytdlp    string
	ffprobe  string
	cacheDir string
	logger   *slog.Logger
}

func NewYtDlp(info YtDlpInfo, logger *slog.Logger) (*YtDlp, error) {
	if info.YtDlpPath == "" {
		info.YtDlpPath = "yt-dlp"
	}
	if info.FfprobePath == "" {
		info.FfprobePath = "ffprobe"
	}
	if err := os.MkdirAll(info.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create audio cache dir: %w", err)
	}

	return &YtDlp{
		ytdlp:    info.YtDlpPath,
		ffprobe:  info.FfprobePath,
		cacheDir: info.CacheDir,
		logger:   logger,
	}, nil
}

func (y *YtDlp) ArtifactPath(id model.YoutubeVideoID) string {
	return filepath.Join(y.cacheDir, string(id)+".mp3")
}

func (y *YtDlp) Extract(ctx context.Context, id model.YoutubeVideoID) (*Artifact, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: invalid video id %q", ErrExtraction, id)
	}

	path := y.ArtifactPath(id)
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
		}
		if err := y.download(ctx, id, path); err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	duration, err := y.probe(ctx, path)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Path:     path,
		Size:     info.Size(),
		Duration: duration,
	}, nil
}

func (y *YtDlp) download(ctx context.Context, id model.YoutubeVideoID, path string) error {
	tmpDir, err := os.MkdirTemp(y.cacheDir, ".tmp-")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer os.RemoveAll(tmpDir)

	start := time.Now()
	cmd := exec.CommandContext(ctx, y.ytdlp,
		"-f", "bestaudio",
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "128K",
		"--embed-thumbnail",
		"--add-metadata",
		"-o", filepath.Join(tmpDir, string(id)+".%(ext)s"),
		id.WatchURL(),
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		y.logger.Error("yt-dlp failed", slog.String("id", string(id)), slog.String("error", err.Error()), slog.String("stderr", strings.TrimSpace(stderr.String())))
		return fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".mp3") {
			continue
		}
		if err := os.Rename(filepath.Join(tmpDir, entry.Name()), path); err != nil {
			return fmt.Errorf("%w: %v", ErrExtraction, err)
		}
		y.logger.Info("extracted audio", slog.String("id", string(id)), slog.Duration("took", time.Since(start)))
		return nil
	}

	return fmt.Errorf("%w: no mp3 produced for %s", ErrExtraction, id)
}

func (y *YtDlp) probe(ctx context.Context, path string) (time.Duration, error) {
	out, err := exec.CommandContext(ctx, y.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe: %v", ErrExtraction, err)
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unexpected ffprobe output %q", ErrExtraction, out)
	}

	return time.Duration(secs * float64(time.Second)), nil
}

func (y *YtDlp) Title(ctx context.Context, id model.YoutubeVideoID) (string, error) {
	if !id.Valid() {
		return "", fmt.Errorf("%w: invalid video id %q", ErrExtraction, id)
	}
	out, err := exec.CommandContext(ctx, y.ytdlp, "--skip-download", "--print", "title", id.WatchURL()).Output()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	return strings.TrimSpace(string(out)), nil
}

func (y *YtDlp) OpenStream(ctx context.Context, id model.YoutubeVideoID) (io.ReadCloser, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: invalid video id %q", ErrExtraction, id)
	}

	cmd := exec.CommandContext(ctx, y.ytdlp,
		"-f", "bestaudio",
		"-o", "-",
		"--no-continue",
		"--no-part",
		"--no-playlist",
		id.WatchURL(),
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	y.logger.Info("started audio stream", slog.String("id", string(id)), slog.Int("pid", cmd.Process.Pid))

	return &stream{
		ReadCloser: stdout,
		cmd:        cmd,
		id:         id,
		logger:     y.logger,
	}, nil
}

// stream owns the yt-dlp process behind a live pass-through.
type stream struct {
	io.ReadCloser
	cmd    *exec.Cmd
	id     model.YoutubeVideoID
	once   sync.Once
	logger *slog.Logger
}

func (s *stream) Close() error {
	s.once.Do(func() {
		s.ReadCloser.Close()
		s.cmd.Process.Kill()
		if err := s.cmd.Wait(); err != nil {
			s.logger.Info("audio stream ended", slog.String("id", string(s.id)), slog.String("exit", err.Error()))
			return
		}
		s.logger.Info("audio stream ended", slog.String("id", string(s.id)))
	})

	return nil
}
