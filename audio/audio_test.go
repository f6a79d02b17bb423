package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"golang.org/x/exp/slog"
)

const fakeYtDlp = `#!/bin/sh
out=""
title=0
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift ;;
    --print) title=1 ;;
  esac
  shift
done
echo run >> "%s"
if [ "$title" = 1 ]; then
  echo "Fake Title"
  exit 0
fi
if [ "$out" = "-" ]; then
  %s
  exit 0
fi
file=$(echo "$out" | sed 's/%%(ext)s/mp3/')
printf 'mp3data' > "$file"
`

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	return path
}

func newTestYtDlp(t *testing.T, streamCmd string) (*YtDlp, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a posix shell")
	}

	dir := t.TempDir()
	calls := filepath.Join(dir, "calls")
	ytdlp := writeScript(t, dir, "yt-dlp", fmt.Sprintf(fakeYtDlp, calls, streamCmd))
	ffprobe := writeScript(t, dir, "ffprobe", "#!/bin/sh\necho 125.500000\n")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	y, err := NewYtDlp(YtDlpInfo{
		YtDlpPath:   ytdlp,
		FfprobePath: ffprobe,
		CacheDir:    filepath.Join(dir, "cache"),
	}, logger)
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}

	return y, calls
}

func countCalls(t *testing.T, path string) int {
	t.Helper()

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	return strings.Count(string(b), "run")
}

func TestExtract(t *testing.T) {
	y, calls := newTestYtDlp(t, "printf audio")
	ctx := context.Background()

	art, err := y.Extract(ctx, "vid1")
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	if art.Path != y.ArtifactPath("vid1") {
		t.Errorf("exp artifact in cache dir, got %q", art.Path)
	}
	if art.Size != int64(len("mp3data")) {
		t.Errorf("exp size %d, got %d", len("mp3data"), art.Size)
	}
	if art.Duration != 125*time.Second+500*time.Millisecond {
		t.Errorf("unexpected duration %v", art.Duration)
	}

	if _, err := y.Extract(ctx, "vid1"); err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	if n := countCalls(t, calls); n != 1 {
		t.Errorf("exp existing artifact to be reused, got %d runs", n)
	}

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(art.Path), ".tmp-*"))
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("exp temp dirs to be removed, got %v", leftovers)
	}
}

func TestExtractInvalidID(t *testing.T) {
	y, calls := newTestYtDlp(t, "printf audio")

	if _, err := y.Extract(context.Background(), "--exec=rm"); !errors.Is(err, ErrExtraction) {
		t.Errorf("exp ErrExtraction, got %v", err)
	}
	if n := countCalls(t, calls); n != 0 {
		t.Errorf("exp no tool runs, got %d", n)
	}
}

func TestExtractLeadingDashID(t *testing.T) {
	y, _ := newTestYtDlp(t, "printf audio")

	art, err := y.Extract(context.Background(), "-wtIMTCHWuI")
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	if filepath.Base(art.Path) != "-wtIMTCHWuI.mp3" {
		t.Errorf("exp artifact named after the id, got %q", art.Path)
	}
}

func TestExtractToolFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a posix shell")
	}
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	y, err := NewYtDlp(YtDlpInfo{
		YtDlpPath:   writeScript(t, dir, "yt-dlp", "#!/bin/sh\necho 'video unavailable' >&2\nexit 1\n"),
		FfprobePath: writeScript(t, dir, "ffprobe", "#!/bin/sh\necho 1\n"),
		CacheDir:    filepath.Join(dir, "cache"),
	}, logger)
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}

	if _, err := y.Extract(context.Background(), "vid1"); !errors.Is(err, ErrExtraction) {
		t.Errorf("exp ErrExtraction, got %v", err)
	}
	if _, err := os.Stat(y.ArtifactPath("vid1")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("exp no artifact, got %v", err)
	}
}

func TestTitle(t *testing.T) {
	y, _ := newTestYtDlp(t, "printf audio")

	title, err := y.Title(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	if title != "Fake Title" {
		t.Errorf("exp Fake Title, got %q", title)
	}
}

func TestOpenStream(t *testing.T) {
	y, _ := newTestYtDlp(t, "printf 'streamed audio bytes'")

	s, err := y.OpenStream(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	defer s.Close()

	got, err := io.ReadAll(s)
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	if string(got) != "streamed audio bytes" {
		t.Errorf("unexpected stream %q", got)
	}
}

func TestOpenStreamCloseStopsProcess(t *testing.T) {
	y, _ := newTestYtDlp(t, "while true; do printf x; sleep 0.05; done")

	s, err := y.OpenStream(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	buf := make([]byte, 1)
	if _, err := io.ReadFull(s, buf); err != nil {
		t.Fatalf("exp nil, got %v", err)
	}

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("close did not stop the process")
	}
	if err := s.Close(); err != nil {
		t.Errorf("exp second close to be a no-op, got %v", err)
	}
}

func TestCopy(t *testing.T) {
	src := bytes.Repeat([]byte("a"), 3*ChunkSize+10)
	rec := httptest.NewRecorder()

	n, err := Copy(rec, bytes.NewReader(src))
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	if n != int64(len(src)) {
		t.Errorf("exp %d bytes, got %d", len(src), n)
	}
	if !rec.Flushed {
		t.Error("exp flushed response")
	}
	if !bytes.Equal(rec.Body.Bytes(), src) {
		t.Error("body differs from source")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("tool died") }

func TestCopyReadError(t *testing.T) {
	var dst bytes.Buffer
	n, err := Copy(&dst, failingReader{})
	if err == nil {
		t.Error("exp error, got nil")
	}
	if n != 0 {
		t.Errorf("exp 0 bytes, got %d", n)
	}
}
