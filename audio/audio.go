package audio

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"ewintr.nl/tubecast/model"
)

var ErrExtraction = errors.New("audio extraction failed")

// ChunkSize is the unit in which streamed audio is forwarded.
const ChunkSize = 8 * 1024

// Artifact is an extracted audio file on local disk.
type Artifact struct {
	Path     string
	Size     int64
	Duration time.Duration
}

type Extractor interface {
	// Extract produces the mp3 for a video, or returns the one that is
	// already on disk.
	Extract(ctx context.Context, id model.YoutubeVideoID) (*Artifact, error)
	// OpenStream starts a live pass-through of the audio. Closing the stream
	// stops the underlying process.
	OpenStream(ctx context.Context, id model.YoutubeVideoID) (io.ReadCloser, error)
	Title(ctx context.Context, id model.YoutubeVideoID) (string, error)
}

// Copy forwards src to dst in ChunkSize pieces, flushing after every piece
// when dst supports it. It returns the number of bytes written.
func Copy(dst io.Writer, src io.Reader) (int64, error) {
	flusher, _ := dst.(http.Flusher)
	buf := make([]byte, ChunkSize)

	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
