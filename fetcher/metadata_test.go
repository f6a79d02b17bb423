package fetcher

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"ewintr.nl/tubecast/model"
	"ewintr.nl/tubecast/storage"
)

func TestParseISODuration(t *testing.T) {
	for _, tc := range []struct {
		in    string
		exp   string
		expOK bool
	}{
		{in: "PT1H2M3S", exp: "01:02:03", expOK: true},
		{in: "PT5M9S", exp: "05:09", expOK: true},
		{in: "PT45S", exp: "00:45", expOK: true},
		{in: "PT2H", exp: "02:00:00", expOK: true},
		{in: "PT10M", exp: "10:00", expOK: true},
		{in: "P0D", exp: "00:00", expOK: false},
		{in: "", exp: "00:00", expOK: false},
	} {
		t.Run(tc.in, func(t *testing.T) {
			d, ok := ParseISODuration(tc.in)
			if ok != tc.expOK {
				t.Errorf("exp ok %v, got %v", tc.expOK, ok)
			}
			if got := model.FormatDuration(d); got != tc.exp {
				t.Errorf("exp %q, got %q", tc.exp, got)
			}
		})
	}
}

const uploadsResponse = `{"items":[
  {"snippet":{"title":"Newest","description":"d1","publishedAt":"2024-03-01T12:00:00Z",
    "thumbnails":{"high":{"url":"https://img/1.jpg"}}},"contentDetails":{"videoId":"vid1"}},
  {"snippet":{"title":"Older","description":"d2","publishedAt":"2024-02-01T08:30:00Z"},"contentDetails":{"videoId":"vid2"}}
]}`

func TestMetadataFetcherVideos(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	fake := newFakeYoutube()
	fake.responses[pathPlaylistItems] = uploadsResponse
	fake.responses[pathVideos] = `{"items":[{"id":"vid2","contentDetails":{"duration":"PT1H2M3S"}}]}`

	mem := storage.NewMemory()
	cache := mem.Videos()
	if err := cache.Save(ctx, &model.CachedVideo{ID: "vid1", Title: "Newest", Duration: "03:20", FileSize: 4000000, LastAccessed: now.Add(-48 * time.Hour)}); err != nil {
		t.Fatalf("exp nil, got %v", err)
	}

	m := NewMetadataFetcher(newTestYoutube(t, fake), cache, testLogger())
	m.now = func() time.Time { return now }

	videos, err := m.Videos(ctx, &model.Channel{ID: testChannelID, UploadsPlaylistID: "UUx"}, 50)
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("exp 2 videos, got %d", len(videos))
	}

	cached := videos[0]
	if cached.ID != "vid1" || cached.Duration != "03:20" || cached.FileSize != 4000000 {
		t.Errorf("exp cached values for vid1, got %+v", cached)
	}
	if cached.PublishedAt != "Fri, 01 Mar 2024 12:00:00 GMT" {
		t.Errorf("unexpected pub date %q", cached.PublishedAt)
	}
	if cached.URL != "https://www.youtube.com/watch?v=vid1" || cached.Thumbnail != "https://img/1.jpg" {
		t.Errorf("unexpected urls %+v", cached)
	}

	estimated := videos[1]
	if estimated.Duration != "01:02:03" || estimated.FileSize != 3723*32000 {
		t.Errorf("exp estimate for vid2, got %+v", estimated)
	}

	if n := fake.calls(pathVideos); n != 1 {
		t.Errorf("exp 1 detail call, got %d", n)
	}
	touched, err := cache.FindByID(ctx, "vid1")
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	if !touched.LastAccessed.Equal(now) {
		t.Errorf("exp last accessed to be bumped, got %v", touched.LastAccessed)
	}
	if _, err := cache.FindByID(ctx, "vid2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("exp estimate path to leave cache alone, got %v", err)
	}
}

func TestMetadataFetcherDetailFailure(t *testing.T) {
	fake := newFakeYoutube()
	fake.responses[pathPlaylistItems] = uploadsResponse
	fake.status[pathVideos] = http.StatusInternalServerError

	m := NewMetadataFetcher(newTestYoutube(t, fake), storage.NewMemory().Videos(), testLogger())
	videos, err := m.Videos(context.Background(), &model.Channel{ID: testChannelID, UploadsPlaylistID: "UUx"}, 50)
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	for _, v := range videos {
		if v.Duration != "00:00" || v.FileSize != 0 {
			t.Errorf("exp zero duration and size, got %+v", v)
		}
	}
}

func TestMetadataFetcherErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		body   string
		status int
		exp    error
	}{
		{name: "no videos", body: `{"items":[]}`, exp: ErrNoVideos},
		{name: "upstream down", status: http.StatusInternalServerError, exp: ErrUpstream},
		{name: "bad date", body: `{"items":[{"snippet":{"title":"x","publishedAt":"yesterday"},"contentDetails":{"videoId":"vid1"}}]}`, exp: ErrUpstream},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFakeYoutube()
			if tc.body != "" {
				fake.responses[pathPlaylistItems] = tc.body
			}
			if tc.status != 0 {
				fake.status[pathPlaylistItems] = tc.status
			}
			m := NewMetadataFetcher(newTestYoutube(t, fake), storage.NewMemory().Videos(), testLogger())

			videos, err := m.Videos(context.Background(), &model.Channel{ID: testChannelID, UploadsPlaylistID: "UUx"}, 50)
			if !errors.Is(err, tc.exp) {
				t.Errorf("exp %v, got %v", tc.exp, err)
			}
			if videos != nil {
				t.Errorf("exp no videos, got %+v", videos)
			}
		})
	}
}

func TestMetadataFetcherChannel(t *testing.T) {
	fake := newFakeYoutube()
	m := NewMetadataFetcher(newTestYoutube(t, fake), storage.NewMemory().Videos(), testLogger())

	if _, err := m.Channel(context.Background(), testChannelID); !errors.Is(err, ErrNoChannel) {
		t.Errorf("exp ErrNoChannel, got %v", err)
	}

	fake.responses[pathChannels] = channelResponse
	ch, err := m.Channel(context.Background(), testChannelID)
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	if ch.ID != testChannelID {
		t.Errorf("exp %q, got %q", testChannelID, ch.ID)
	}
}
