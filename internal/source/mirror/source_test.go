package mirror

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(url string) *Source {
	return New(Config{
		URL:       url,
		Timeout:   time.Second,
		UserAgent: "ContentScraper/test",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSource_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml; charset=UTF-8")
		w.Write([]byte(testMirrorFeed))
	}))
	defer srv.Close()

	contents, err := newTestSource(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, contents, 2)

	assert.Equal(t, "ContentScraper/test", gotUA)

	first := contents[0]
	assert.Equal(t, "http://mirror/article1", first.ArticleURL)
	assert.Equal(t, "Title 1", first.Title)
	assert.Equal(t, "Author 1", first.Author)
	assert.Equal(t, "Long text</a> 1", first.HTMLContent)
	assert.Equal(t, "http://mirror/img1.jpg", first.MainImageURL)
	assert.Equal(t, outerItem(testMirrorFeed, 0), first.OriginalContent)

	second := contents[1]
	assert.Equal(t, "", second.ArticleURL)
	assert.Equal(t, "Title & 2", second.Title)
	assert.Equal(t, "escaped</a>\u00a0text", second.HTMLContent)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSource_Fetch_LogsMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<rss><channel>` +
			`<item><title>Only title</title></item>` +
			`<item><link>http://mirror/a</link></item>` +
			`</channel></rss>`))
	}))
	defer srv.Close()

	var logs bytes.Buffer
	source := New(Config{URL: srv.URL, Timeout: time.Second},
		slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	contents, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, contents, 2)

	out := logs.String()
	assert.Contains(t, out, `msg="content field missing" source=mirror field=article_url title="Only title"`)
	assert.Contains(t, out, `msg="content field missing" source=mirror field=title article_url=http://mirror/a`)
	assert.Contains(t, out, `field=main_image_url article_url=http://mirror/a`)
}

func TestSource_Fetch_BodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testMirrorFeed))
	}))
	defer srv.Close()

	limited := New(Config{URL: srv.URL, Timeout: time.Second, MaxBodySize: 64},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	contents, err := limited.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Nil(t, contents)

	exact := New(Config{URL: srv.URL, Timeout: time.Second, MaxBodySize: int64(len(testMirrorFeed))},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	contents, err = exact.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, contents, 2)
}

func TestSource_Fetch_NoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<rss><channel><title>Empty</title></channel></rss>`))
	}))
	defer srv.Close()

	contents, err := newTestSource(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, contents)
}

func TestSource_Fetch_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	contents, err := newTestSource(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Nil(t, contents)
	assert.Contains(t, err.Error(), "unexpected status: 502")
}

func TestSource_Fetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	contents, err := newTestSource(url).Fetch(context.Background())
	require.Error(t, err)
	assert.Nil(t, contents)
	assert.Contains(t, err.Error(), "execute request")
}

func TestSource_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	src := newTestSource(srv.URL)
	src.httpClient.Timeout = 50 * time.Millisecond

	_, err := src.Fetch(context.Background())
	require.Error(t, err)
}

func TestSource_Fetch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<rss><channel><item><title>broken`))
	}))
	defer srv.Close()

	contents, err := newTestSource(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Nil(t, contents)
	assert.Contains(t, err.Error(), "parse feed")
}

func TestSource_Identity(t *testing.T) {
	src := newTestSource("http://localhost")
	assert.Equal(t, SourceID, src.ID())
	assert.Equal(t, SourceName, src.Name())
}
