package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/resume-tailor/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Staff Engineer</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Staff Engineer</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "text/html", result.ContentType)
}

func TestURL_InvalidURL(t *testing.T) {
	for _, u := range []string{"not-a-valid-url", "ftp://example.com/job", "https://"} {
		t.Run(u, func(t *testing.T) {
			_, err := URL(context.Background(), u, nil)
			var fetchErr *Error
			require.ErrorAs(t, err, &fetchErr)
			assert.Contains(t, err.Error(), "invalid URL")
		})
	}
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, &Options{Timeout: 20 * time.Millisecond})

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "HTTP request failed", fetchErr.Message)
}

func TestExtractMainText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		want     []string
		excluded []string
	}{
		{
			name: "job description container",
			html: `<html><body>
				<nav>Jobs Home</nav>
				<div class="sidebar">Similar roles</div>
				<div class="job-description">
					<h2>Requirements</h2>
					<ul><li>5 years of Go</li><li>Kubernetes</li></ul>
				</div>
				<footer>Footer links</footer>
			</body></html>`,
			want:     []string{"Requirements\n- 5 years of Go\n- Kubernetes"},
			excluded: []string{"Jobs Home", "Similar roles", "Footer links"},
		},
		{
			name:     "falls back to body",
			html:     `<html><body><div>Some   content   here.</div><script>var x = 1;</script></body></html>`,
			want:     []string{"Some content here."},
			excluded: []string{"var x"},
		},
		{
			name:     "noise selectors",
			html:     `<html><body><main><p>Build APIs</p><div class="eeo-statement">Equal opportunity</div></main></body></html>`,
			want:     []string{"Build APIs"},
			excluded: []string{"Equal opportunity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractMainText(tt.html, JobPostingSelectors(), ".eeo-statement")
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, text, w)
			}
			for _, e := range tt.excluded {
				assert.NotContains(t, text, e)
			}
		})
	}
}

func TestNeedsBrowser(t *testing.T) {
	assert.True(t, NeedsBrowser("Loading..."))
	assert.False(t, NeedsBrowser(strings.Repeat("x", MinContentLength)))
}

func TestCachedFetcher(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("<p>Backend Engineer</p>"))
	}))
	defer server.Close()

	f := NewCachedFetcher(cache.NewMemory(), nil, 0)
	ctx := context.Background()

	first, fromCache, err := f.Fetch(ctx, server.URL+"/job")
	require.NoError(t, err)
	assert.False(t, fromCache)

	second, fromCache, err := f.Fetch(ctx, server.URL+"/job")
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, first.HTML, second.HTML)
	assert.Equal(t, int32(1), hits.Load())

	// failures are not cached
	_, _, err = f.Fetch(ctx, server.URL+"/missing")
	require.Error(t, err)
	_, _, err = f.Fetch(ctx, server.URL+"/missing")
	require.Error(t, err)
	assert.Equal(t, int32(3), hits.Load())
}
