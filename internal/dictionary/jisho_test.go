package dictionary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJisho(url string) *Jisho {
	j := NewJisho(WithJishoURL(url), WithJishoDelay(0))
	j.retryWait = time.Millisecond
	return j
}

func TestJisho_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "猫", r.URL.Query().Get("keyword"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"meta":{"status":200},"data":[
			{"slug":"猫","senses":[
				{"english_definitions":["cat"]},
				{"english_definitions":["shamisen"," "]},
				{"english_definitions":[]}
			]},
			{"slug":"猫舌","senses":[{"english_definitions":["cat tongue"]}]}
		]}`))
	}))
	defer srv.Close()

	senses, err := newTestJisho(srv.URL).Lookup(context.Background(), "猫")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "shamisen"}, senses)
}

func TestJisho_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	senses, err := newTestJisho(srv.URL).Lookup(context.Background(), "ぬぬ")
	require.NoError(t, err)
	assert.Nil(t, senses)
}

func TestJisho_RetriesServerErrorOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"senses":[{"english_definitions":["dog"]}]}]}`))
	}))
	defer srv.Close()

	senses, err := newTestJisho(srv.URL).Lookup(context.Background(), "犬")
	require.NoError(t, err)
	assert.Equal(t, []string{"dog"}, senses)
	assert.Equal(t, int32(2), calls.Load())
}

func TestJisho_ErrorStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestJisho(srv.URL).Lookup(context.Background(), "犬")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, int32(1), calls.Load())
}

func TestJisho_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := newTestJisho(srv.URL).Lookup(context.Background(), "犬")
	require.Error(t, err)
}

func TestJisho_SpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	j := NewJisho(WithJishoURL(srv.URL), WithJishoDelay(50*time.Millisecond))
	start := time.Now()
	for range 3 {
		_, err := j.Lookup(context.Background(), "犬")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestJisho_WaitHonoursContext(t *testing.T) {
	j := NewJisho(WithJishoURL("http://127.0.0.1:1"), WithJishoDelay(time.Hour))
	j.last = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := j.Lookup(ctx, "犬")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
