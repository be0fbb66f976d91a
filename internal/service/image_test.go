package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipefy/backend/config"
)

type fakeStore struct {
	mu          sync.Mutex
	keys        []string
	contentType string
	data        []byte
	err         error
}

func (s *fakeStore) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.keys = append(s.keys, key)
	s.data = data
	s.contentType = contentType
	return "https://bucket.s3.amazonaws.com/" + key, nil
}

func newTestImageService(apiURL string, store ObjectStore) *ImageService {
	s := NewImageService(config.ImageConfig{
		Enabled: true,
		APIKey:  "image-key",
		APIURL:  apiURL,
		Model:   "dall-e-3",
		Size:    "1024x1024",
		Timeout: 5 * time.Second,
	}, store)
	s.retryDelay = time.Millisecond
	return s
}

func TestFallbackURL(t *testing.T) {
	s := NewImageService(config.ImageConfig{}, nil)

	assert.Equal(t,
		"https://source.unsplash.com/800x600/?Spaghetti%20%20Meatballs,food,delicious",
		s.FallbackURL("Spaghetti & Meatballs 2!", false))
	assert.Equal(t,
		"https://source.unsplash.com/800x600/?Tacos,food,recipe",
		s.FallbackURL("  Tacos #1 ", true))
	assert.Equal(t,
		"https://source.unsplash.com/800x600/?,food,delicious",
		s.FallbackURL("123", false))
}

func TestGenerateImageWithoutProvider(t *testing.T) {
	s := NewImageService(config.ImageConfig{Enabled: true, FallbackBaseURL: "https://photos.example.com/"}, nil)

	url, err := s.GenerateImage(context.Background(), "Tacos")
	require.NoError(t, err)
	assert.Equal(t, "https://photos.example.com/?Tacos,food,delicious", url)
}

func TestGenerateImageFromProvider(t *testing.T) {
	var body imageGenerationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer image-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"url":"https://images.example.com/tacos.png"}]}`))
	}))
	defer server.Close()

	url, err := newTestImageService(server.URL, nil).GenerateImage(context.Background(), "Tacos")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/tacos.png", url)
	assert.Equal(t, "dall-e-3", body.Model)
	assert.Equal(t, "Tacos", body.Prompt)
	assert.Equal(t, 1, body.N)
	assert.Equal(t, "url", body.ResponseFormat)
}

func TestGenerateImageWithoutJSONContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(`{"data":[{"url":"https://images.example.com/plain.png"}]}`))
	}))
	defer server.Close()

	url, err := newTestImageService(server.URL, nil).GenerateImage(context.Background(), "Tacos")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/plain.png", url)
}

func TestGenerateImageRetries(t *testing.T) {
	t.Run("recovers on a later attempt", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[{"url":"https://images.example.com/ok.png"}]}`))
		}))
		defer server.Close()

		url, err := newTestImageService(server.URL, nil).GenerateImage(context.Background(), "Soup")
		require.NoError(t, err)
		assert.Equal(t, "https://images.example.com/ok.png", url)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("falls back after the last attempt", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		url, err := newTestImageService(server.URL, nil).GenerateImage(context.Background(), "Beef Stew")
		require.NoError(t, err)
		assert.Equal(t, "https://source.unsplash.com/800x600/?Beef%20Stew,food,recipe", url)
		assert.Equal(t, int32(imageMaxRetries), atomic.LoadInt32(&calls))
	})

	t.Run("empty data falls back", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[]}`))
		}))
		defer server.Close()

		url, err := newTestImageService(server.URL, nil).GenerateImage(context.Background(), "Pie")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(url, "?Pie,food,recipe"), url)
	})
}

func TestGenerateImageMirrorsToStore(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"url":"` + server.URL + `/files/img.png"}]}`))
	})
	mux.HandleFunc("/files/img.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	})

	t.Run("returns the bucket URL", func(t *testing.T) {
		store := &fakeStore{}
		url, err := newTestImageService(server.URL+"/generate", store).GenerateImage(context.Background(), "Tacos")
		require.NoError(t, err)

		require.Len(t, store.keys, 1)
		assert.True(t, strings.HasPrefix(store.keys[0], "recipe-images/"))
		assert.Equal(t, "https://bucket.s3.amazonaws.com/"+store.keys[0], url)
		assert.Equal(t, []byte("png-bytes"), store.data)
		assert.Equal(t, "image/png", store.contentType)
	})

	t.Run("upload failure keeps the provider URL", func(t *testing.T) {
		store := &fakeStore{err: errors.New("access denied")}
		url, err := newTestImageService(server.URL+"/generate", store).GenerateImage(context.Background(), "Tacos")
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/files/img.png", url)
	})
}

func TestGenerateImageCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImageService(config.ImageConfig{}, nil).GenerateImage(ctx, "Tacos")
	assert.ErrorIs(t, err, context.Canceled)
}
