package embedder_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight/docsight/infrastructure/embedder"
)

func TestColpali_EmbedImages(t *testing.T) {
	var gotBody struct {
		Images []string `json:"images"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/process_images", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][][]float32{
				{{0.1, 0.2}, {0.3, 0.4}},
				{{0.5, 0.6}},
			},
		})
	}))
	defer srv.Close()

	client := embedder.NewColpali(srv.URL, time.Second, nil)

	got, err := client.EmbedImages(context.Background(), [][]byte{[]byte("one"), []byte("two")})
	require.NoError(t, err)

	require.Len(t, gotBody.Images, 2)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("one")), gotBody.Images[0])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("two")), gotBody.Images[1])

	require.Len(t, got, 2)
	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, got[0])
	assert.Equal(t, [][]float32{{0.5, 0.6}}, got[1])
}

func TestColpali_EmbedImages_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][][]float32{{{0.1}}},
		})
	}))
	defer srv.Close()

	client := embedder.NewColpali(srv.URL, time.Second, nil)

	_, err := client.EmbedImages(context.Background(), [][]byte{[]byte("a"), []byte("b")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 1 embeddings for 2 images")
}

func TestColpali_EmbedQueries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/process_queries", r.URL.Path)

		var body struct {
			Queries []string `json:"queries"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, []string{"what is this"}, body.Queries)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][][]float32{{{1, 2, 3}}},
		})
	}))
	defer srv.Close()

	client := embedder.NewColpali(srv.URL, time.Second, nil)

	got, err := client.EmbedQueries(context.Background(), []string{"what is this"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, [][]float32{{1, 2, 3}}, got[0])
}

func TestColpali_Interpret(t *testing.T) {
	annotated := []byte("annotated-jpeg")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/interpret", r.URL.Path)

		var body struct {
			Query string `json:"query"`
			Image string `json:"image"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "where is the chart", body.Query)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("page-jpeg")), body.Image)

		_ = json.NewEncoder(w).Encode(map[string]string{
			"image": base64.StdEncoding.EncodeToString(annotated),
		})
	}))
	defer srv.Close()

	client := embedder.NewColpali(srv.URL, time.Second, nil)

	got, err := client.Interpret(context.Background(), "where is the chart", []byte("page-jpeg"))
	require.NoError(t, err)
	assert.Equal(t, annotated, got)
}

func TestColpali_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := embedder.NewColpali(srv.URL, time.Second, nil)

	_, err := client.EmbedQueries(context.Background(), []string{"q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model not loaded")
}
