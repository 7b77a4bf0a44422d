package preview

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cboard-backend/internal/model"
)

func newPages(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/og", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta property="og:image" content="https://cdn.example.com/a.jpg"></head></html>`)
	})
	mux.HandleFunc("/relative", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta name="twitter:image" content="/img/b.png"></head></html>`)
	})
	mux.HandleFunc("/bare", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>nothing</title></head></html>`)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestImageURL(t *testing.T) {
	srv := newPages(t)
	r := NewResolver(srv.Client(), nil)
	ctx := context.Background()

	img, err := r.ImageURL(ctx, srv.URL+"/og")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", img)

	img, err = r.ImageURL(ctx, srv.URL+"/relative")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/img/b.png", img)

	_, err = r.ImageURL(ctx, srv.URL+"/bare")
	assert.ErrorContains(t, err, "no preview image")

	_, err = r.ImageURL(ctx, srv.URL+"/gone")
	assert.ErrorContains(t, err, "404")
}

func TestResolve(t *testing.T) {
	srv := newPages(t)
	r := NewResolver(srv.Client(), nil)

	flyers := []model.Flyer{
		{ID: "1", PostURL: srv.URL + "/og"},
		{ID: "2", PostURL: srv.URL + "/og", ImageURL: "https://keep.example.com/x.png"},
		{ID: "3"},
		{ID: "4", PostURL: srv.URL + "/gone"},
	}

	got := r.Resolve(context.Background(), flyers)
	require.Len(t, got, 4)

	assert.Equal(t, "https://cdn.example.com/a.jpg", got[0].ImageURL)
	assert.Equal(t, "https://keep.example.com/x.png", got[1].ImageURL)
	assert.Empty(t, got[2].ImageURL)
	assert.Empty(t, got[3].ImageURL)

	assert.Empty(t, flyers[0].ImageURL, "input must not be modified")
}
