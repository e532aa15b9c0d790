package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Hauptplatz 1, Graz", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"display_name":"Hauptplatz, Graz, Austria","lat":"47.0708","lon":"15.4382"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second)
	area, err := client.Lookup(context.Background(), "Hauptplatz 1, Graz")

	assert.NoError(t, err)
	assert.NotNil(t, area)
	assert.Equal(t, "Hauptplatz, Graz, Austria", area.Name)
	assert.InDelta(t, 47.0708, area.Latitude, 0.0001)
	assert.InDelta(t, 15.4382, area.Longitude, 0.0001)
}

func TestClient_Lookup_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second)
	area, err := client.Lookup(context.Background(), "nowhere at all")

	assert.NoError(t, err)
	assert.Nil(t, area)
}

func TestClient_Lookup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second)
	_, err := client.Lookup(context.Background(), "somewhere")

	assert.Error(t, err)
}

func TestClient_Lookup_DisabledWithoutBaseURL(t *testing.T) {
	client := NewClient("", 2*time.Second)
	area, err := client.Lookup(context.Background(), "anywhere")

	assert.NoError(t, err)
	assert.Nil(t, area)
}
