package rest

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	domainRelease "github.com/releaserr/releaserr/domains/release"
	"github.com/releaserr/releaserr/ui/rest/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReleaseService struct {
	releases   []domainRelease.Release
	lastUpdate time.Time
	refreshErr error
	refreshed  int
	hidden     [][2]any
	hideErr    error
}

func (f *fakeReleaseService) Releases(ctx context.Context) []domainRelease.Release {
	return f.releases
}

func (f *fakeReleaseService) LastUpdate(ctx context.Context) time.Time {
	return f.lastUpdate
}

func (f *fakeReleaseService) Refresh(ctx context.Context) error {
	f.refreshed++
	return f.refreshErr
}

func (f *fakeReleaseService) Hide(ctx context.Context, mediaType string, tmdbID int) error {
	if f.hideErr != nil {
		return f.hideErr
	}
	f.hidden = append(f.hidden, [2]any{mediaType, tmdbID})
	return nil
}

func (f *fakeReleaseService) Remove(ctx context.Context, mediaType string, tmdbID int) {}

func (f *fakeReleaseService) StartBackgroundRefresh(ctx context.Context, interval time.Duration) {}

var testIndexTemplate = template.Must(template.New("index").Parse(
	`<html><meta name="csrf" content="{{.CSRFToken}}"><script>const releases = {{.ReleasesJSON}};</script>{{.LastUpdateAgo}}</html>`))

func newReleaseTestApp(service *fakeReleaseService) *fiber.App {
	app := fiber.New()
	app.Use(middleware.Recovery())
	InitRestRelease(app, app.Group("/api"), service, testIndexTemplate, "v1.2.0")
	return app
}

func TestRelease_Index(t *testing.T) {
	service := &fakeReleaseService{
		releases:   []domainRelease.Release{{ID: 1, Title: "Heat", MediaType: "movie"}},
		lastUpdate: time.Now().Add(-2 * time.Minute),
	}
	app := newReleaseTestApp(service)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"Heat"`)
	assert.Contains(t, string(body), "minutes ago")
	assert.Contains(t, string(body), `meta name="csrf" content="`)
}

func TestRelease_List(t *testing.T) {
	service := &fakeReleaseService{
		releases:   []domainRelease.Release{{ID: 1, Title: "Heat", MediaType: "movie"}},
		lastUpdate: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	app := newReleaseTestApp(service)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/releases", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Code    string `json:"code"`
		Results struct {
			Releases   []domainRelease.Release `json:"releases"`
			LastUpdate string                  `json:"last_update"`
		} `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "SUCCESS", payload.Code)
	require.Len(t, payload.Results.Releases, 1)
	assert.Equal(t, "Heat", payload.Results.Releases[0].Title)
	assert.Equal(t, "2026-08-01T12:00:00Z", payload.Results.LastUpdate)
}

func TestRelease_ListOmitsLastUpdateBeforeFirstRefresh(t *testing.T) {
	app := newReleaseTestApp(&fakeReleaseService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/releases", nil))
	require.NoError(t, err)

	var payload struct {
		Results map[string]any `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.NotContains(t, payload.Results, "last_update")
}

func TestRelease_Refresh(t *testing.T) {
	service := &fakeReleaseService{releases: []domainRelease.Release{{ID: 1}}}
	app := newReleaseTestApp(service)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, service.refreshed)
}

func TestRelease_RefreshFailureIsInternalError(t *testing.T) {
	service := &fakeReleaseService{refreshErr: assert.AnError}
	app := newReleaseTestApp(service)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
