package overseerr

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overfiltrr/overfiltrr/internal/config"
	"github.com/overfiltrr/overfiltrr/internal/media"
)

const movieJSON = `{
  "id": 603,
  "title": "The Matrix",
  "originalLanguage": "en",
  "releaseDate": "1999-03-30",
  "status": "Released",
  "overview": "A hacker learns the truth.",
  "posterPath": "/matrix.jpg",
  "imdbId": "tt0133093",
  "genres": [{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}],
  "keywords": [{"id": 1, "name": "artificial intelligence"}, {"id": 2, "name": "simulated reality"}],
  "productionCompanies": [{"id": 79, "name": "Village Roadshow Pictures"}],
  "watchProviders": [
    {"iso_3166_1": "GB", "flatrate": [{"id": 8, "name": "Netflix"}]},
    {"iso_3166_1": "US", "flatrate": [{"id": 1899, "name": "Max"}, {"id": 9, "provider_name": "Prime Video"}]}
  ],
  "releases": {"results": [
    {"iso_3166_1": "US", "release_dates": [{"certification": "R"}, {"certification": ""}, {"certification": "R"}, {"certification": "PG-13"}]},
    {"iso_3166_1": "DE", "release_dates": [{"certification": "16"}]}
  ]}
}`

const tvJSON = `{
  "id": 1429,
  "name": "Attack on Titan",
  "originalLanguage": "ja",
  "firstAirDate": "2013-04-07",
  "status": "Ended",
  "genres": [{"id": 16, "name": "Animation"}],
  "keywords": {"results": [{"id": 210024, "name": "anime"}]},
  "networks": [{"id": 1, "name": "MBS"}],
  "watchProviders": {"results": {"US": {"flatrate": [{"provider_name": "Crunchyroll"}]}}},
  "contentRatings": {"results": [{"iso_3166_1": "US", "rating": "TV-MA"}, {"iso_3166_1": "JP", "rating": "R15+"}]},
  "externalIds": {"imdbId": "tt2560140"}
}`

type recordedRequest struct {
	Method string
	Path   string
	APIKey string
	Body   []byte
}

type fakeOverseerr struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
}

func (f *fakeOverseerr) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, APIKey: r.Header.Get("X-Api-Key"), Body: body})
		status := f.status
		f.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"nope"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/movie/603":
			_, _ = w.Write([]byte(movieJSON))
		case "/api/v1/tv/1429":
			_, _ = w.Write([]byte(tvJSON))
		case "/api/v1/request/42", "/api/v1/request/42/approve":
			_, _ = w.Write([]byte(`{"id": 42, "status": 2}`))
		case "/api/v1/status":
			_, _ = w.Write([]byte(`{"version": "1.33.2"}`))
		default:
			t.Logf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestClient(t *testing.T) (*Client, *fakeOverseerr) {
	t.Helper()
	fake := &fakeOverseerr{}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	client := NewClient(config.OverseerrConfig{BaseURL: server.URL + "/", APIKey: "key", Timeout: 5}, zerolog.Nop())
	return client, fake
}

func TestClient_FetchMovieDetails(t *testing.T) {
	client, fake := newTestClient(t)

	d, err := client.FetchDetails(context.Background(), media.TypeMovie, 603)
	require.NoError(t, err)

	assert.Equal(t, "The Matrix", d.Title)
	assert.Equal(t, 603, d.TMDbID)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/matrix.jpg", d.PosterURL())
	assert.Equal(t, []string{"R", "R", "PG-13"}, d.Ratings)

	a := d.Attributes
	assert.Equal(t, media.TypeMovie, a.MediaType)
	assert.Equal(t, []string{"Action", "Science Fiction"}, a.Genres)
	assert.Equal(t, []string{"artificial intelligence", "simulated reality"}, a.Keywords)
	assert.Equal(t, 1999, a.ReleaseYear)
	assert.Equal(t, "en", a.OriginalLanguage)
	assert.Equal(t, []string{"Max", "Prime Video"}, a.Providers)
	assert.Equal(t, []string{"Village Roadshow Pictures"}, a.ProductionCompanies)
	assert.Nil(t, a.Networks)
	assert.Equal(t, "R", a.Rating)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, "/api/v1/movie/603", fake.requests[0].Path)
	assert.Equal(t, "key", fake.requests[0].APIKey)
}

func TestClient_FetchTVDetails(t *testing.T) {
	client, _ := newTestClient(t)

	d, err := client.FetchDetails(context.Background(), media.TypeTV, 1429)
	require.NoError(t, err)

	a := d.Attributes
	assert.Equal(t, "Attack on Titan", d.Title)
	assert.Equal(t, "tt2560140", d.IMDbID)
	assert.Equal(t, []string{"anime"}, a.Keywords)
	assert.Equal(t, 2013, a.ReleaseYear)
	assert.Equal(t, []string{"Crunchyroll"}, a.Providers)
	assert.Equal(t, []string{"MBS"}, a.Networks)
	assert.Equal(t, "TV-MA", a.Rating)
	assert.Equal(t, "Ended", a.Status)
}

func TestClient_UpdateAndApprove(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	update := RequestUpdate{MediaType: "tv", RootFolder: "/tv/anime", ServerID: 1, ProfileID: 12, Seasons: []int{1, 2}}
	require.NoError(t, client.UpdateRequest(ctx, 42, update))
	require.NoError(t, client.ApproveRequest(ctx, 42))

	req, err := client.GetRequest(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Approved", req.StatusText())

	require.Len(t, fake.requests, 3)
	assert.Equal(t, http.MethodPut, fake.requests[0].Method)
	assert.Equal(t, "/api/v1/request/42", fake.requests[0].Path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(fake.requests[0].Body, &sent))
	assert.Equal(t, "tv", sent["mediaType"])
	assert.Equal(t, "/tv/anime", sent["rootFolder"])
	assert.Equal(t, float64(1), sent["serverId"])
	assert.Equal(t, float64(12), sent["profileId"])
	assert.Equal(t, []any{float64(1), float64(2)}, sent["seasons"])

	assert.Equal(t, http.MethodPost, fake.requests[1].Method)
	assert.Equal(t, "/api/v1/request/42/approve", fake.requests[1].Path)
}

func TestClient_Status(t *testing.T) {
	client, _ := newTestClient(t)
	st, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.33.2", st.Version)
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		status int
		target error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusInternalServerError, ErrAPIError},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client, fake := newTestClient(t)
			fake.status = tt.status

			_, err := client.GetMovie(context.Background(), 603)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "nope", apiErr.Message)
		})
	}
}

func TestClient_RequiresAPIKey(t *testing.T) {
	client := NewClient(config.OverseerrConfig{BaseURL: "http://unused"}, zerolog.Nop())
	_, err := client.GetMovie(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}

func TestClient_UnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(config.OverseerrConfig{BaseURL: url, APIKey: "k", Timeout: 1}, zerolog.Nop())
	_, err := client.FetchDetails(context.Background(), media.TypeMovie, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP request failed")
}

func TestClient_UnsupportedMediaType(t *testing.T) {
	client, _ := newTestClient(t)
	_, err := client.FetchDetails(context.Background(), media.Type("music"), 1)
	assert.Error(t, err)
}
