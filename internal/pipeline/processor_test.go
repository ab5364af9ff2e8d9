package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/overfiltrr/overfiltrr/internal/config"
	"github.com/overfiltrr/overfiltrr/internal/media"
	"github.com/overfiltrr/overfiltrr/internal/notification"
	"github.com/overfiltrr/overfiltrr/internal/overseerr"
	"github.com/overfiltrr/overfiltrr/internal/pipeline/mocks"
	"github.com/overfiltrr/overfiltrr/internal/quality"
	"github.com/overfiltrr/overfiltrr/internal/testutil"
)

type fixture struct {
	metadata *mocks.MockMetadataClient
	requests *mocks.MockRequestClient
	notifier *mocks.MockNotifier
	proc     *Processor
}

func newFixture(t *testing.T, mutate func(cfg *config.Config)) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	cfg := config.Default()
	cfg.TVCategories = testutil.TVCategories()
	cfg.MovieCategories = testutil.MovieCategories()
	if mutate != nil {
		mutate(cfg)
	}

	f := &fixture{
		metadata: mocks.NewMockMetadataClient(ctrl),
		requests: mocks.NewMockRequestClient(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
	}
	proc, err := NewProcessor(cfg, f.metadata, f.requests, testutil.NewTestLogger(t))
	require.NoError(t, err)
	proc.SetNotifier(f.notifier)
	f.proc = proc
	return f
}

func pendingEvent(mt string, requestID, tmdbID int, seasons string) Event {
	body := fmt.Sprintf(`{
		"notification_type": "MEDIA_PENDING",
		"subject": "Some Title",
		"media": {"media_type": %q, "tmdbId": "%d"},
		"request": {"request_id": "%d", "requestedBy_username": "alice"},
		"extra": [{"name": "Requested Seasons", "value": %q}]
	}`, mt, tmdbID, requestID, seasons)
	return Event{Body: []byte(body)}
}

func animeDetails() *media.Details {
	return &media.Details{
		Attributes: media.Attributes{
			MediaType:        media.TypeTV,
			Genres:           []string{"Animation", "Action"},
			Keywords:         []string{"anime", "based on manga"},
			OriginalLanguage: "ja",
			ReleaseYear:      2013,
		},
		TMDbID:     1429,
		Title:      "Attack on Titan",
		Overview:   "Humanity fights titans.",
		IMDbID:     "tt2560140",
		PosterPath: "/aot.jpg",
	}
}

func kidMovieDetails() *media.Details {
	return &media.Details{
		Attributes: media.Attributes{
			MediaType: media.TypeMovie,
			Genres:    []string{"Animation", "Family"},
			Rating:    "TV-MA",
		},
		TMDbID: 99,
		Title:  "Not For Kids",
	}
}

func TestProcess_AnimeScenario(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var event notification.DecisionEvent
	gomock.InOrder(
		f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(animeDetails(), nil),
		f.requests.EXPECT().UpdateRequest(gomock.Any(), 42, overseerr.RequestUpdate{
			MediaType:  "tv",
			RootFolder: "/tv/anime",
			ServerID:   1,
			ProfileID:  12,
			Seasons:    []int{1, 2},
		}).Return(nil),
		f.requests.EXPECT().ApproveRequest(gomock.Any(), 42).Return(nil),
		f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e notification.DecisionEvent) {
			event = e
		}),
	)

	res, err := f.proc.Process(ctx, pendingEvent("tv", 42, 1429, "1,2"))
	require.NoError(t, err)

	assert.Equal(t, StateApproved, res.State)
	require.NotNil(t, res.Decision)
	assert.Equal(t, "Anime", res.Decision.Category)
	assert.Equal(t, 12, res.Decision.ProfileID)
	assert.Equal(t, quality.SourceRule, res.Decision.ProfileSource)
	assert.True(t, res.Decision.Approve)
	assert.Equal(t, "alice", res.Username)

	assert.Equal(t, 42, event.RequestID)
	assert.Equal(t, "Anime", event.Category)
	assert.Equal(t, notification.StatusApproved, event.Status)
	assert.True(t, event.Approved)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/aot.jpg", event.PosterURL)
	assert.Equal(t, "tt2560140", event.IMDbID)
	assert.Equal(t, res.ID, event.EventID)
}

func TestProcess_KidMoviesExcludedByRating(t *testing.T) {
	f := newFixture(t, nil)

	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeMovie, 99).Return(kidMovieDetails(), nil)
	f.requests.EXPECT().UpdateRequest(gomock.Any(), 7, overseerr.RequestUpdate{
		MediaType:  "movie",
		RootFolder: "/movies",
		ServerID:   0,
		ProfileID:  2,
	}).Return(nil)
	f.requests.EXPECT().ApproveRequest(gomock.Any(), 7).Return(nil)
	f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any())

	res, err := f.proc.Process(context.Background(), pendingEvent("movie", 7, 99, ""))
	require.NoError(t, err)

	assert.Equal(t, StateApproved, res.State)
	assert.Equal(t, "EverythingElse", res.Decision.Category)
	assert.True(t, res.Decision.Fallback)
	assert.Equal(t, quality.SourceDefault, res.Decision.ProfileSource)
	assert.Nil(t, res.Decision.Update(media.TypeMovie).Seasons)
}

func TestProcess_DryRunWithApprovalGate(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.DryRun = true
		cfg.AutoApprove = true
	})

	var event notification.DecisionEvent
	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(animeDetails(), nil)
	f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e notification.DecisionEvent) {
		event = e
	})
	// No UpdateRequest or ApproveRequest expectations: any call fails the test.

	res, err := f.proc.Process(context.Background(), pendingEvent("tv", 42, 1429, "1"))
	require.NoError(t, err)

	assert.Equal(t, StateDryRunLogged, res.State)
	assert.True(t, res.DryRun)
	assert.False(t, res.Decision.Approve)
	assert.Equal(t, notification.StatusDryRun, event.Status)
	assert.True(t, event.DryRun)
	assert.False(t, event.Approved)
}

func TestProcess_ApprovalGateDisabled(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.DryRun = false
		cfg.AutoApprove = false
	})

	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(animeDetails(), nil)
	f.requests.EXPECT().UpdateRequest(gomock.Any(), 42, gomock.Any()).Return(nil).Times(1)
	f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any())

	res, err := f.proc.Process(context.Background(), pendingEvent("tv", 42, 1429, "1"))
	require.NoError(t, err)
	assert.Equal(t, StatePendingApproval, res.State)
}

func TestProcess_DryRunWithoutGate(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.DryRun = true
		cfg.AutoApprove = false
	})

	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(animeDetails(), nil)
	f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any())

	res, err := f.proc.Process(context.Background(), pendingEvent("tv", 42, 1429, "1"))
	require.NoError(t, err)
	assert.Equal(t, StatePendingApproval, res.State)
}

func TestProcess_TokenMatrix(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		presented  string
		wantErr    bool
	}{
		{"no token configured, none presented", "", "", false},
		{"no token configured, one presented", "", "anything", false},
		{"correct token", "s3cret", "s3cret", false},
		{"wrong token", "s3cret", "guess", true},
		{"missing token", "s3cret", "", true},
		{"prefix of token", "s3cret", "s3c", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(cfg *config.Config) {
				cfg.Webhook.Token = tt.configured
			})

			ev := Event{Token: tt.presented, Body: []byte(`{"notification_type":"TEST_NOTIFICATION"}`)}
			res, err := f.proc.Process(context.Background(), ev)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnauthorized)
				assert.Equal(t, StateError, res.State)
				assert.True(t, IsClientError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StateIgnored, res.State)
		})
	}
}

func TestProcess_UnauthorizedMakesNoCalls(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Webhook.Token = "s3cret"
	})

	ev := pendingEvent("tv", 42, 1429, "1")
	ev.Token = "wrong"
	_, err := f.proc.Process(context.Background(), ev)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, f.proc.Decisions(10))
}

func TestProcess_IgnoredNotificationTypes(t *testing.T) {
	f := newFixture(t, nil)

	for _, kind := range []string{"TEST_NOTIFICATION", "MEDIA_APPROVED", "MEDIA_AVAILABLE", ""} {
		res, err := f.proc.Process(context.Background(), Event{Body: []byte(fmt.Sprintf(`{"notification_type":%q}`, kind))})
		require.NoError(t, err, kind)
		assert.Equal(t, StateIgnored, res.State, kind)
	}
	assert.Equal(t, 4, f.proc.Stats()[StateIgnored])
}

func TestProcess_MalformedEvents(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"notification_type":`},
		{"missing request", `{"notification_type":"MEDIA_PENDING","media":{"media_type":"tv","tmdbId":"1"}}`},
		{"missing media", `{"notification_type":"MEDIA_PENDING","request":{"request_id":"1"}}`},
		{"unknown media type", `{"notification_type":"MEDIA_PENDING","media":{"media_type":"music","tmdbId":"1"},"request":{"request_id":"1"}}`},
		{"missing tmdb id", `{"notification_type":"MEDIA_PENDING","media":{"media_type":"movie","tmdbId":""},"request":{"request_id":"1"}}`},
		{"non-numeric request id", `{"notification_type":"MEDIA_PENDING","media":{"media_type":"movie","tmdbId":"1"},"request":{"request_id":"abc"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			res, err := f.proc.Process(context.Background(), Event{Body: []byte(tt.body)})
			require.ErrorIs(t, err, ErrMalformedEvent)
			assert.Equal(t, StateError, res.State)
			assert.True(t, IsClientError(err))
		})
	}
}

func TestProcess_MetadataFailure(t *testing.T) {
	f := newFixture(t, nil)
	upstream := errors.New("connection refused")

	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeMovie, 99).Return(nil, upstream)

	res, err := f.proc.Process(context.Background(), pendingEvent("movie", 7, 99, ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, upstream)
	assert.False(t, IsClientError(err))

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "fetch metadata", ue.Op)
	assert.Equal(t, StateError, res.State)
	assert.Nil(t, res.Decision)
}

func TestProcess_UpdateFailureSkipsApproval(t *testing.T) {
	f := newFixture(t, nil)

	var event notification.DecisionEvent
	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(animeDetails(), nil)
	f.requests.EXPECT().UpdateRequest(gomock.Any(), 42, gomock.Any()).Return(overseerr.ErrAPIError)
	f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e notification.DecisionEvent) {
		event = e
	})

	res, err := f.proc.Process(context.Background(), pendingEvent("tv", 42, 1429, "1"))
	require.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, StateError, res.State)
	assert.Contains(t, res.Error, "update request")
	assert.Equal(t, notification.StatusFailed, event.Status)
	assert.False(t, event.Approved)
}

func TestProcess_ApproveFailure(t *testing.T) {
	f := newFixture(t, nil)

	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(animeDetails(), nil)
	f.requests.EXPECT().UpdateRequest(gomock.Any(), 42, gomock.Any()).Return(nil)
	f.requests.EXPECT().ApproveRequest(gomock.Any(), 42).Return(overseerr.ErrUnauthorized)
	f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any())

	res, err := f.proc.Process(context.Background(), pendingEvent("tv", 42, 1429, "1"))
	require.ErrorIs(t, err, overseerr.ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, StateError, res.State)
}

func TestProcess_FailedAtRecordsLastStep(t *testing.T) {
	plainMovie := &media.Details{
		Attributes: media.Attributes{MediaType: media.TypeMovie, Genres: []string{"Drama"}},
		TMDbID:     99,
		Title:      "Plain",
	}

	t.Run("metadata", func(t *testing.T) {
		f := newFixture(t, nil)
		f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeMovie, 99).Return(nil, errors.New("down"))

		res, err := f.proc.Process(context.Background(), pendingEvent("movie", 7, 99, ""))
		require.Error(t, err)
		assert.Equal(t, StateAuthenticated, res.FailedAt)
	})

	t.Run("profile selection after categorizing", func(t *testing.T) {
		f := newFixture(t, func(cfg *config.Config) {
			cfg.MovieCategories.Definitions[1].Apply.DefaultProfileID = 0
		})
		f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeMovie, 99).Return(plainMovie, nil)

		res, err := f.proc.Process(context.Background(), pendingEvent("movie", 7, 99, ""))
		require.ErrorIs(t, err, ErrNoProfile)
		assert.Equal(t, StateCategorized, res.FailedAt)
		assert.Equal(t, StateError, res.State)
		assert.Nil(t, res.Decision)
	})

	t.Run("update", func(t *testing.T) {
		f := newFixture(t, func(cfg *config.Config) {
			cfg.DryRun = false
		})
		f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeMovie, 99).Return(plainMovie, nil)
		f.requests.EXPECT().UpdateRequest(gomock.Any(), 7, gomock.Any()).Return(overseerr.ErrAPIError)
		f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any())

		res, err := f.proc.Process(context.Background(), pendingEvent("movie", 7, 99, ""))
		require.Error(t, err)
		assert.Equal(t, StateProfileSelected, res.FailedAt)
	})

	t.Run("success leaves it empty", func(t *testing.T) {
		f := newFixture(t, func(cfg *config.Config) {
			cfg.DryRun = true
		})
		f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeMovie, 99).Return(plainMovie, nil)
		f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any())

		res, err := f.proc.Process(context.Background(), pendingEvent("movie", 7, 99, ""))
		require.NoError(t, err)
		assert.Empty(t, res.FailedAt)
	})
}

func TestProcess_DuplicateDelivery(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.DryRun = true
	})

	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(animeDetails(), nil).Times(1)
	f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any()).Times(1)

	first, err := f.proc.Process(context.Background(), pendingEvent("tv", 42, 1429, "1"))
	require.NoError(t, err)
	assert.Equal(t, StateDryRunLogged, first.State)

	second, err := f.proc.Process(context.Background(), pendingEvent("tv", 42, 1429, "1"))
	require.NoError(t, err)
	assert.Equal(t, StateDuplicate, second.State)

	decisions := f.proc.Decisions(10)
	require.Len(t, decisions, 2)
	assert.Equal(t, StateDuplicate, decisions[0].State, "newest first")
	assert.Equal(t, StateDryRunLogged, decisions[1].State)
}

func TestProcess_FailureReleasesDedupClaim(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.DryRun = true
	})

	gomock.InOrder(
		f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(nil, errors.New("timeout")),
		f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(animeDetails(), nil),
	)
	f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any())

	_, err := f.proc.Process(context.Background(), pendingEvent("tv", 42, 1429, "1"))
	require.Error(t, err)

	res, err := f.proc.Process(context.Background(), pendingEvent("tv", 42, 1429, "1"))
	require.NoError(t, err)
	assert.Equal(t, StateDryRunLogged, res.State)
}

func TestProcess_DedupDisabled(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.DryRun = true
		cfg.Dedup.Enabled = false
	})
	assert.Nil(t, f.proc.Ledger())

	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(animeDetails(), nil).Times(2)
	f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any()).Times(2)

	for range 2 {
		res, err := f.proc.Process(context.Background(), pendingEvent("tv", 42, 1429, "1"))
		require.NoError(t, err)
		assert.Equal(t, StateDryRunLogged, res.State)
	}
}

func TestProcess_InvalidSeasonsStillProcessed(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.AutoApprove = false
	})

	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(animeDetails(), nil)
	f.requests.EXPECT().UpdateRequest(gomock.Any(), 42, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int, u overseerr.RequestUpdate) error {
			assert.Empty(t, u.Seasons)
			return nil
		})
	f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any())

	res, err := f.proc.Process(context.Background(), pendingEvent("tv", 42, 1429, "one, two"))
	require.NoError(t, err)
	assert.Equal(t, StatePendingApproval, res.State)
}

func TestProcess_WithoutNotifier(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.DryRun = true
	})
	f.proc.SetNotifier(nil)

	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(animeDetails(), nil)

	res, err := f.proc.Process(context.Background(), pendingEvent("tv", 42, 1429, "1"))
	require.NoError(t, err)
	assert.Equal(t, StateDryRunLogged, res.State)
}

type statusClient struct {
	*mocks.MockRequestClient
	calls  int
	status int
	err    error
}

func (c *statusClient) GetRequest(_ context.Context, requestID int) (*overseerr.MediaRequest, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &overseerr.MediaRequest{ID: requestID, Status: c.status}, nil
}

func TestProcess_ReadsBackRequestStatus(t *testing.T) {
	tests := []struct {
		name      string
		dryRun    bool
		err       error
		wantCalls int
		wantState State
	}{
		{"applied", false, nil, 1, StateApproved},
		{"read failure is not fatal", false, errors.New("boom"), 1, StateApproved},
		{"dry run skips read", true, nil, 0, StateDryRunLogged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			metadata := mocks.NewMockMetadataClient(ctrl)
			requests := &statusClient{
				MockRequestClient: mocks.NewMockRequestClient(ctrl),
				status:            overseerr.RequestStatusApproved,
				err:               tt.err,
			}

			cfg := config.Default()
			cfg.TVCategories = testutil.TVCategories()
			cfg.MovieCategories = testutil.MovieCategories()
			cfg.DryRun = tt.dryRun
			cfg.AutoApprove = true

			proc, err := NewProcessor(cfg, metadata, requests, testutil.NopLogger())
			require.NoError(t, err)

			metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(animeDetails(), nil)
			if !tt.dryRun {
				requests.EXPECT().UpdateRequest(gomock.Any(), 42, gomock.Any()).Return(nil)
				requests.EXPECT().ApproveRequest(gomock.Any(), 42).Return(nil)
			}

			res, err := proc.Process(context.Background(), pendingEvent("tv", 42, 1429, "1"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, res.State)
			assert.Equal(t, tt.wantCalls, requests.calls)
		})
	}
}

func TestProcess_ConcurrentRunsAreDeterministic(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.DryRun = true
	})

	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).DoAndReturn(
		func(context.Context, media.Type, int) (*media.Details, error) {
			return animeDetails(), nil
		}).AnyTimes()
	f.notifier.EXPECT().NotifyDecision(gomock.Any(), gomock.Any()).AnyTimes()

	const runs = 20
	var wg sync.WaitGroup
	results := make([]*Result, runs)
	for i := range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.proc.Process(context.Background(), pendingEvent("tv", 100+i, 1429, "1"))
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	for _, res := range results {
		require.NotNil(t, res)
		require.NotNil(t, res.Decision)
		assert.Equal(t, "Anime", res.Decision.Category)
		assert.Equal(t, 12, res.Decision.ProfileID)
	}
	assert.Equal(t, runs, f.proc.Stats()[StateDryRunLogged])
}

func TestPreview(t *testing.T) {
	f := newFixture(t, nil)

	details := animeDetails()
	details.Attributes.OriginalLanguage = "en"
	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeTV, 1429).Return(details, nil)

	preview, err := f.proc.Preview(context.Background(), media.TypeTV, 1429)
	require.NoError(t, err)

	assert.Equal(t, "Attack on Titan", preview.Title)
	assert.Equal(t, "Anime", preview.Decision.Category)
	assert.Equal(t, 7, preview.Decision.ProfileID, "no rule matches, category default applies")
	assert.Equal(t, quality.SourceDefault, preview.Decision.ProfileSource)
	require.Len(t, preview.Decision.Match.Candidates, 2)
	assert.Equal(t, "anime", preview.Decision.Match.Candidates[0].MatchedKeyword)
	assert.Empty(t, f.proc.Decisions(10), "previews are not recorded")
}

func TestPreview_Errors(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.proc.Preview(context.Background(), media.TypeMovie, 0)
	assert.ErrorIs(t, err, ErrMalformedEvent)

	f.metadata.EXPECT().FetchDetails(gomock.Any(), media.TypeMovie, 5).Return(nil, overseerr.ErrNotFound)
	_, err = f.proc.Preview(context.Background(), media.TypeMovie, 5)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, overseerr.ErrNotFound)
}

func TestDecide_MissingProfile(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.MovieCategories.Definitions[1].Apply.DefaultProfileID = 0
	})

	_, err := f.proc.decide(media.Attributes{MediaType: media.TypeMovie}, media.TypeMovie)
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestDecide_MissingServer(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.MovieCategories.Definitions[1].Apply.ServerID = nil
	})

	_, err := f.proc.decide(media.Attributes{MediaType: media.TypeMovie}, media.TypeMovie)
	assert.ErrorIs(t, err, ErrNoServer)
}

func TestDecide_LegacyServerIDs(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		def := &cfg.MovieCategories.Definitions[1]
		def.Apply.ServerID = nil
		def.Apply.RadarrID = testutil.IntPtr(3)
	})

	d, err := f.proc.decide(media.Attributes{MediaType: media.TypeMovie}, media.TypeMovie)
	require.NoError(t, err)
	assert.Equal(t, 3, d.ServerID)
}

func TestNewProcessor_InvalidMatcher(t *testing.T) {
	cfg := config.Default()
	cfg.Matching.Keywords = "phonetic"
	_, err := NewProcessor(cfg, nil, nil, testutil.NopLogger())
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Webhook.Token = "abc"
	})
	assert.NoError(t, f.proc.Authenticate("abc"))
	assert.ErrorIs(t, f.proc.Authenticate("abcd"), ErrUnauthorized)
}

func TestState_Terminal(t *testing.T) {
	assert.True(t, StateApproved.Terminal())
	assert.True(t, StateDuplicate.Terminal())
	assert.False(t, StateApplied.Terminal())
	assert.False(t, StateMetadataFetched.Terminal())
}

func TestDecision_TargetName(t *testing.T) {
	assert.Equal(t, "Unknown App", (&Decision{}).TargetName())
	assert.Equal(t, "Radarr 4K", (&Decision{AppName: "Radarr 4K"}).TargetName())
}
