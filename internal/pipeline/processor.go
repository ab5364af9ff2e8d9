// Package pipeline turns a pending-request webhook into a routing decision
// and applies it: authenticate, fetch metadata, categorize, select a quality
// profile, update the request, then approve it or leave it pending.
package pipeline

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/overfiltrr/overfiltrr/internal/category"
	"github.com/overfiltrr/overfiltrr/internal/config"
	"github.com/overfiltrr/overfiltrr/internal/dedup"
	"github.com/overfiltrr/overfiltrr/internal/media"
	"github.com/overfiltrr/overfiltrr/internal/notification"
	"github.com/overfiltrr/overfiltrr/internal/overseerr"
	"github.com/overfiltrr/overfiltrr/internal/quality"
	"github.com/overfiltrr/overfiltrr/internal/ringbuf"
)

// DefaultHistorySize is how many results Decisions can return.
const DefaultHistorySize = 200

// Processor runs the decision pipeline. It is safe for concurrent use; the
// configuration it holds is never mutated.
type Processor struct {
	cfg      *config.Config
	metadata MetadataClient
	requests RequestClient
	notifier Notifier
	matcher  *category.Matcher
	ledger   *dedup.Ledger
	history  *ringbuf.Buffer[Result]
	logger   zerolog.Logger

	mu     sync.Mutex
	counts map[State]int
}

// NewProcessor creates a processor for cfg. The keyword strategy and the
// redelivery ledger are built from cfg.
func NewProcessor(cfg *config.Config, metadata MetadataClient, requests RequestClient, logger zerolog.Logger) (*Processor, error) {
	keywords, err := category.NewKeywordMatcher(cfg.Matching.Keywords, cfg.Matching.Threshold)
	if err != nil {
		return nil, fmt.Errorf("keyword matcher: %w", err)
	}

	p := &Processor{
		cfg:      cfg,
		metadata: metadata,
		requests: requests,
		matcher:  category.NewMatcher(keywords),
		history:  ringbuf.New[Result](DefaultHistorySize),
		logger:   logger.With().Str("component", "pipeline").Logger(),
		counts:   make(map[State]int),
	}
	if cfg.Dedup.Enabled {
		p.ledger = dedup.New(dedup.Config{TTL: cfg.Dedup.TTL})
	}
	return p, nil
}

// SetNotifier sets where decision summaries are sent.
func (p *Processor) SetNotifier(n Notifier) {
	p.notifier = n
}

// Ledger returns the redelivery ledger, or nil when deduplication is off.
func (p *Processor) Ledger() *dedup.Ledger {
	return p.ledger
}

// Authenticate checks a presented token against the configured one. With no
// token configured every caller is accepted.
func (p *Processor) Authenticate(token string) error {
	want := p.cfg.Webhook.Token
	if want == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(want)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// Process runs one event to a terminal state. The returned Result is never
// nil; err is set exactly when the state is StateError.
func (p *Processor) Process(ctx context.Context, ev Event) (*Result, error) {
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now()
	}
	res := &Result{
		ID:         uuid.NewString(),
		State:      StateReceived,
		DryRun:     p.cfg.DryRun,
		ReceivedAt: ev.ReceivedAt,
	}

	// No external call happens before the token check.
	if err := p.Authenticate(ev.Token); err != nil {
		p.logger.Warn().Str("runId", res.ID).Msg("Rejected webhook with invalid token")
		return p.finish(res, StateError, err, false), err
	}
	res.State = StateAuthenticated

	payload, err := overseerr.ParseWebhook(ev.Body)
	if err != nil {
		err = malformed("%v", err)
		p.logger.Warn().Err(err).Str("runId", res.ID).Msg("Rejected webhook")
		return p.finish(res, StateError, err, false), err
	}
	res.NotificationType = payload.NotificationType

	switch payload.NotificationType {
	case overseerr.NotificationMediaPending:
	case overseerr.NotificationTest:
		p.logger.Info().Msg("Test payload received, no further processing")
		return p.finish(res, StateIgnored, nil, false), nil
	default:
		p.logger.Debug().Str("notificationType", payload.NotificationType).Msg("Ignoring unhandled notification type")
		return p.finish(res, StateIgnored, nil, false), nil
	}

	if err := p.describe(res, payload); err != nil {
		p.logger.Warn().Err(err).Str("runId", res.ID).Msg("Rejected webhook")
		return p.finish(res, StateError, err, false), err
	}

	logger := p.logger.With().
		Str("runId", res.ID).
		Int("requestId", res.RequestID).
		Str("mediaType", res.MediaType.String()).
		Str("mediaTitle", res.Title).
		Int("tmdbId", res.TMDbID).
		Str("user", res.Username).
		Logger()

	key := dedup.Key(payload.NotificationType, res.RequestID)
	if p.ledger != nil && !p.ledger.Claim(key) {
		logger.Info().Msg("Duplicate delivery within the redelivery window, skipping")
		return p.finish(res, StateDuplicate, nil, true), nil
	}

	logger.Info().Msg("Starting processing for media request")

	seasons, err := payload.Seasons()
	if err != nil && res.MediaType == media.TypeTV {
		logger.Warn().Err(err).Msg("Seasons information is missing or invalid")
	}

	details, state, err := p.run(ctx, logger, res, seasons)
	if err != nil {
		if p.ledger != nil {
			p.ledger.Release(key)
		}
		logger.Error().Err(err).Str("state", string(res.State)).Msg("Request processing failed")
		p.finish(res, StateError, err, true)
		p.notify(ctx, res, details)
		return res, err
	}

	if !res.DryRun {
		p.logRequestStatus(ctx, logger, res.RequestID)
	}
	p.finish(res, state, nil, true)
	p.notify(ctx, res, details)
	logger.Info().Str("state", string(state)).Dur("duration", res.Duration).Msg("Request processing complete")
	return res, nil
}

// describe copies request identity from the payload, rejecting events that
// lack a request id, media type or TMDB id.
func (p *Processor) describe(res *Result, payload *overseerr.WebhookPayload) error {
	if payload.Request == nil || payload.Request.RequestID <= 0 {
		return malformed("missing request id")
	}
	if payload.Media == nil {
		return malformed("missing media")
	}
	mt, err := media.ParseType(payload.Media.MediaType)
	if err != nil {
		return malformed("%v", err)
	}
	if payload.Media.TMDbID <= 0 {
		return malformed("missing tmdb id")
	}

	res.RequestID = int(payload.Request.RequestID)
	res.MediaType = mt
	res.TMDbID = int(payload.Media.TMDbID)
	res.Title = payload.Subject
	res.Username = payload.Username()
	return nil
}

func (p *Processor) run(ctx context.Context, logger zerolog.Logger, res *Result, seasons []int) (*media.Details, State, error) {
	details, err := p.metadata.FetchDetails(ctx, res.MediaType, res.TMDbID)
	if err != nil {
		return nil, StateError, &UpstreamError{Op: "fetch metadata", Err: err}
	}
	res.State = StateMetadataFetched
	if res.Title == "" {
		res.Title = details.Title
	}

	match, def, err := p.categorize(details.Attributes, res.MediaType)
	if err != nil {
		return details, StateError, err
	}
	res.State = StateCategorized

	decision, err := p.selectProfile(details.Attributes, res.MediaType, match, def)
	if err != nil {
		return details, StateError, err
	}
	decision.Seasons = seasons
	res.Decision = decision
	res.State = StateProfileSelected

	logger = logger.With().Str("category", decision.Category).Int("profileId", decision.ProfileID).Logger()
	p.logDecision(logger, decision)

	state, err := p.apply(ctx, logger, res)
	return details, state, err
}

// decide categorizes attrs and selects the profile. It never calls out.
func (p *Processor) decide(attrs media.Attributes, mt media.Type) (*Decision, error) {
	match, def, err := p.categorize(attrs, mt)
	if err != nil {
		return nil, err
	}
	return p.selectProfile(attrs, mt, match, def)
}

func (p *Processor) categorize(attrs media.Attributes, mt media.Type) (category.Result, *category.Definition, error) {
	set := p.cfg.Categories(mt)
	if set == nil {
		return category.Result{}, nil, fmt.Errorf("%w for %s", ErrNoCategory, mt)
	}

	match := p.matcher.Match(attrs, set)
	if match.Definition == nil {
		return match, nil, fmt.Errorf("%w: %q", ErrNoCategory, match.Category)
	}
	return match, match.Definition, nil
}

func (p *Processor) selectProfile(attrs media.Attributes, mt media.Type, match category.Result, def *category.Definition) (*Decision, error) {
	sel := def.SelectProfile(attrs)
	if sel.Source == quality.SourceNone {
		return nil, fmt.Errorf("%w for category %q", ErrNoProfile, def.Name)
	}
	serverID, ok := def.Apply.Server(mt)
	if !ok {
		return nil, fmt.Errorf("%w for category %q", ErrNoServer, def.Name)
	}

	return &Decision{
		Category:      def.Name,
		Fallback:      match.Fallback,
		ProfileID:     sel.ProfileID,
		ProfileSource: sel.Source,
		Rule:          sel.Rule,
		RootFolder:    def.Apply.RootFolder,
		ServerID:      serverID,
		AppName:       def.Apply.AppName,
		Approve:       p.cfg.AutoApprove && !p.cfg.DryRun,
		Match:         match,
	}, nil
}

// apply issues the update and the approval as the flags allow. Approval is
// never attempted after a failed update.
func (p *Processor) apply(ctx context.Context, logger zerolog.Logger, res *Result) (State, error) {
	d := res.Decision
	update := d.Update(res.MediaType)

	if p.cfg.DryRun {
		logger.Warn().
			Str("targetRoot", update.RootFolder).
			Int("serverId", update.ServerID).
			Str("targetName", d.TargetName()).
			Ints("seasons", update.Seasons).
			Msg("[DRY RUN] No changes made. Would update request")
		if p.cfg.AutoApprove {
			logger.Warn().Msg("[DRY RUN] Would approve request")
			return StateDryRunLogged, nil
		}
		return StatePendingApproval, nil
	}

	if err := p.requests.UpdateRequest(ctx, res.RequestID, update); err != nil {
		return StateError, &UpstreamError{Op: "update request", Err: err}
	}
	res.State = StateApplied
	logger.Info().
		Str("targetRoot", update.RootFolder).
		Str("targetName", d.TargetName()).
		Msg("Request updated")

	if !p.cfg.AutoApprove {
		logger.Info().Msg("Auto-approval disabled, request left pending")
		return StatePendingApproval, nil
	}

	if err := p.requests.ApproveRequest(ctx, res.RequestID); err != nil {
		return StateError, &UpstreamError{Op: "approve request", Err: err}
	}
	logger.Info().Msg("Request approved successfully")
	return StateApproved, nil
}

// logRequestStatus reads back the request after it was applied. Failures
// are only logged.
func (p *Processor) logRequestStatus(ctx context.Context, logger zerolog.Logger, requestID int) {
	reader, ok := p.requests.(RequestStatusReader)
	if !ok {
		return
	}
	req, err := reader.GetRequest(ctx, requestID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to check final request status")
		return
	}
	logger.Info().Str("requestStatus", req.StatusText()).Msg("Final request status")
}

// Preview runs the decision for a title without touching any request.
func (p *Processor) Preview(ctx context.Context, mt media.Type, tmdbID int) (*Preview, error) {
	if tmdbID <= 0 {
		return nil, malformed("missing tmdb id")
	}
	details, err := p.metadata.FetchDetails(ctx, mt, tmdbID)
	if err != nil {
		return nil, &UpstreamError{Op: "fetch metadata", Err: err}
	}
	decision, err := p.decide(details.Attributes, mt)
	if err != nil {
		return nil, err
	}
	return &Preview{
		Title:      details.Title,
		Attributes: details.Attributes,
		Ratings:    details.Ratings,
		Decision:   decision,
	}, nil
}

// Decisions returns up to limit recent results, newest first.
func (p *Processor) Decisions(limit int) []Result {
	items := p.history.Last(limit)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// Stats returns how many runs ended in each terminal state.
func (p *Processor) Stats() map[State]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[State]int, len(p.counts))
	for k, v := range p.counts {
		out[k] = v
	}
	return out
}

func (p *Processor) finish(res *Result, state State, err error, record bool) *Result {
	if err != nil {
		res.FailedAt = res.State
	}
	res.State = state
	res.Duration = time.Since(res.ReceivedAt)
	if err != nil {
		res.Error = err.Error()
	}

	p.mu.Lock()
	p.counts[state]++
	p.mu.Unlock()

	if record {
		p.history.Push(*res)
	}
	return res
}

func (p *Processor) logDecision(logger zerolog.Logger, d *Decision) {
	ev := logger.Info().
		Bool("fallback", d.Fallback).
		Str("profileSource", string(d.ProfileSource))
	if d.Rule != nil {
		ev = ev.Int("rulePriority", d.Rule.Priority).Str("ruleCondition", d.Rule.Condition.String())
	}
	ev.Msg("Categorized")

	for _, c := range d.Match.Candidates {
		logger.Debug().
			Str("candidate", c.Name).
			Int("weight", c.Weight).
			Bool("excluded", c.Excluded).
			Bool("matched", c.Matched).
			Str("matchedGenre", c.MatchedGenre).
			Str("matchedKeyword", c.MatchedKeyword).
			Msg("Category candidate")
	}
}

// notify reports runs that reached a decision. Runs that failed earlier have
// nothing useful to show.
func (p *Processor) notify(ctx context.Context, res *Result, details *media.Details) {
	if p.notifier == nil || res.Decision == nil || details == nil {
		return
	}

	d := res.Decision
	p.notifier.NotifyDecision(ctx, notification.DecisionEvent{
		EventID:    res.ID,
		RequestID:  res.RequestID,
		MediaType:  res.MediaType,
		Title:      res.Title,
		Username:   res.Username,
		Category:   d.Category,
		AppName:    d.AppName,
		ProfileID:  d.ProfileID,
		RootFolder: d.RootFolder,
		Seasons:    d.Seasons,
		Overview:   details.Overview,
		IMDbID:     details.IMDbID,
		PosterURL:  details.PosterURL(),
		Status:     statusText(res.State),
		State:      string(res.State),
		Approved:   res.State == StateApproved,
		DryRun:     res.DryRun,
		OccurredAt: res.ReceivedAt.Add(res.Duration),
	})
}

func statusText(s State) string {
	switch s {
	case StateApproved:
		return notification.StatusApproved
	case StateDryRunLogged:
		return notification.StatusDryRun
	case StatePendingApproval:
		return notification.StatusPendingApproval
	default:
		return notification.StatusFailed
	}
}

// IsClientError reports whether err was caused by the caller rather than by
// the engine or its upstreams.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrMalformedEvent)
}
