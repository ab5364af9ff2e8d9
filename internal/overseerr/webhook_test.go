package overseerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pendingPayload = `{
  "notification_type": "MEDIA_PENDING",
  "event": "New Request",
  "subject": "Attack on Titan (2013)",
  "message": "Humanity fights titans.",
  "image": "https://image.tmdb.org/t/p/w600_and_h900_bestv2/aot.jpg",
  "media": {"media_type": "tv", "tmdbId": "1429", "tvdbId": "", "status": "PENDING", "status4k": "UNKNOWN"},
  "request": {"request_id": "42", "requestedBy_email": "a@b.c", "requestedBy_username": "alice", "requestedBy_avatar": ""},
  "extra": [{"name": "Requested Seasons", "value": "1, 2,3"}]
}`

func TestParseWebhook(t *testing.T) {
	p, err := ParseWebhook([]byte(pendingPayload))
	require.NoError(t, err)

	assert.Equal(t, NotificationMediaPending, p.NotificationType)
	assert.Equal(t, "Attack on Titan (2013)", p.Subject)
	require.NotNil(t, p.Media)
	assert.Equal(t, "tv", p.Media.MediaType)
	assert.Equal(t, FlexInt(1429), p.Media.TMDbID)
	assert.Equal(t, FlexInt(0), p.Media.TVDbID)
	require.NotNil(t, p.Request)
	assert.Equal(t, FlexInt(42), p.Request.RequestID)
	assert.Equal(t, "alice", p.Username())

	seasons, err := p.Seasons()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seasons)
}

func TestParseWebhook_NumericIDs(t *testing.T) {
	p, err := ParseWebhook([]byte(`{"notification_type":"MEDIA_PENDING","media":{"media_type":"movie","tmdbId":603},"request":{"request_id":7}}`))
	require.NoError(t, err)
	assert.Equal(t, FlexInt(603), p.Media.TMDbID)
	assert.Equal(t, FlexInt(7), p.Request.RequestID)
}

func TestParseWebhook_Invalid(t *testing.T) {
	_, err := ParseWebhook([]byte(`{not json`))
	assert.Error(t, err)

	_, err = ParseWebhook([]byte(`{"media":{"tmdbId":"abc"}}`))
	assert.Error(t, err)
}

func TestSeasons(t *testing.T) {
	tests := []struct {
		name    string
		extra   []WebhookExtra
		want    []int
		wantErr bool
	}{
		{"none", nil, nil, false},
		{"first entry fallback", []WebhookExtra{{Name: "Other", Value: "4"}}, []int{4}, false},
		{"prefers seasons entry", []WebhookExtra{{Name: "Note", Value: "x"}, {Name: "Requested Seasons", Value: "2"}}, []int{2}, false},
		{"invalid", []WebhookExtra{{Name: "Requested Seasons", Value: "1,two"}}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &WebhookPayload{Extra: tt.extra}
			got, err := p.Seasons()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMediaRequestStatusText(t *testing.T) {
	assert.Equal(t, "Pending Approval", MediaRequest{Status: RequestStatusPending}.StatusText())
	assert.Equal(t, "Declined", MediaRequest{Status: RequestStatusDeclined}.StatusText())
	assert.Equal(t, "Unknown Status", MediaRequest{Status: 9}.StatusText())
}

func TestParseYear(t *testing.T) {
	assert.Equal(t, 1999, parseYear("1999-03-30"))
	assert.Equal(t, 2020, parseYear("2020"))
	assert.Equal(t, 0, parseYear(""))
	assert.Equal(t, 0, parseYear("30/03/1999"))
}
