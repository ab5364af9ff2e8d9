package dedup

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLedger(ttl time.Duration, maxItems int) (*Ledger, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(Config{TTL: ttl, MaxItems: maxItems})
	l.now = func() time.Time { return now }
	return l, &now
}

func TestKey(t *testing.T) {
	assert.Equal(t, "MEDIA_PENDING:42", Key("MEDIA_PENDING", 42))
}

func TestNew_Defaults(t *testing.T) {
	l := New(Config{})
	assert.Equal(t, DefaultTTL, l.TTL())
	assert.Equal(t, DefaultMaxItems, l.maxItems)
}

func TestLedger_ClaimOnce(t *testing.T) {
	l, now := newTestLedger(time.Minute, 10)

	assert.True(t, l.Claim("a"))
	assert.False(t, l.Claim("a"))
	assert.True(t, l.Seen("a"))
	assert.True(t, l.Claim("b"))

	*now = now.Add(time.Minute)
	assert.False(t, l.Seen("a"))
	assert.True(t, l.Claim("a"), "claim expires after the TTL")
}

func TestLedger_Release(t *testing.T) {
	l, _ := newTestLedger(time.Minute, 10)

	assert.True(t, l.Claim("a"))
	l.Release("a")
	assert.False(t, l.Seen("a"))
	assert.True(t, l.Claim("a"))
}

func TestLedger_Prune(t *testing.T) {
	l, now := newTestLedger(time.Minute, 10)

	l.Claim("a")
	*now = now.Add(30 * time.Second)
	l.Claim("b")
	*now = now.Add(45 * time.Second)

	assert.Equal(t, 1, l.Prune())
	assert.Equal(t, 1, l.Len())
	assert.True(t, l.Seen("b"))
}

func TestLedger_EvictsWhenFull(t *testing.T) {
	l, now := newTestLedger(time.Hour, 3)

	for i := range 3 {
		assert.True(t, l.Claim(fmt.Sprint(i)))
		*now = now.Add(time.Second)
	}
	assert.True(t, l.Claim("3"))
	assert.Equal(t, 3, l.Len())
	assert.False(t, l.Seen("0"), "oldest claim is evicted")
	assert.True(t, l.Seen("3"))
}

func TestLedger_ConcurrentClaims(t *testing.T) {
	l := New(Config{TTL: time.Minute})

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Claim("same") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
