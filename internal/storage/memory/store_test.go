package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/sitegate/internal/core/domain"
	"github.com/yndnr/sitegate/pkg/token"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingObserver struct {
	issued, revoked, expired int
}

func (o *countingObserver) SessionIssued(*domain.Session)  { o.issued++ }
func (o *countingObserver) SessionRevoked(*domain.Session) { o.revoked++ }
func (o *countingObserver) SessionsExpired(n int)          { o.expired += n }

func TestStore_IssueAndValidate(t *testing.T) {
	store := New()
	ctx := context.Background()

	tok, sess, err := store.Issue(ctx, "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok == "" {
		t.Fatal("Issue returned empty token")
	}
	if sess.Identity != "admin" || sess.TokenHash != token.Hash(tok) {
		t.Errorf("unexpected session: %+v", sess)
	}

	identity, ok := store.Validate(ctx, tok)
	if !ok || identity != "admin" {
		t.Fatalf("Validate = (%q, %v), want (admin, true)", identity, ok)
	}
}

func TestStore_ValidateUnknown(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, tok := range []string{"", "never-issued", "x"} {
		if identity, ok := store.Validate(ctx, tok); ok {
			t.Errorf("Validate(%q) = (%q, true), want absent", tok, identity)
		}
	}
}

func TestStore_TokenNotStoredInPlaintext(t *testing.T) {
	store := New()
	tok, _, err := store.Issue(context.Background(), "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.sessions[tok]; ok {
		t.Error("store is keyed by the plaintext token")
	}
	if _, ok := store.sessions[token.Hash(tok)]; !ok {
		t.Error("store is not keyed by the token digest")
	}
}

func TestStore_ExpiryBoundary(t *testing.T) {
	clock := newFakeClock()
	store := New(WithTTL(10*time.Minute), WithClock(clock.Now))
	ctx := context.Background()

	tok, _, err := store.Issue(ctx, "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	clock.Advance(10 * time.Minute)
	if _, ok := store.Validate(ctx, tok); !ok {
		t.Fatal("session with age == TTL should be valid")
	}

	clock.Advance(time.Nanosecond)
	if _, ok := store.Validate(ctx, tok); ok {
		t.Fatal("session with age > TTL should be expired")
	}
	if store.Count() != 0 {
		t.Errorf("Count = %d, want 0 after lazy expiry", store.Count())
	}
}

func TestStore_LookupErrors(t *testing.T) {
	clock := newFakeClock()
	store := New(WithTTL(time.Minute), WithClock(clock.Now))
	ctx := context.Background()

	if _, err := store.Lookup(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Lookup(missing) error = %v, want ErrSessionNotFound", err)
	}

	tok, issued, _ := store.Issue(ctx, "admin")
	got, err := store.Lookup(ctx, tok)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.ID != issued.ID {
		t.Errorf("Lookup ID = %q, want %q", got.ID, issued.ID)
	}

	clock.Advance(2 * time.Minute)
	if _, err := store.Lookup(ctx, tok); !errors.Is(err, domain.ErrSessionExpired) {
		t.Errorf("Lookup(expired) error = %v, want ErrSessionExpired", err)
	}
	if _, err := store.Lookup(ctx, tok); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("second Lookup error = %v, want ErrSessionNotFound", err)
	}
}

func TestStore_RevokeIdempotent(t *testing.T) {
	obs := &countingObserver{}
	store := New(WithObserver(obs))
	ctx := context.Background()

	tok, _, _ := store.Issue(ctx, "admin")
	other, _, _ := store.Issue(ctx, "editor")

	if !store.Revoke(ctx, tok) {
		t.Fatal("first Revoke should report removal")
	}
	if store.Revoke(ctx, tok) {
		t.Fatal("second Revoke should report nothing removed")
	}
	if store.Revoke(ctx, "") {
		t.Fatal("Revoke of empty token should be a no-op")
	}
	if _, ok := store.Validate(ctx, tok); ok {
		t.Error("revoked token still validates")
	}
	if id, ok := store.Validate(ctx, other); !ok || id != "editor" {
		t.Error("revoking one token affected another session")
	}
	if obs.revoked != 1 {
		t.Errorf("revoked events = %d, want 1", obs.revoked)
	}
}

func TestStore_SweepOnIssue(t *testing.T) {
	clock := newFakeClock()
	obs := &countingObserver{}
	store := New(WithTTL(time.Minute), WithClock(clock.Now), WithObserver(obs))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		store.Issue(ctx, "admin")
	}
	clock.Advance(30 * time.Second)
	fresh, _, _ := store.Issue(ctx, "admin")

	clock.Advance(45 * time.Second)
	if _, _, err := store.Issue(ctx, "admin"); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// The first five are 75s old, fresh is 45s old, the last one is new.
	if got := store.Count(); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}
	if obs.expired != 5 || obs.issued != 7 {
		t.Errorf("observer = %+v, want issued=7 expired=5", obs)
	}
	if _, ok := store.Validate(ctx, fresh); !ok {
		t.Error("unexpired session was swept")
	}
}

func TestStore_Sweep(t *testing.T) {
	clock := newFakeClock()
	store := New(WithTTL(time.Minute), WithClock(clock.Now))
	ctx := context.Background()

	store.Issue(ctx, "a")
	store.Issue(ctx, "b")
	if n := store.Sweep(); n != 0 {
		t.Errorf("Sweep = %d, want 0", n)
	}

	clock.Advance(time.Minute + time.Second)
	if n := store.Sweep(); n != 2 {
		t.Errorf("Sweep = %d, want 2", n)
	}
	if store.Count() != 0 {
		t.Errorf("Count = %d, want 0", store.Count())
	}
}

func TestStore_IssueRegeneratesOnCollision(t *testing.T) {
	tokens := []string{"dup-token", "dup-token", "unique-token"}
	var i int
	gen := func() (string, error) {
		tok := tokens[i]
		i++
		return tok, nil
	}
	store := New(WithTokenGenerator(gen))
	ctx := context.Background()

	first, _, err := store.Issue(ctx, "a")
	if err != nil || first != "dup-token" {
		t.Fatalf("first Issue = (%q, %v)", first, err)
	}
	second, _, err := store.Issue(ctx, "b")
	if err != nil || second != "unique-token" {
		t.Fatalf("second Issue = (%q, %v), want unique-token", second, err)
	}
}

func TestStore_IssueConflictAfterRetries(t *testing.T) {
	store := New(WithTokenGenerator(func() (string, error) { return "same", nil }))
	ctx := context.Background()

	if _, _, err := store.Issue(ctx, "a"); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := store.Issue(ctx, "b"); !errors.Is(err, domain.ErrTokenConflict) {
		t.Fatalf("Issue error = %v, want ErrTokenConflict", err)
	}
	if store.Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Count())
	}
}

func TestStore_IssueGeneratorError(t *testing.T) {
	boom := errors.New("entropy exhausted")
	store := New(WithTokenGenerator(func() (string, error) { return "", boom }))

	_, _, err := store.Issue(context.Background(), "a")
	if !errors.Is(err, domain.ErrInternalServer) || !errors.Is(err, boom) {
		t.Fatalf("Issue error = %v", err)
	}
}

func TestStore_ConcurrentIssueUnique(t *testing.T) {
	store := New()
	ctx := context.Background()
	const n = 200

	var wg sync.WaitGroup
	results := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, _, err := store.Issue(ctx, "admin")
			if err != nil {
				t.Errorf("Issue: %v", err)
				return
			}
			results <- tok
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, n)
	for tok := range results {
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
	if len(seen) != n || store.Count() != n {
		t.Errorf("issued %d tokens, store holds %d, want %d", len(seen), store.Count(), n)
	}
}

func TestStore_ConcurrentValidateRevoke(t *testing.T) {
	store := New()
	ctx := context.Background()
	tok, _, _ := store.Issue(ctx, "admin")

	var wg sync.WaitGroup
	var mu sync.Mutex
	removed := 0
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Validate(ctx, tok)
		}()
		go func() {
			defer wg.Done()
			if store.Revoke(ctx, tok) {
				mu.Lock()
				removed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if removed != 1 {
		t.Errorf("Revoke reported removal %d times, want 1", removed)
	}
}

func TestStore_ResetAndTTL(t *testing.T) {
	store := New(WithTTL(0))
	if store.TTL() != DefaultTTL {
		t.Errorf("TTL = %v, want default %v", store.TTL(), DefaultTTL)
	}

	store.Issue(context.Background(), "a")
	store.Reset()
	if store.Count() != 0 {
		t.Errorf("Count after Reset = %d", store.Count())
	}
}
