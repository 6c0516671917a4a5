// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/inkwell/internal/config"
	"github.com/tomtom215/inkwell/internal/database"
)

type session struct {
	User string `json:"user"`
	Note string `json:"note"`
}

func (session) Kind() string      { return "session" }
func (s session) CacheID() string { return s.User }

type grant struct {
	User  string `json:"user"`
	Topic string `json:"topic"`
}

func (grant) Kind() string      { return "grant" }
func (g grant) CacheID() string { return g.User + ":" + g.Topic }

var testDBSemaphore = make(chan struct{}, 1)

func newDBStorage(t *testing.T) Storage {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{
		Path:         database.MemoryPath,
		MaxMemory:    "256MB",
		Threads:      1,
		MaxOpenConns: 8,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewDBStorage(db)
}

func newBadgerStorage(t *testing.T) Storage {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("Failed to open in-memory badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerStorage(db)
}

// forEachBackend runs fn against both storage backends with a fresh mock
// clock set to a fixed instant.
func forEachBackend(t *testing.T, fn func(t *testing.T, c *Cache, mock *clock.Mock)) {
	backends := []struct {
		name string
		open func(t *testing.T) Storage
	}{
		{"duckdb", newDBStorage},
		{"badger", newBadgerStorage},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			mock := clock.NewMock()
			mock.Set(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
			fn(t, New(b.open(t), mock), mock)
		})
	}
}

func TestSetGet_RoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Cache, mock *clock.Mock) {
		ctx := context.Background()
		payload := session{User: "alice", Note: "hello \"world\""}

		ok, err := Set(ctx, c, payload, time.Hour, Overwrite)
		if err != nil || !ok {
			t.Fatalf("Set() = %v, %v; want true, nil", ok, err)
		}

		rec, err := Get[session](ctx, c, "alice")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if rec == nil {
			t.Fatal("Get() = nil, want record")
		}
		if rec.Data != payload {
			t.Errorf("Data = %+v, want %+v", rec.Data, payload)
		}
		if rec.Kind != "session" || rec.ID != "alice" {
			t.Errorf("key = %s/%s, want session/alice", rec.Kind, rec.ID)
		}
		now := mock.Now().Unix()
		if rec.CreatedAt != now || rec.ExpiresAt != now+3600 {
			t.Errorf("timestamps = (%d, %d), want (%d, %d)", rec.CreatedAt, rec.ExpiresAt, now, now+3600)
		}
	})
}

func TestGet_KindsAreSeparate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Cache, _ *clock.Mock) {
		ctx := context.Background()
		if _, err := Set(ctx, c, session{User: "bob:news"}, time.Hour, Overwrite); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		rec, err := Get[grant](ctx, c, "bob:news")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if rec != nil {
			t.Errorf("Get[grant] = %+v, want nil", rec)
		}
	})
}

func TestExpiry(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Cache, mock *clock.Mock) {
		ctx := context.Background()
		if _, err := Set(ctx, c, session{User: "carol"}, 10*time.Second, Overwrite); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		// Active through the expiry second itself.
		mock.Add(10 * time.Second)
		if ok, err := Exists[session](ctx, c, "carol"); err != nil || !ok {
			t.Fatalf("Exists() at expiry = %v, %v; want true", ok, err)
		}

		mock.Add(time.Second)
		if ok, err := Exists[session](ctx, c, "carol"); err != nil || ok {
			t.Fatalf("Exists() after expiry = %v, %v; want false", ok, err)
		}
		rec, err := Get[session](ctx, c, "carol")
		if err != nil || rec != nil {
			t.Errorf("Get() after expiry = %+v, %v; want nil", rec, err)
		}
		if _, ok, err := GetTTL[session](ctx, c, "carol"); err != nil || ok {
			t.Errorf("GetTTL() after expiry ok = %v, err = %v", ok, err)
		}
	})
}

func TestGetTTL(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Cache, mock *clock.Mock) {
		ctx := context.Background()
		if _, err := Set(ctx, c, session{User: "dave"}, time.Minute, Overwrite); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		mock.Add(15 * time.Second)
		ttl, ok, err := GetTTL[session](ctx, c, "dave")
		if err != nil || !ok {
			t.Fatalf("GetTTL() = %v, %v, %v", ttl, ok, err)
		}
		if ttl != 45*time.Second {
			t.Errorf("GetTTL() = %v, want 45s", ttl)
		}

		// Expiring this very second has no remaining lifetime.
		mock.Add(45 * time.Second)
		if _, ok, _ := GetTTL[session](ctx, c, "dave"); ok {
			t.Error("GetTTL() at expiry second ok = true, want false")
		}

		if _, ok, err := GetTTL[session](ctx, c, "nobody"); err != nil || ok {
			t.Errorf("GetTTL(missing) ok = %v, err = %v", ok, err)
		}
	})
}

func TestSetModes(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Cache, mock *clock.Mock) {
		ctx := context.Background()

		ok, err := Set(ctx, c, session{User: "erin", Note: "v1"}, time.Minute, OnlyIfExists)
		if err != nil || ok {
			t.Fatalf("OnlyIfExists on missing = %v, %v; want false", ok, err)
		}

		ok, err = Set(ctx, c, session{User: "erin", Note: "v1"}, time.Minute, OnlyIfNotExists)
		if err != nil || !ok {
			t.Fatalf("OnlyIfNotExists on missing = %v, %v; want true", ok, err)
		}

		ok, err = Set(ctx, c, session{User: "erin", Note: "v2"}, time.Minute, OnlyIfNotExists)
		if err != nil || ok {
			t.Fatalf("OnlyIfNotExists on active = %v, %v; want false", ok, err)
		}
		assertNote(t, c, "erin", "v1")

		ok, err = Set(ctx, c, session{User: "erin", Note: "v3"}, time.Minute, OnlyIfExists)
		if err != nil || !ok {
			t.Fatalf("OnlyIfExists on active = %v, %v; want true", ok, err)
		}
		assertNote(t, c, "erin", "v3")

		ok, err = Set(ctx, c, session{User: "erin", Note: "v4"}, time.Minute, Overwrite)
		if err != nil || !ok {
			t.Fatalf("Overwrite = %v, %v; want true", ok, err)
		}
		assertNote(t, c, "erin", "v4")

		// An expired row is replaced by OnlyIfNotExists and ignored by OnlyIfExists.
		mock.Add(2 * time.Minute)
		ok, err = Set(ctx, c, session{User: "erin", Note: "v5"}, time.Minute, OnlyIfExists)
		if err != nil || ok {
			t.Fatalf("OnlyIfExists on expired = %v, %v; want false", ok, err)
		}
		ok, err = Set(ctx, c, session{User: "erin", Note: "v6"}, time.Minute, OnlyIfNotExists)
		if err != nil || !ok {
			t.Fatalf("OnlyIfNotExists on expired = %v, %v; want true", ok, err)
		}
		assertNote(t, c, "erin", "v6")
	})
}

func assertNote(t *testing.T, c *Cache, user, want string) {
	t.Helper()
	rec, err := Get[session](context.Background(), c, user)
	if err != nil {
		t.Fatalf("Get(%s) error = %v", user, err)
	}
	if rec == nil {
		t.Fatalf("Get(%s) = nil", user)
	}
	if rec.Data.Note != want {
		t.Errorf("Note = %q, want %q", rec.Data.Note, want)
	}
}

func TestSetTTL(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Cache, mock *clock.Mock) {
		ctx := context.Background()

		if ok, err := SetTTL[session](ctx, c, "frank", time.Hour); err != nil || ok {
			t.Fatalf("SetTTL(missing) = %v, %v; want false", ok, err)
		}

		if _, err := Set(ctx, c, session{User: "frank"}, 10*time.Second, Overwrite); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		mock.Add(5 * time.Second)
		if ok, err := SetTTL[session](ctx, c, "frank", time.Hour); err != nil || !ok {
			t.Fatalf("SetTTL(active) = %v, %v; want true", ok, err)
		}
		ttl, ok, err := GetTTL[session](ctx, c, "frank")
		if err != nil || !ok || ttl != time.Hour {
			t.Errorf("GetTTL() = %v, %v, %v; want 1h", ttl, ok, err)
		}

		mock.Add(2 * time.Hour)
		if ok, err := SetTTL[session](ctx, c, "frank", time.Hour); err != nil || ok {
			t.Errorf("SetTTL(expired) = %v, %v; want false", ok, err)
		}
	})
}

func TestRemoveAndBatchRemove(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Cache, _ *clock.Mock) {
		ctx := context.Background()
		grants := []grant{
			{User: "gina", Topic: "a"},
			{User: "gina", Topic: "b"},
			{User: "gina_x", Topic: "a"},
			{User: "ginax", Topic: "a"},
			{User: "hank", Topic: "a"},
		}
		for _, g := range grants {
			if _, err := Set(ctx, c, g, time.Hour, Overwrite); err != nil {
				t.Fatalf("Set(%v) error = %v", g, err)
			}
		}
		// Same id under another kind must survive.
		if _, err := Set(ctx, c, session{User: "gina:a"}, time.Hour, Overwrite); err != nil {
			t.Fatalf("Set(session) error = %v", err)
		}

		if err := BatchRemove[grant](ctx, c, "gina:"); err != nil {
			t.Fatalf("BatchRemove() error = %v", err)
		}
		// "_" must match literally, not as a single-char wildcard.
		if err := BatchRemove[grant](ctx, c, "gina_"); err != nil {
			t.Fatalf("BatchRemove() error = %v", err)
		}

		want := map[string]bool{
			"gina:a":   false,
			"gina:b":   false,
			"gina_x:a": false,
			"ginax:a":  true,
			"hank:a":   true,
		}
		for id, exists := range want {
			got, err := Exists[grant](ctx, c, id)
			if err != nil {
				t.Fatalf("Exists(%s) error = %v", id, err)
			}
			if got != exists {
				t.Errorf("Exists(%s) = %v, want %v", id, got, exists)
			}
		}
		if ok, _ := Exists[session](ctx, c, "gina:a"); !ok {
			t.Error("session gina:a was removed by grant batch remove")
		}

		if err := Remove[grant](ctx, c, "hank:a"); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if ok, _ := Exists[grant](ctx, c, "hank:a"); ok {
			t.Error("hank:a still exists after Remove")
		}
		if err := Remove[grant](ctx, c, "missing:a"); err != nil {
			t.Errorf("Remove(missing) error = %v", err)
		}
	})
}

func TestRemoveExpired(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Cache, mock *clock.Mock) {
		ctx := context.Background()
		for i, user := range []string{"u1", "u2", "u3"} {
			ttl := time.Duration(i+1) * time.Minute
			if _, err := Set(ctx, c, session{User: user}, ttl, Overwrite); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
		}
		if _, err := Set(ctx, c, session{User: "keeper"}, time.Hour, Overwrite); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		mock.Add(10 * time.Minute)

		n, err := c.RemoveExpired(ctx, 2)
		if err != nil {
			t.Fatalf("RemoveExpired() error = %v", err)
		}
		if n != 2 {
			t.Errorf("first RemoveExpired() = %d, want 2 (limit)", n)
		}
		n, err = c.RemoveExpired(ctx, 100)
		if err != nil {
			t.Fatalf("RemoveExpired() error = %v", err)
		}
		if n != 1 {
			t.Errorf("second RemoveExpired() = %d, want 1", n)
		}
		if ok, _ := Exists[session](ctx, c, "keeper"); !ok {
			t.Error("active record removed by RemoveExpired")
		}
	})
}

func TestOnlyIfNotExists_ConcurrentWriters(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Cache, mock *clock.Mock) {
		ctx := context.Background()
		const writers = 16

		rounds := []struct {
			name  string
			setup func(t *testing.T, user string)
		}{
			{"fresh key", func(*testing.T, string) {}},
			{"expired key", func(t *testing.T, user string) {
				if _, err := Set(ctx, c, session{User: user, Note: "stale"}, time.Second, Overwrite); err != nil {
					t.Fatalf("Set() error = %v", err)
				}
				mock.Add(2 * time.Second)
			}},
		}

		for _, round := range rounds {
			for i := 0; i < 5; i++ {
				user := fmt.Sprintf("race-%s-%d", round.name, i)
				round.setup(t, user)

				var (
					wg   sync.WaitGroup
					wins atomic.Int32
					errs = make(chan error, writers)
				)
				start := make(chan struct{})
				for w := 0; w < writers; w++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						<-start
						ok, err := Set(ctx, c, session{User: user}, time.Hour, OnlyIfNotExists)
						if err != nil {
							errs <- err
							return
						}
						if ok {
							wins.Add(1)
						}
					}()
				}
				close(start)
				wg.Wait()
				close(errs)

				for err := range errs {
					t.Errorf("%s: Set() error = %v", round.name, err)
				}
				if got := wins.Load(); got != 1 {
					t.Errorf("%s round %d: winners = %d, want exactly 1", round.name, i, got)
				}
			}
		}
	})
}

func TestExpiry_Saturates(t *testing.T) {
	if got := expiry(100, time.Duration(1<<63-1)); got != 100+int64(time.Duration(1<<63-1)/time.Second) {
		t.Errorf("expiry() = %d", got)
	}
	if got := expiry(1<<63-10, time.Hour); got != 1<<63-1 {
		t.Errorf("expiry() near max = %d, want max int64", got)
	}
}

func TestSetMode_String(t *testing.T) {
	tests := []struct {
		mode SetMode
		want string
	}{
		{Overwrite, "overwrite"},
		{OnlyIfNotExists, "only_if_not_exists"},
		{OnlyIfExists, "only_if_exists"},
		{SetMode(9), "SetMode(9)"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestBadgerKeyLayout(t *testing.T) {
	if got := string(badgerKey("visitor", "abc")); got != "cache/visitor/abc" {
		t.Errorf("badgerKey() = %q", got)
	}
	if got := string(badgerKindPrefix("visitor")); got != "cache/visitor/" {
		t.Errorf("badgerKindPrefix() = %q", got)
	}
}
