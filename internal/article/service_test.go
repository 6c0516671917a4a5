// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package article

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/auth"
	"github.com/tomtom215/inkwell/internal/config"
	"github.com/tomtom215/inkwell/internal/database"
	"github.com/tomtom215/inkwell/internal/models"
	"github.com/tomtom215/inkwell/internal/resource"
	"github.com/tomtom215/inkwell/internal/testinfra"
	"github.com/tomtom215/inkwell/internal/visitor"
)

var testAdmin = &auth.Admin{ExpiresAt: testinfra.Epoch.Add(time.Hour)}

type fixture struct {
	svc      *Service
	db       *database.DB
	visitors *visitor.Manager
	mock     *clock.Mock
	cfg      *config.Config
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Article: config.ArticleConfig{
			AccessTTL:           time.Hour,
			FullTextSearchLimit: 100,
			TitleMaxSize:        32,
			ExcerptMaxSize:      16,
			ContentMaxSize:      4096,
			UnlockAttempts:      3,
			UnlockWindow:        time.Minute,
		},
		Resource: config.ResourceConfig{
			UploadDir:         t.TempDir(),
			UploadFileMaxSize: 1 << 20,
		},
		Pagination: config.PaginationConfig{
			MaxPage:      100,
			AllowedSizes: []uint64{2, 10},
			DefaultSize:  10,
			NavLen:       5,
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testinfra.NewDB(t)
	c, mock := testinfra.NewCache(t)
	cfg := testConfig(t)
	visitors := visitor.NewManager(c, cfg.Article.AccessTTL)
	resources := resource.NewService(db, &cfg.Resource, mock)
	return &fixture{
		svc:      NewService(db, resources, visitors, cfg, mock),
		db:       db,
		visitors: visitors,
		mock:     mock,
		cfg:      cfg,
	}
}

func (f *fixture) create(t *testing.T, title string, status models.ArticleStatus, password *string) *Details {
	t.Helper()
	d, err := f.svc.Create(context.Background(), CreateRequest{
		Title:           title,
		MarkdownContent: "# " + title + "\n\nBody of **" + title + "** with a few words.",
		Password:        password,
		Status:          status,
	})
	if err != nil {
		t.Fatalf("Create(%q) error = %v", title, err)
	}
	return d
}

func ptr[T any](v T) *T { return &v }

func guest(id string) visitor.Identity {
	return visitor.Identity{VisitorID: id}
}

func uploadMeta(name string, body []byte) resource.UploadMeta {
	sum := sha256.Sum256(body)
	return resource.UploadMeta{
		Name:     name,
		Size:     uint64(len(body)),
		MimeType: "text/plain",
		SHA256:   hex.EncodeToString(sum[:]),
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.create(t, "Hello", models.ArticleStatusPublished, nil)
	if d.Excerpt != "Hello Body of He" {
		t.Errorf("Excerpt = %q", d.Excerpt)
	}
	if d.PublishedAt == nil || *d.PublishedAt != testinfra.Epoch.Unix() {
		t.Errorf("PublishedAt = %v, want %d", d.PublishedAt, testinfra.Epoch.Unix())
	}

	stats, err := f.db.FindArticleStats(ctx, d.ArticleID)
	if err != nil || stats == nil {
		t.Fatalf("FindArticleStats() = %v, %v", stats, err)
	}
	if stats.PV != 0 || stats.UV != 0 {
		t.Errorf("new stats = %+v, want zero counters", stats)
	}

	draft := f.create(t, "Draft", models.ArticleStatusDraft, nil)
	if draft.PublishedAt != nil {
		t.Errorf("draft PublishedAt = %v, want nil", *draft.PublishedAt)
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   CreateRequest
		field string
	}{
		{"blank title", CreateRequest{Title: "   ", Status: models.ArticleStatusDraft}, "Title"},
		{"long title", CreateRequest{Title: strings.Repeat("t", 33), Status: models.ArticleStatusDraft}, "Title"},
		{"long content", CreateRequest{Title: "ok", MarkdownContent: strings.Repeat("x", 4097), Status: models.ArticleStatusDraft}, "MarkdownContent"},
		{"bad status", CreateRequest{Title: "ok", Status: "archived"}, "Status"},
		{"short password", CreateRequest{Title: "ok", Password: ptr("abc"), Status: models.ArticleStatusDraft}, "Password"},
		{"symbol password", CreateRequest{Title: "ok", Password: ptr("abc-def"), Status: models.ArticleStatusDraft}, "Password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.req)
			if !apperr.IsKind(err, apperr.BadRequest) {
				t.Fatalf("Create() error = %v, want BadRequest", err)
			}
			if got := apperr.From(err).Field; got != tt.field {
				t.Errorf("Field = %q, want %q", got, tt.field)
			}
		})
	}

	// A title at the limit counts runes, not bytes.
	if _, err := f.svc.Create(ctx, CreateRequest{Title: strings.Repeat("文", 32), Status: models.ArticleStatusDraft}); err != nil {
		t.Errorf("Create() with 32 multi-byte runes error = %v", err)
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.create(t, "Original", models.ArticleStatusDraft, nil)
	original, _ := f.db.FindArticle(ctx, d.ArticleID)

	f.mock.Add(time.Hour)
	err := f.svc.Update(ctx, UpdateRequest{
		ArticleID:       d.ArticleID,
		Title:           "Renamed",
		MarkdownContent: original.MarkdownContent,
		Status:          models.ArticleStatusPublished,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ := f.db.FindArticle(ctx, d.ArticleID)
	if got.Title != "Renamed" || got.Excerpt != original.Excerpt {
		t.Errorf("after title-only update: title %q excerpt %q", got.Title, got.Excerpt)
	}
	firstPublish := testinfra.Epoch.Add(time.Hour)
	if got.PublishedAt == nil || !got.PublishedAt.Equal(firstPublish) {
		t.Fatalf("PublishedAt = %v, want %v", got.PublishedAt, firstPublish)
	}
	if !got.UpdatedAt.Equal(firstPublish) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, firstPublish)
	}

	// Unpublish and republish later: the first publication time sticks.
	f.mock.Add(time.Hour)
	for _, status := range []models.ArticleStatus{models.ArticleStatusDraft, models.ArticleStatusPublished} {
		err := f.svc.Update(ctx, UpdateRequest{
			ArticleID:       d.ArticleID,
			Title:           "Renamed",
			MarkdownContent: "Completely new text",
			Status:          status,
		})
		if err != nil {
			t.Fatalf("Update(%s) error = %v", status, err)
		}
	}
	got, _ = f.db.FindArticle(ctx, d.ArticleID)
	if !got.PublishedAt.Equal(firstPublish) {
		t.Errorf("PublishedAt moved to %v", got.PublishedAt)
	}
	if got.PlainContent != "Completely new text" || got.Excerpt != "Completely new t" {
		t.Errorf("derived text not recomputed: plain %q excerpt %q", got.PlainContent, got.Excerpt)
	}

	err = f.svc.Update(ctx, UpdateRequest{ArticleID: "missing", Title: "x", Status: models.ArticleStatusDraft})
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("Update(missing) error = %v, want NotFound", err)
	}
}

func TestGet_CountsVisitorViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.create(t, "Counted", models.ArticleStatusPublished, nil)

	steps := []struct {
		who    visitor.Identity
		admin  *auth.Admin
		wantPV uint64
		wantUV uint64
	}{
		// Counters are read before the current view is recorded.
		{guest("v1"), nil, 0, 0},
		{guest("v1"), nil, 1, 1},
		{guest("v2"), nil, 2, 1},
		{guest("v2"), testAdmin, 3, 2},
		{guest("v3"), nil, 3, 2},
	}
	for i, s := range steps {
		got, err := f.svc.Get(ctx, s.admin, s.who, d.ArticleID, false)
		if err != nil || got == nil {
			t.Fatalf("step %d: Get() = %v, %v", i, got, err)
		}
		if got.PV != s.wantPV || got.UV != s.wantUV {
			t.Errorf("step %d: pv/uv = %d/%d, want %d/%d", i, got.PV, got.UV, s.wantPV, s.wantUV)
		}
	}
}

func TestGet_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := f.create(t, "Draft", models.ArticleStatusDraft, nil)

	tests := []struct {
		name         string
		id           string
		admin        *auth.Admin
		ignoreStatus bool
		wantVisible  bool
	}{
		{"missing", "nope", nil, false, false},
		{"missing for admin", "nope", testAdmin, false, false},
		{"draft hidden from visitor", draft.ArticleID, nil, false, false},
		{"draft visible to admin", draft.ArticleID, testAdmin, false, true},
		{"draft visible when status ignored", draft.ArticleID, nil, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Get(ctx, tt.admin, guest("v1"), tt.id, tt.ignoreStatus)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if (got != nil) != tt.wantVisible {
				t.Errorf("Get() visible = %v, want %v", got != nil, tt.wantVisible)
			}
		})
	}
}

func TestGet_MissingStatsIsInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.create(t, "Orphan", models.ArticleStatusPublished, nil)
	if err := f.db.DeleteArticleStats(ctx, d.ArticleID); err != nil {
		t.Fatalf("DeleteArticleStats() error = %v", err)
	}

	_, err := f.svc.Get(ctx, nil, guest("v1"), d.ArticleID, false)
	if err == nil || apperr.From(err).Kind != apperr.Internal {
		t.Errorf("Get() error = %v, want Internal", err)
	}
}

func TestPasswordProtection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.create(t, "Secret", models.ArticleStatusPublished, ptr("opensesame1"))
	v := guest("v1")

	_, err := f.svc.Get(ctx, nil, v, d.ArticleID, false)
	var appErr *apperr.Error
	if !apperr.IsKind(err, apperr.ArticleLocked) {
		t.Fatalf("Get() before unlock error = %v, want ArticleLocked", err)
	}
	if appErr = apperr.From(err); appErr.ArticleID != d.ArticleID {
		t.Errorf("locked ArticleID = %q, want %q", appErr.ArticleID, d.ArticleID)
	}

	err = f.svc.Unlock(ctx, v, UnlockRequest{ArticleID: d.ArticleID, Password: "wrongpass1"})
	if !apperr.IsKind(err, apperr.BadRequest) {
		t.Fatalf("Unlock(wrong) error = %v, want BadRequest", err)
	}
	if err := f.svc.Unlock(ctx, v, UnlockRequest{ArticleID: d.ArticleID, Password: "opensesame1"}); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	got, err := f.svc.Get(ctx, nil, v, d.ArticleID, false)
	if err != nil || got == nil {
		t.Fatalf("Get() after unlock = %v, %v", got, err)
	}
	if got.Password != nil {
		t.Error("visitor details expose the password")
	}
	if !got.NeedPassword {
		t.Error("NeedPassword = false")
	}

	// The permit is per visitor and expires.
	if _, err := f.svc.Get(ctx, nil, guest("v2"), d.ArticleID, false); !apperr.IsKind(err, apperr.ArticleLocked) {
		t.Errorf("other visitor Get() error = %v, want ArticleLocked", err)
	}
	f.mock.Add(f.cfg.Article.AccessTTL + time.Second)
	if _, err := f.svc.Get(ctx, nil, v, d.ArticleID, false); !apperr.IsKind(err, apperr.ArticleLocked) {
		t.Errorf("Get() after permit expiry error = %v, want ArticleLocked", err)
	}

	admin, err := f.svc.Get(ctx, testAdmin, guest("v9"), d.ArticleID, false)
	if err != nil || admin == nil {
		t.Fatalf("admin Get() = %v, %v", admin, err)
	}
	if admin.Password == nil || *admin.Password != "opensesame1" {
		t.Errorf("admin Password = %v", admin.Password)
	}
}

func TestUnlock_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	open := f.create(t, "Open", models.ArticleStatusPublished, nil)

	tests := []struct {
		name string
		who  string
		req  UnlockRequest
		want apperr.Kind
	}{
		{"missing article", "a", UnlockRequest{ArticleID: "nope", Password: "abcdef1"}, apperr.NotFound},
		{"no password needed", "b", UnlockRequest{ArticleID: open.ArticleID, Password: "abcdef1"}, apperr.BadRequest},
		{"invalid password format", "c", UnlockRequest{ArticleID: open.ArticleID, Password: "a b"}, apperr.BadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.svc.Unlock(ctx, guest(tt.who), tt.req); !apperr.IsKind(err, tt.want) {
				t.Errorf("Unlock() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUnlock_Throttled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.create(t, "Secret", models.ArticleStatusPublished, ptr("opensesame1"))
	v := guest("brute")

	for i := 0; i < f.cfg.Article.UnlockAttempts; i++ {
		err := f.svc.Unlock(ctx, v, UnlockRequest{ArticleID: d.ArticleID, Password: "guess00" + string(rune('0'+i))})
		if !apperr.IsKind(err, apperr.BadRequest) {
			t.Fatalf("attempt %d error = %v, want BadRequest", i, err)
		}
	}
	// Even the right password is refused once throttled.
	err := f.svc.Unlock(ctx, v, UnlockRequest{ArticleID: d.ArticleID, Password: "opensesame1"})
	if !apperr.IsKind(err, apperr.TooManyRequests) {
		t.Fatalf("throttled Unlock() error = %v, want TooManyRequests", err)
	}

	f.mock.Add(f.cfg.Article.UnlockWindow)
	if err := f.svc.Unlock(ctx, v, UnlockRequest{ArticleID: d.ArticleID, Password: "opensesame1"}); err != nil {
		t.Errorf("Unlock() after the window error = %v", err)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, "Alpha", models.ArticleStatusPublished, nil)
	f.mock.Add(time.Minute)
	f.create(t, "Beta", models.ArticleStatusPublished, ptr("secret12"))
	f.mock.Add(time.Minute)
	f.create(t, "Gamma", models.ArticleStatusPublished, nil)
	f.create(t, "Delta", models.ArticleStatusDraft, nil)

	titles := func(r *SearchResult) []string {
		var out []string
		for _, item := range r.Data.Items {
			out = append(out, item.Title)
		}
		return out
	}

	tests := []struct {
		name  string
		admin *auth.Admin
		req   SearchRequest
		want  []string
	}{
		{"visitor sees published newest first", nil, SearchRequest{}, []string{"Gamma", "Beta", "Alpha"}},
		{"admin sees drafts first", testAdmin, SearchRequest{}, []string{"Delta", "Gamma", "Beta", "Alpha"}},
		{"admin status filter", testAdmin, SearchRequest{Status: ptr(models.ArticleStatusDraft)}, []string{"Delta"}},
		{"visitor status filter is ignored", nil, SearchRequest{Status: ptr(models.ArticleStatusDraft)}, []string{"Gamma", "Beta", "Alpha"}},
		{"visitor full text skips protected", nil, SearchRequest{FullText: "body"}, []string{"Gamma", "Alpha"}},
		{"admin full text includes protected", testAdmin, SearchRequest{FullText: "body"}, []string{"Delta", "Gamma", "Beta", "Alpha"}},
		{"full text is case insensitive", nil, SearchRequest{FullText: "  gAMMa "}, []string{"Gamma"}},
		{"published range", nil, SearchRequest{
			PublishedAtGE: ptr(testinfra.Epoch.Add(time.Minute).Unix()),
			PublishedAtLT: ptr(testinfra.Epoch.Add(2 * time.Minute).Unix()),
		}, []string{"Beta"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Search(ctx, tt.admin, tt.req)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if g := titles(got); strings.Join(g, ",") != strings.Join(tt.want, ",") {
				t.Errorf("titles = %v, want %v", g, tt.want)
			}
			if got.Data.Total == nil || *got.Data.Total != uint64(len(tt.want)) {
				t.Errorf("Total = %v, want %d", got.Data.Total, len(tt.want))
			}
		})
	}
}

func TestSearch_Paging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, title := range []string{"One", "Two", "Three"} {
		f.create(t, title, models.ArticleStatusPublished, nil)
		f.mock.Add(time.Minute)
	}

	got, err := f.svc.Search(ctx, nil, SearchRequest{Page: ptr[uint64](2), Size: ptr[uint64](2)})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got.Data.Count != 1 || got.Data.Items[0].Title != "One" {
		t.Errorf("page 2 = %+v", got.Data.Items)
	}
	if *got.Data.Total != 3 {
		t.Errorf("Total = %d, want 3", *got.Data.Total)
	}
	nav := got.Navigation
	if nav.Current != 2 || nav.Tail == nil || *nav.Tail != 2 || nav.Next != nil || nav.Prev == nil || *nav.Prev != 1 {
		t.Errorf("Navigation = %+v", nav)
	}

	for _, req := range []SearchRequest{
		{Page: ptr[uint64](0)},
		{Page: ptr[uint64](100)},
		{Size: ptr[uint64](7)},
		{FullText: strings.Repeat("x", 201)},
	} {
		if _, err := f.svc.Search(ctx, nil, req); !apperr.IsKind(err, apperr.BadRequest) {
			t.Errorf("Search(%+v) error = %v, want BadRequest", req, err)
		}
	}
}

func TestLatest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "Old", models.ArticleStatusPublished, nil)
	f.mock.Add(time.Minute)
	f.create(t, "New", models.ArticleStatusPublished, nil)
	f.create(t, "Hidden", models.ArticleStatusDraft, nil)

	got, err := f.svc.Latest(ctx, 1)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "New" {
		t.Errorf("Latest(1) = %v", got)
	}
}

func TestAbout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.About(ctx, nil, guest("v1"))
	if err != nil || got != nil {
		t.Fatalf("About() unconfigured = %v, %v", got, err)
	}

	d := f.create(t, "About me", models.ArticleStatusDraft, nil)
	f.svc.cfg.AboutArticleID = d.ArticleID
	got, err = f.svc.About(ctx, nil, guest("v1"))
	if err != nil || got == nil || got.ArticleID != d.ArticleID {
		t.Errorf("About() = %v, %v", got, err)
	}
}

func TestAttachments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.create(t, "With files", models.ArticleStatusPublished, ptr("opensesame1"))
	other := f.create(t, "Other", models.ArticleStatusPublished, nil)

	body := []byte("attachment body")
	first, err := f.svc.UploadAttachment(ctx, d.ArticleID, uploadMeta("notes.txt", body), strings.NewReader(string(body)))
	if err != nil {
		t.Fatalf("UploadAttachment() error = %v", err)
	}
	if first.Name != "notes.txt" || first.Extension != "txt" || first.Size != uint64(len(body)) {
		t.Errorf("attachment = %+v", first)
	}

	f.mock.Add(time.Minute)
	second, err := f.svc.UploadAttachment(ctx, d.ArticleID, uploadMeta("later.txt", []byte("later")), strings.NewReader("later"))
	if err != nil {
		t.Fatalf("second UploadAttachment() error = %v", err)
	}

	if _, err := f.svc.UploadAttachment(ctx, "nope", uploadMeta("x.txt", body), strings.NewReader(string(body))); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("UploadAttachment(missing article) error = %v, want NotFound", err)
	}

	details, err := f.svc.Get(ctx, testAdmin, guest("v1"), d.ArticleID, false)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(details.Attachments) != 2 || details.Attachments[0].AttachmentID != second.AttachmentID {
		t.Errorf("attachments = %+v, want newest first", details.Attachments)
	}

	t.Run("download respects the password", func(t *testing.T) {
		v := guest("reader")
		if _, err := f.svc.DownloadAttachment(ctx, nil, v, d.ArticleID, first.AttachmentID); !apperr.IsKind(err, apperr.ArticleLocked) {
			t.Fatalf("DownloadAttachment() locked error = %v", err)
		}
		if err := f.svc.Unlock(ctx, v, UnlockRequest{ArticleID: d.ArticleID, Password: "opensesame1"}); err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}
		res, err := f.svc.DownloadAttachment(ctx, nil, v, d.ArticleID, first.AttachmentID)
		if err != nil || res == nil {
			t.Fatalf("DownloadAttachment() = %v, %v", res, err)
		}
		if res.IsPublic {
			t.Error("attachment resource is public")
		}
		data, err := os.ReadFile(res.Path)
		if err != nil || string(data) != string(body) {
			t.Errorf("stored bytes = %q, %v", data, err)
		}
	})

	t.Run("download with the wrong article is not found", func(t *testing.T) {
		res, err := f.svc.DownloadAttachment(ctx, testAdmin, guest("v1"), other.ArticleID, first.AttachmentID)
		if err != nil || res != nil {
			t.Errorf("DownloadAttachment() = %v, %v; want nil, nil", res, err)
		}
	})

	t.Run("remove checks ownership", func(t *testing.T) {
		err := f.svc.RemoveAttachment(ctx, other.ArticleID, first.AttachmentID)
		if !apperr.IsKind(err, apperr.BadRequest) {
			t.Errorf("RemoveAttachment(wrong article) error = %v, want BadRequest", err)
		}
		if err := f.svc.RemoveAttachment(ctx, d.ArticleID, "nope"); err != nil {
			t.Errorf("RemoveAttachment(missing) error = %v", err)
		}
	})

	t.Run("remove releases the resource", func(t *testing.T) {
		att, _ := f.db.FindAttachment(ctx, first.AttachmentID)
		if err := f.svc.RemoveAttachment(ctx, d.ArticleID, first.AttachmentID); err != nil {
			t.Fatalf("RemoveAttachment() error = %v", err)
		}
		if got, _ := f.db.FindResource(ctx, att.ResourceID); got != nil {
			t.Error("resource row survived attachment removal")
		}
	})

	t.Run("removing the article removes the rest", func(t *testing.T) {
		att, _ := f.db.FindAttachment(ctx, second.AttachmentID)
		stored, _ := f.db.FindResource(ctx, att.ResourceID)

		if err := f.svc.Remove(ctx, d.ArticleID); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if got, _ := f.db.FindArticle(ctx, d.ArticleID); got != nil {
			t.Error("article survived Remove")
		}
		if got, _ := f.db.FindArticleStats(ctx, d.ArticleID); got != nil {
			t.Error("stats survived Remove")
		}
		if got, _ := f.db.FindAttachment(ctx, second.AttachmentID); got != nil {
			t.Error("attachment survived Remove")
		}
		if _, err := os.Stat(stored.Path); !os.IsNotExist(err) {
			t.Errorf("attachment file still on disk: %v", err)
		}
		if err := f.svc.Remove(ctx, d.ArticleID); err != nil {
			t.Errorf("second Remove() error = %v", err)
		}
	})
}
