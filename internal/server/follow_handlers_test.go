package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"
)

func TestProfileFollow_IsIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	author := createTestUser(t, s.db, "essayist")
	reader := createTestUser(t, s.db, "reader1")

	app := newTestApp(s, reader.ID)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile/essayist/follow", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("expected 302, got %d", resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/follow" {
			t.Fatalf("unexpected redirect target %q", loc)
		}
	}

	var count int64
	s.db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", reader.ID, author.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single follow row, got %d", count)
	}
}

func TestProfileFollow_SelfFollowIgnored(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	user := createTestUser(t, s.db, "narcissus")

	app := newTestApp(s, user.ID)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile/narcissus/follow", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}

	var count int64
	s.db.Model(&models.Follow{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no follow rows, got %d", count)
	}
}

func TestProfileUnfollow_MissingSubscriptionIsNoOp(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	createTestUser(t, s.db, "quiet-author")
	reader := createTestUser(t, s.db, "reader2")

	app := newTestApp(s, reader.ID)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile/quiet-author/unfollow", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/follow" {
		t.Fatalf("unexpected redirect target %q", loc)
	}
}

func TestProfileFollow_UnknownAuthorReturns404(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	reader := createTestUser(t, s.db, "reader3")
	app := newTestApp(s, reader.ID)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile/ghost/follow", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestFollowIndex_OnlyFollowedAuthorsPosts(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	followed := createTestUser(t, s.db, "followed")
	stranger := createTestUser(t, s.db, "stranger")
	fan := createTestUser(t, s.db, "fan1")
	outsider := createTestUser(t, s.db, "outsider")

	createTestPost(t, s.db, followed, "for subscribers", nil)
	createTestPost(t, s.db, stranger, "for nobody in particular", nil)
	if err := s.db.Create(&models.Follow{UserID: fan.ID, AuthorID: followed.ID}).Error; err != nil {
		t.Fatalf("create follow: %v", err)
	}

	fanApp := newTestApp(s, fan.ID)
	resp, err := fanApp.Test(httptest.NewRequest(http.MethodGet, "/follow", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	posts, ok := body["posts"].([]any)
	if !ok || len(posts) != 1 {
		t.Fatalf("expected one feed post, got %v", body["posts"])
	}
	first := posts[0].(map[string]any)
	if first["text"] != "for subscribers" {
		t.Fatalf("unexpected feed post: %v", first)
	}

	outsiderApp := newTestApp(s, outsider.ID)
	resp2, err := outsiderApp.Test(httptest.NewRequest(http.MethodGet, "/follow", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp2.Body.Close() }()
	body2 := decodeBody(t, resp2)
	posts2, ok := body2["posts"].([]any)
	if !ok || len(posts2) != 0 {
		t.Fatalf("expected empty feed, got %v", body2["posts"])
	}
}
