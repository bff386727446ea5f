package repository

import (
	"context"
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "pw"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestGroupDelete_DetachesPostsBeforeRemoval(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	groups := NewGroupRepository(db)

	author := seedUser(t, db, "grouped")
	group := &models.Group{Title: "Dispatches", Slug: "dispatches"}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("seed group: %v", err)
	}
	post := &models.Post{Text: "from the field", AuthorID: author.ID, GroupID: &group.ID}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	if err := groups.Delete(context.Background(), group.ID); err != nil {
		t.Fatalf("delete group: %v", err)
	}

	var reloaded models.Post
	if err := db.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("post should survive group deletion: %v", err)
	}
	if reloaded.GroupID != nil {
		t.Fatalf("expected detached post, got group %v", *reloaded.GroupID)
	}

	var count int64
	db.Model(&models.Group{}).Where("id = ?", group.ID).Count(&count)
	if count != 0 {
		t.Fatalf("group still present after delete")
	}
}

func TestPostDelete_RemovesComments(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	posts := NewPostRepository(db)

	author := seedUser(t, db, "deleter")
	commenter := seedUser(t, db, "bystander")
	post := &models.Post{Text: "short lived", AuthorID: author.ID}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	keeper := &models.Post{Text: "kept", AuthorID: author.ID}
	if err := db.Create(keeper).Error; err != nil {
		t.Fatalf("seed keeper post: %v", err)
	}
	for _, target := range []uint{post.ID, keeper.ID} {
		c := &models.Comment{Text: "note", PostID: target, AuthorID: commenter.ID}
		if err := db.Create(c).Error; err != nil {
			t.Fatalf("seed comment: %v", err)
		}
	}

	if err := posts.Delete(context.Background(), post.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}

	var orphaned int64
	db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&orphaned)
	if orphaned != 0 {
		t.Fatalf("expected comments removed with post, got %d", orphaned)
	}
	var kept int64
	db.Model(&models.Comment{}).Where("post_id = ?", keeper.ID).Count(&kept)
	if kept != 1 {
		t.Fatalf("unrelated comment removed")
	}
}

func TestPostUpdate_OnlyTouchesEditableFields(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	posts := NewPostRepository(db)

	author := seedUser(t, db, "careful")
	post := &models.Post{Text: "before", AuthorID: author.ID}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	createdAt := post.CreatedAt

	post.Text = "after"
	if err := posts.Update(context.Background(), post); err != nil {
		t.Fatalf("update post: %v", err)
	}

	var reloaded models.Post
	if err := db.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if reloaded.Text != "after" {
		t.Fatalf("expected updated text, got %q", reloaded.Text)
	}
	if !reloaded.CreatedAt.Equal(createdAt) {
		t.Fatalf("publication timestamp changed on update")
	}
}

func TestFollowGetOrCreate_SecondCallIsNoOp(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	follows := NewFollowRepository(db)

	reader := seedUser(t, db, "subscriber")
	author := seedUser(t, db, "published")

	for i := 0; i < 2; i++ {
		if err := follows.GetOrCreate(context.Background(), reader.ID, author.ID); err != nil {
			t.Fatalf("follow attempt %d: %v", i+1, err)
		}
	}

	var count int64
	db.Model(&models.Follow{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one follow row, got %d", count)
	}

	exists, err := follows.Exists(context.Background(), reader.ID, author.ID)
	if err != nil || !exists {
		t.Fatalf("expected subscription to exist: exists=%v err=%v", exists, err)
	}
}

func TestListByFollowedAuthors_JoinsOnSubscriptions(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	posts := NewPostRepository(db)

	reader := seedUser(t, db, "feedreader")
	followed := seedUser(t, db, "followedauthor")
	ignored := seedUser(t, db, "ignoredauthor")

	if err := db.Create(&models.Follow{UserID: reader.ID, AuthorID: followed.ID}).Error; err != nil {
		t.Fatalf("seed follow: %v", err)
	}
	for _, p := range []*models.Post{
		{Text: "visible", AuthorID: followed.ID},
		{Text: "hidden", AuthorID: ignored.ID},
	} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed post: %v", err)
		}
	}

	feed, err := posts.ListByFollowedAuthors(context.Background(), reader.ID, 10, 0)
	if err != nil {
		t.Fatalf("list feed: %v", err)
	}
	if len(feed) != 1 || feed[0].Text != "visible" {
		t.Fatalf("unexpected feed contents: %+v", feed)
	}

	count, err := posts.CountByFollowedAuthors(context.Background(), reader.ID)
	if err != nil || count != 1 {
		t.Fatalf("expected feed count 1, got %d (err=%v)", count, err)
	}
}

func TestGetByID_MissingPostReturnsNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	posts := NewPostRepository(db)

	_, err := posts.GetByID(context.Background(), 42)
	if err == nil {
		t.Fatalf("expected error for missing post")
	}
	appErr, ok := err.(*models.AppError)
	if !ok || appErr.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND app error, got %v", err)
	}
}
