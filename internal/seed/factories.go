// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rnd *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("DemoPass123!"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: string(hashed),
		Bio:      gofakeit.Sentence(10),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateGroup constructs and persists a sample group with a unique slug.
func (f *Factory) CreateGroup(overrides ...func(*models.Group)) (*models.Group, error) {
	noun := gofakeit.NounConcrete()
	group := &models.Group{
		Title:       gofakeit.BookTitle(),
		Slug:        fmt.Sprintf("%s-%d", noun, gofakeit.Number(100, 99999)),
		Description: gofakeit.Paragraph(1, 2, 8, " "),
	}
	for _, override := range overrides {
		override(group)
	}

	if err := f.db.Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// CreatePost constructs and persists a sample post by the given author,
// spread over the last 90 days for a realistic timeline.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Text:     gofakeit.Paragraph(1, 3, 5, "\n"),
		AuthorID: author.ID,
	}

	daysBack := f.rnd.Intn(90)
	hoursBack := f.rnd.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a sample comment.
func (f *Factory) CreateComment(post *models.Post, author *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		Text:     gofakeit.Sentence(12),
		PostID:   post.ID,
		AuthorID: author.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateFollow subscribes user to author.
func (f *Factory) CreateFollow(user, author *models.User) error {
	follow := &models.Follow{UserID: user.ID, AuthorID: author.ID}
	return f.db.Where("user_id = ? AND author_id = ?", user.ID, author.ID).
		FirstOrCreate(follow).Error
}

// Options controls how much demo data Run generates.
type Options struct {
	Users  int
	Groups int
	Posts  int
}

// Run populates the database with a connected mesh of demo data.
func Run(db *gorm.DB, opts Options) error {
	if opts.Users <= 0 {
		opts.Users = 10
	}
	if opts.Groups <= 0 {
		opts.Groups = 4
	}
	if opts.Posts <= 0 {
		opts.Posts = 60
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, u)
	}

	groups := make([]*models.Group, 0, opts.Groups)
	for i := 0; i < opts.Groups; i++ {
		g, err := f.CreateGroup()
		if err != nil {
			return fmt.Errorf("seed group: %w", err)
		}
		groups = append(groups, g)
	}

	posts := make([]*models.Post, 0, opts.Posts)
	for i := 0; i < opts.Posts; i++ {
		author := users[f.rnd.Intn(len(users))]
		p, err := f.CreatePost(author, func(p *models.Post) {
			// Roughly two thirds of posts are filed under a group.
			if f.rnd.Intn(3) != 0 {
				p.GroupID = &groups[f.rnd.Intn(len(groups))].ID
			}
		})
		if err != nil {
			return fmt.Errorf("seed post: %w", err)
		}
		posts = append(posts, p)
	}

	for _, post := range posts {
		for i := 0; i < f.rnd.Intn(4); i++ {
			commenter := users[f.rnd.Intn(len(users))]
			if _, err := f.CreateComment(post, commenter); err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
		}
	}

	for _, user := range users {
		for i := 0; i < f.rnd.Intn(4); i++ {
			author := users[f.rnd.Intn(len(users))]
			if author.ID == user.ID {
				continue
			}
			if err := f.CreateFollow(user, author); err != nil {
				return fmt.Errorf("seed follow: %w", err)
			}
		}
	}

	return nil
}
