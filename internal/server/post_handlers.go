package server

import (
	"encoding/json"

	"inkwell/internal/forms"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// postPage is the rendered context of a paginated post listing.
type postPage struct {
	Page  pagination.Window `json:"page"`
	Posts []models.Post     `json:"posts"`
}

// ListPosts handles GET /. The rendered page is cached for indexCacheTTL
// under the requested page number; writes elsewhere do not invalidate it.
func (s *Server) ListPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	cacheKey := "p" + c.Query("page", "1")

	if body, ok := s.pageCache.Get(ctx, cacheKey); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}

	count, err := s.postRepo.CountAll(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	window := paginate(c, count)

	posts, err := s.postRepo.ListAll(ctx, window.Limit(), window.Offset())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	body, err := json.Marshal(postPage{Page: window, Posts: posts})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	s.pageCache.Set(ctx, cacheKey, body, indexCacheTTL)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// ListGroupPosts handles GET /group/:slug
func (s *Server) ListGroupPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	slug := c.Params("slug")

	group, err := s.groupRepo.FindBySlug(ctx, slug)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if group == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Group", slug))
	}

	count, err := s.postRepo.CountByGroup(ctx, group.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	window := paginate(c, count)

	posts, err := s.postRepo.ListByGroup(ctx, group.ID, window.Limit(), window.Offset())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"group": group,
		"page":  window,
		"posts": posts,
	})
}

// Profile handles GET /profile/:username
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.Context()
	username := c.Params("username")

	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if author == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", username))
	}

	// Known defect, preserved deliberately: authenticated viewers are always
	// reported as not following. Only anonymous viewers reach the
	// subscription check, which can never match them. See DESIGN.md.
	following := false
	viewerID, authenticated := middleware.CurrentUserID(c)
	if !authenticated {
		followers, err := s.followRepo.CountFollowers(ctx, author.ID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if followers > 0 {
			following, err = s.followRepo.Exists(ctx, viewerID, author.ID)
			if err != nil {
				return models.RespondWithError(c, fiber.StatusInternalServerError, err)
			}
		}
	}

	count, err := s.postRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	window := paginate(c, count)

	posts, err := s.postRepo.ListByAuthor(ctx, author.ID, window.Limit(), window.Offset())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"author":     author,
		"following":  following,
		"post_count": count,
		"page":       window,
		"posts":      posts,
	})
}

// PostDetail handles GET /posts/:id
func (s *Server) PostDetail(c *fiber.Ctx) error {
	ctx := c.Context()
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return respondLookupError(c, err)
	}

	postCount, err := s.postRepo.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Comment threads are rendered in full, newest first.
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"post":       post,
		"post_count": postCount,
		"form":       fiber.Map{"text": ""},
		"comments":   comments,
	})
}

// NewPost handles GET /create: the empty creation form plus the selectable
// groups.
func (s *Server) NewPost(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"form":   fiber.Map{"text": "", "group": ""},
		"groups": groups,
	})
}

// CreatePost handles POST /create. A valid submission persists a post owned
// by the caller and redirects to their profile; an invalid one re-renders the
// form with field errors and a 200 status.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()

	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	form := postFormFromRequest(c)
	fieldErrs, err := form.Validate(ctx, s.groupRepo.Exists)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if fieldErrs != nil {
		return c.JSON(formBody(form, fieldErrs, false))
	}

	imageURL, err := s.saveImage(ctx, form.Image)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	post := &models.Post{AuthorID: user.ID, ImageURL: imageURL}
	form.Apply(post)

	if err := s.postRepo.Create(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Redirect("/profile/"+user.Username, fiber.StatusFound)
}

// EditPost handles GET and POST /posts/:id/edit. Only the post's author may
// edit; anyone else is silently redirected to the post detail view. The
// author and publication timestamp never change.
func (s *Server) EditPost(c *fiber.Ctx) error {
	ctx := c.Context()
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return respondLookupError(c, err)
	}

	detailPath := "/posts/" + c.Params("id")

	userID, _ := middleware.CurrentUserID(c)
	if post.AuthorID != userID {
		// Soft denial: no error surfaced, nothing modified.
		return c.Redirect(detailPath, fiber.StatusFound)
	}

	if c.Method() == fiber.MethodGet {
		return c.JSON(editFormBody(post))
	}

	form := postFormFromRequest(c)
	fieldErrs, err := form.Validate(ctx, s.groupRepo.Exists)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if fieldErrs != nil {
		return c.JSON(formBody(form, fieldErrs, true))
	}

	imageURL, err := s.saveImage(ctx, form.Image)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	form.Apply(post)
	if imageURL != "" {
		post.ImageURL = imageURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Redirect(detailPath, fiber.StatusFound)
}

// AddComment handles POST /posts/:id/comment. Valid submissions attach a
// comment by the caller; invalid ones are dropped without feedback. Either
// way the caller is redirected to the post detail view.
func (s *Server) AddComment(c *fiber.Ctx) error {
	ctx := c.Context()
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return respondLookupError(c, err)
	}

	userID, _ := middleware.CurrentUserID(c)

	form := &forms.CommentForm{Text: c.FormValue("text")}
	if form.Validate() == nil {
		comment := &models.Comment{
			Text:     form.Text,
			PostID:   post.ID,
			AuthorID: userID,
		}
		if err := s.commentRepo.Create(ctx, comment); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	return c.Redirect("/posts/"+c.Params("id"), fiber.StatusFound)
}
