package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowIndex handles GET /follow: the caller's personalized feed of posts
// by authors they follow.
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := middleware.CurrentUserID(c)

	count, err := s.postRepo.CountByFollowedAuthors(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	window := paginate(c, count)

	posts, err := s.postRepo.ListByFollowedAuthors(ctx, userID, window.Limit(), window.Offset())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"page":  window,
		"posts": posts,
	})
}

// ProfileFollow handles GET /profile/:username/follow. Subscribing is
// idempotent; a self-follow attempt is silently ignored.
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := middleware.CurrentUserID(c)

	author, err := s.userRepo.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if author == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", c.Params("username")))
	}

	if author.ID != userID {
		if err := s.followRepo.GetOrCreate(ctx, userID, author.ID); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	return c.Redirect("/follow", fiber.StatusFound)
}

// ProfileUnfollow handles GET /profile/:username/unfollow. Removing a
// subscription that does not exist is a no-op.
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := middleware.CurrentUserID(c)

	author, err := s.userRepo.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if author == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", c.Params("username")))
	}

	if err := s.followRepo.Delete(ctx, userID, author.ID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Redirect("/follow", fiber.StatusFound)
}
