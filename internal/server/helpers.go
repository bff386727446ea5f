package server

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"

	"inkwell/internal/forms"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts the :id route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// respondLookupError maps a repository lookup failure to a response whose
// status agrees with the error's code: 404 for a missing record, 500 for
// anything else.
func respondLookupError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
		status = fiber.StatusNotFound
	}
	return models.RespondWithError(c, status, err)
}

// currentUser loads the authenticated caller's record. Guarded routes
// guarantee the userID local is set.
func (s *Server) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return nil, models.NewUnauthorizedError("Authorization required")
	}
	return s.userRepo.GetByID(c.Context(), userID)
}

// postFormFromRequest binds a post submission from form fields. The image
// part is optional and its absence is not an error.
func postFormFromRequest(c *fiber.Ctx) *forms.PostForm {
	form := &forms.PostForm{
		Text:     c.FormValue("text"),
		GroupRaw: c.FormValue("group"),
	}
	if fh, err := c.FormFile("image"); err == nil {
		form.Image = fh
	}
	return form
}

// formBody is the 200 re-render of a failed submission: the submitted values
// plus field-level messages.
func formBody(form *forms.PostForm, errs forms.FieldErrors, isEdit bool) fiber.Map {
	body := fiber.Map{
		"form": fiber.Map{
			"text":  form.Text,
			"group": form.GroupRaw,
		},
		"errors": errs,
	}
	if isEdit {
		body["is_edit"] = true
	}
	return body
}

// editFormBody is the GET rendering of the edit form, pre-filled with the
// post's current fields.
func editFormBody(post *models.Post) fiber.Map {
	group := ""
	if post.GroupID != nil {
		group = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	return fiber.Map{
		"post": post,
		"form": fiber.Map{
			"text":  post.Text,
			"group": group,
		},
		"is_edit": true,
	}
}

// saveImage uploads an optional image part and returns its URL. When no
// object store is configured the image is dropped and the post is saved
// without one.
func (s *Server) saveImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh == nil || s.images == nil {
		return "", nil
	}

	src, err := fh.Open()
	if err != nil {
		observability.ImageUploads.WithLabelValues("error").Inc()
		return "", models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	url, err := s.images.Save(ctx, fh.Filename, src, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		observability.ImageUploads.WithLabelValues("error").Inc()
		return "", models.NewInternalError(err)
	}
	observability.ImageUploads.WithLabelValues("ok").Inc()
	return url, nil
}

// paginate computes the clamped window for the requested page.
func paginate(c *fiber.Ctx, count int64) pagination.Window {
	return pagination.Paginate(pagination.ParsePage(c.Query("page")), count)
}
