// Package forms validates and binds post and comment submissions.
package forms

import (
	"context"
	"mime/multipart"
	"strconv"
	"strings"

	"inkwell/internal/models"
)

// Field-level validation messages.
const (
	MsgRequired     = "Fill in this field."
	MsgInvalidGroup = "Select a valid group."
)

// FieldErrors maps field names to validation messages.
type FieldErrors map[string]string

// GroupExistsFunc reports whether a group with the given ID exists.
type GroupExistsFunc func(ctx context.Context, id uint) (bool, error)

// PostForm carries a post submission: required text, an optional group
// selection and an optional image upload. Author and publication timestamp
// are never set by the form; the caller assigns them before persisting.
type PostForm struct {
	Text     string                `json:"text"`
	GroupRaw string                `json:"group"`
	Image    *multipart.FileHeader `json:"-"`

	// GroupID is populated by Validate when GroupRaw names an existing group.
	GroupID *uint `json:"-"`
}

// Validate checks field constraints and resolves the group selection.
// It returns field errors for the caller to re-render; the error return is
// reserved for datastore failures during the group lookup.
func (f *PostForm) Validate(ctx context.Context, groupExists GroupExistsFunc) (FieldErrors, error) {
	errs := FieldErrors{}

	if strings.TrimSpace(f.Text) == "" {
		errs["text"] = MsgRequired
	}

	if f.GroupRaw != "" {
		id, err := strconv.ParseUint(f.GroupRaw, 10, 32)
		if err != nil {
			errs["group"] = MsgInvalidGroup
		} else {
			exists, lookupErr := groupExists(ctx, uint(id))
			if lookupErr != nil {
				return nil, lookupErr
			}
			if !exists {
				errs["group"] = MsgInvalidGroup
			} else {
				gid := uint(id)
				f.GroupID = &gid
			}
		}
	}

	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}

// Apply copies the validated fields onto a post record. Only text and group
// are written; the image URL is assigned by the caller after upload.
func (f *PostForm) Apply(post *models.Post) {
	post.Text = f.Text
	post.GroupID = f.GroupID
}

// CommentForm carries a comment submission: required text only. Author and
// post are assigned by the caller.
type CommentForm struct {
	Text string `json:"text"`
}

// Validate checks the required text field.
func (f *CommentForm) Validate() FieldErrors {
	if strings.TrimSpace(f.Text) == "" {
		return FieldErrors{"text": MsgRequired}
	}
	return nil
}
