package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"inkwell/store"
)

// routeTarget says whether the admin edit route points at the blank "new
// post" form or at an existing post. It is decided once, when the slug
// parameter is parsed, instead of comparing against the sentinel downstream.
type routeTarget struct {
	isNew bool
	slug  string
}

func targetFromParam(param string) (routeTarget, error) {
	if param == "" {
		// The router guarantees the parameter; an empty value means a
		// misconfigured route, not user input.
		return routeTarget{}, echo.NewHTTPError(http.StatusInternalServerError, "slug route parameter is required")
	}
	if param == "new" {
		return routeTarget{isNew: true}, nil
	}

	return routeTarget{slug: param}, nil
}

type postView struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
}

type postListing struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type adminPost struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

type adminPostDetail struct {
	Post *adminPost `json:"post,omitempty"`
}

// postFormErrors is the per-field validation payload for the edit form. A nil
// field means the value was accepted.
type postFormErrors struct {
	Title    *string `json:"title"`
	Slug     *string `json:"slug"`
	Markdown *string `json:"markdown"`
}

func (e postFormErrors) any() bool {
	return e.Title != nil || e.Slug != nil || e.Markdown != nil
}

func validatePostForm(title, slug, markdown string) postFormErrors {
	var errs postFormErrors
	if title == "" {
		errs.Title = requiredMsg("Title")
	}
	if slug == "" {
		errs.Slug = requiredMsg("Slug")
	}
	if markdown == "" {
		errs.Markdown = requiredMsg("Markdown")
	}

	return errs
}

func requiredMsg(field string) *string {
	msg := field + " is required"
	return &msg
}

// GetPost is the public single-post view. The markdown source is rendered
// server side and withheld from the payload; only title and HTML go out.
func (h *Handler) GetPost(c echo.Context) error {
	slug := c.Param("slug")
	if slug == "" {
		return echo.NewHTTPError(http.StatusInternalServerError, "slug route parameter is required")
	}

	post, err := h.Posts.GetBySlug(c.Request().Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no post with slug %q", slug))
		}
		return err
	}

	return c.JSON(http.StatusOK, postView{
		Title: post.Title,
		HTML:  renderMarkdown(post.Markdown),
	})
}

func (h *Handler) AdminListPosts(c echo.Context) error {
	if _, err := h.adminSession(c); err != nil {
		return rejectUnauthorized(c)
	}

	all, err := h.Posts.ListAll(c.Request().Context())
	if err != nil {
		return err
	}

	listings := make([]postListing, 0, len(all))
	for _, l := range all {
		listings = append(listings, postListing{Slug: l.Slug, Title: l.Title})
	}

	return c.JSON(http.StatusOK, listings)
}

// AdminGetPost backs the edit form: an empty payload for the "new" target,
// otherwise the stored post including its markdown source.
func (h *Handler) AdminGetPost(c echo.Context) error {
	if _, err := h.adminSession(c); err != nil {
		return rejectUnauthorized(c)
	}

	target, err := targetFromParam(c.Param("slug"))
	if err != nil {
		return err
	}

	if target.isNew {
		return c.JSON(http.StatusOK, adminPostDetail{})
	}

	post, err := h.Posts.GetBySlug(c.Request().Context(), target.slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no post with slug %q", target.slug))
		}
		return err
	}

	return c.JSON(http.StatusOK, adminPostDetail{Post: &adminPost{
		Slug:     post.Slug,
		Title:    post.Title,
		Markdown: post.Markdown,
	}})
}

// AdminSubmitPost handles the edit form submission. The intent field selects
// the mutation; create and update share validation. Mutations complete before
// the redirect goes out.
func (h *Handler) AdminSubmitPost(c echo.Context) error {
	if _, err := h.adminSession(c); err != nil {
		return rejectUnauthorized(c)
	}

	target, err := targetFromParam(c.Param("slug"))
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	switch intent := c.FormValue("intent"); intent {
	case "delete":
		if target.isNew {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot delete an unsaved post")
		}
		if err := h.Posts.Delete(ctx, target.slug); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no post with slug %q", target.slug))
			}
			return err
		}
		return c.Redirect(http.StatusFound, "/posts/admin")

	case "create", "update":
		title := c.FormValue("title")
		slug := c.FormValue("slug")
		markdown := c.FormValue("markdown")

		if errs := validatePostForm(title, slug, markdown); errs.any() {
			// Not redirected, so the form can re-render inline errors.
			return c.JSON(http.StatusOK, errs)
		}

		if target.isNew {
			err = h.Posts.Create(ctx, title, slug, markdown)
		} else {
			err = h.Posts.Update(ctx, target.slug, title, slug, markdown)
		}
		switch {
		case errors.Is(err, store.ErrSlugExists):
			return echo.NewHTTPError(http.StatusConflict, fmt.Sprintf("a post with slug %q already exists", slug))
		case errors.Is(err, store.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no post with slug %q", target.slug))
		case err != nil:
			return err
		}

		return c.Redirect(http.StatusFound, "/posts/admin")

	default:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown intent %q", intent))
	}
}
