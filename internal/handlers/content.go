// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"codeberg.org/vinayvp/portfolio/internal/cms"
	"codeberg.org/vinayvp/portfolio/internal/i18n"
)

// UpdateResponse confirms a content change.
type UpdateResponse struct {
	Data    any    `json:"data,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Content returns the whole portfolio content.
func (h *Handlers) Content(c echo.Context) error {
	content, err := h.content.Content(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, content)
}

// Blogs lists posts, newest first. ?tag= filters by tag, ?q= searches.
func (h *Handlers) Blogs(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return jsonError(c, http.StatusBadRequest, "bad-limit")
		}
		limit = n
	}

	var (
		blogs []cms.Blog
		err   error
	)
	switch {
	case c.QueryParam("tag") != "":
		blogs, err = h.content.BlogsByTag(ctx, c.QueryParam("tag"))
	case c.QueryParam("q") != "":
		blogs, err = h.content.SearchBlogs(ctx, c.QueryParam("q"))
	default:
		blogs, err = h.content.RecentBlogs(ctx, limit)
	}
	if err != nil {
		return err
	}
	if limit > 0 && len(blogs) > limit {
		blogs = blogs[:limit]
	}
	return c.JSON(http.StatusOK, blogs)
}

// Blog returns a single post.
func (h *Handlers) Blog(c echo.Context) error {
	blog, err := h.content.BlogBySlug(c.Request().Context(), c.Param("slug"))
	if errors.Is(err, cms.ErrBlogNotFound) {
		return jsonError(c, http.StatusNotFound, "blog-not-found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, blog)
}

// Tags lists the distinct blog tags.
func (h *Handlers) Tags(c echo.Context) error {
	tags, err := h.content.Tags(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

// UpdateProfile merges the posted profile into the stored one.
func (h *Handlers) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	var p cms.Profile
	if err := c.Bind(&p); err != nil {
		return jsonError(c, http.StatusBadRequest, "profile-invalid")
	}

	updated, err := h.content.UpdateProfile(ctx, p)
	if err != nil {
		return err
	}

	h.publish("profile")

	return c.JSON(http.StatusOK, UpdateResponse{
		Data:    updated,
		Status:  "profile-updated",
		Message: i18n.T(ctx, "status_profile_updated"),
	})
}

// ReplaceSection replaces a whole content list with the posted JSON array.
func (h *Handlers) ReplaceSection(c echo.Context) error {
	ctx := c.Request().Context()

	section, err := cms.ParseSection(c.Param("section"))
	if err != nil {
		return jsonError(c, http.StatusNotFound, "unknown-section")
	}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}

	err = h.content.ReplaceSection(ctx, section, raw)
	if errors.Is(err, cms.ErrInvalidSection) {
		return jsonError(c, http.StatusUnprocessableEntity, section.InvalidReason())
	}
	if err != nil {
		return err
	}

	h.publish(string(section))

	return c.JSON(http.StatusOK, UpdateResponse{
		Status:  section.UpdatedStatus(),
		Message: statusMessage(ctx, section.UpdatedStatus()),
	})
}
