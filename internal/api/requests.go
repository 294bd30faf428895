// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// recommendationRequest is the validated query-parameter surface of the
// recommendations endpoint.
type recommendationRequest struct {
	UserID   string `validate:"required,min=1,max=128"`
	Topic    string `validate:"required,min=2,max=64"`
	Language string `validate:"required,min=2,max=32"`
}

// parseRecommendationRequest reads and validates the query parameters.
func parseRecommendationRequest(r *http.Request, validate *validator.Validate) (*recommendationRequest, error) {
	q := r.URL.Query()
	req := &recommendationRequest{
		UserID:   q.Get("userId"),
		Topic:    q.Get("topic"),
		Language: q.Get("language"),
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if ok := errors.As(err, &verrs); ok && len(verrs) > 0 {
			f := verrs[0]
			return nil, fmt.Errorf("invalid parameter %s: failed %s constraint", paramName(f.Field()), f.Tag())
		}
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return req, nil
}

// paramName maps struct field names back to their query parameter names.
func paramName(field string) string {
	switch field {
	case "UserID":
		return "userId"
	case "Topic":
		return "topic"
	case "Language":
		return "language"
	default:
		return field
	}
}
