package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/feed"
)

type labelsResponse struct {
	Labels []string `json:"labels"`
}

// Labels handles GET /api/labels and returns the sign set.
func Labels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, labelsResponse{Labels: feed.Labels})
}
