package api

import (
	"github.com/ssargent/reviewchain/pkg/codec"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ReviewRequest is the body of a submit or update request
type ReviewRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Rating      uint8  `json:"rating"`
	Location    string `json:"location"`
}

// Review converts the request into a codec review.
func (r ReviewRequest) Review() codec.Review {
	return codec.Review{
		Title:       r.Title,
		Description: r.Description,
		Rating:      r.Rating,
		Location:    r.Location,
	}
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind string
	Port int
	// APIKey guards the write endpoints. Empty disables the check.
	APIKey string
}
