package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ssargent/reviewchain/pkg/codec"
	"github.com/ssargent/reviewchain/pkg/review"
)

// maxRequestBody bounds review request bodies; a review never encodes to
// more than one account.
const maxRequestBody = 16 * codec.AccountSize

// Server holds the API server state
type Server struct {
	reviews ReviewService
	config  ServerConfig
	metrics *Metrics
	logger  zerolog.Logger
}

// NewServer creates a new API server
func NewServer(reviews ReviewService, config ServerConfig, metrics *Metrics, logger zerolog.Logger) *Server {
	return &Server{
		reviews: reviews,
		config:  config,
		metrics: metrics,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListReviews godoc
//
//	@Summary		List reviews
//	@Description	Decode every account owned by the review program. Accounts that do not decode are skipped.
//	@Tags			reviews
//	@Produce		json
//	@Param			cached	query		bool	false	"Read the last cached pass instead of the cluster"
//	@Success		200		{object}	review.Listing
//	@Failure		502		{object}	map[string]string
//	@Router			/reviews [get]
func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	cached, _ := strconv.ParseBool(r.URL.Query().Get("cached"))

	var (
		listing review.Listing
		err     error
	)
	if cached {
		listing, err = s.reviews.ListCached(r.Context())
	} else {
		listing, err = s.reviews.List(r.Context())
	}
	s.metrics.RecordReviewOperation("list", err == nil)
	if err != nil {
		s.sendServiceError(w, "list", err)
		return
	}

	s.metrics.RecordListing(len(listing.Entries), listing.Skipped)
	sendSuccess(w, listing)
}

// handleGetReview godoc
//
//	@Summary		Get one review
//	@Tags			reviews
//	@Produce		json
//	@Param			author	path		string	true	"Author wallet address (base58)"
//	@Param			title	path		string	true	"Review title"
//	@Success		200		{object}	review.Entry
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/reviews/{author}/{title} [get]
func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	author, err := solana.PublicKeyFromBase58(chi.URLParam(r, "author"))
	if err != nil {
		sendError(w, "Invalid author address", http.StatusBadRequest)
		return
	}
	title, err := url.PathUnescape(chi.URLParam(r, "title"))
	if err != nil || title == "" {
		sendError(w, "Invalid title", http.StatusBadRequest)
		return
	}

	entry, ok, err := s.reviews.Get(r.Context(), author, title)
	s.metrics.RecordReviewOperation("get", err == nil)
	if err != nil {
		s.sendServiceError(w, "get", err)
		return
	}
	if !ok {
		sendError(w, "Review not found", http.StatusNotFound)
		return
	}

	sendSuccess(w, entry)
}

// handleSubmitReview godoc
//
//	@Summary		Submit a review
//	@Description	Encode the review and send an add-review transaction signed by the configured wallet
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ReviewRequest	true	"Review"
//	@Success		201		{object}	review.Receipt
//	@Failure		400		{object}	map[string]string
//	@Failure		412		{object}	map[string]string
//	@Failure		502		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/reviews [post]
func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	s.handleSend(w, r, "submit", s.reviews.Submit)
}

// handleUpdateReview godoc
//
//	@Summary		Update a review
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ReviewRequest	true	"Review"
//	@Success		201		{object}	review.Receipt
//	@Security		ApiKeyAuth
//	@Router			/reviews [put]
func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	s.handleSend(w, r, "update", s.reviews.Update)
}

type sendFunc func(ctx context.Context, r codec.Review) (review.Receipt, error)

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request, operation string, send sendFunc) {
	var req ReviewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.metrics.RecordReviewOperation(operation, false)
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	receipt, err := send(r.Context(), req.Review())
	s.metrics.RecordReviewOperation(operation, err == nil)
	if err != nil {
		s.sendServiceError(w, operation, err)
		return
	}

	sendJSON(w, http.StatusCreated, receipt)
}

// sendServiceError maps review service errors to HTTP statuses
func (s *Server) sendServiceError(w http.ResponseWriter, operation string, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("operation", operation).Msg("review operation failed")
	}
	sendError(w, err.Error(), status)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, codec.ErrCapacityExceeded), errors.Is(err, review.ErrInvalidReview):
		return http.StatusBadRequest
	case errors.Is(err, review.ErrPreconditionFailed):
		return http.StatusPreconditionFailed
	case errors.Is(err, review.ErrNoCache):
		return http.StatusNotFound
	case errors.Is(err, review.ErrTransportFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
