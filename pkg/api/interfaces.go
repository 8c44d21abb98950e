package api

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/ssargent/reviewchain/pkg/codec"
	"github.com/ssargent/reviewchain/pkg/review"
)

// ReviewService defines the review operations the API exposes
type ReviewService interface {
	Submit(ctx context.Context, r codec.Review) (review.Receipt, error)
	Update(ctx context.Context, r codec.Review) (review.Receipt, error)
	Get(ctx context.Context, author solana.PublicKey, title string) (review.Entry, bool, error)
	List(ctx context.Context) (review.Listing, error)
	ListCached(ctx context.Context) (review.Listing, error)
}
