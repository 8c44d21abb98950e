package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ssargent/reviewchain/pkg/codec"
	"github.com/ssargent/reviewchain/pkg/review"
)

// printReview displays a single decoded review
func printReview(w io.Writer, r codec.Review, initialized bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "Title:\t%s\n", r.Title)
	fmt.Fprintf(tw, "Rating:\t%d\n", r.Rating)
	if r.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", r.Description)
	}
	if r.Location != "" {
		fmt.Fprintf(tw, "Location:\t%s\n", r.Location)
	}
	fmt.Fprintf(tw, "Initialized:\t%t\n", initialized)
}

// printListing displays a listing pass as a table or as JSON
func printListing(w io.Writer, listing review.Listing, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	case "", "table":
	default:
		return fmt.Errorf("unknown format %q (want table or json)", format)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDRESS\tTITLE\tRATING\tLOCATION")
	for _, e := range listing.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Address, e.Review.Title, e.Review.Rating, e.Review.Location)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	source := "live"
	if listing.Cached {
		source = "cached"
	}
	fmt.Fprintf(w, "\n%d reviews, %d skipped (%s", len(listing.Entries), listing.Skipped, source)
	if listing.PassID != "" {
		fmt.Fprintf(w, ", pass %s at %s", listing.PassID, listing.FetchedAt.Format(time.RFC3339))
	}
	fmt.Fprintln(w, ")")
	return nil
}

// printReceipt displays the result of a submission
func printReceipt(w io.Writer, receipt review.Receipt) {
	fmt.Fprintf(w, "Signature: %s\n", receipt.Signature)
	fmt.Fprintf(w, "Address:   %s\n", receipt.Address)
}
