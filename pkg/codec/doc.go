// Package codec provides serialization and deserialization of restaurant
// review records for the on-chain review program.
//
// The package implements the program's Borsh layout in two shapes that share
// one field payload: the instruction shape sent as transaction data, and the
// account shape the program stores in each review account.
//
// # Instruction Format
//
//	[Variant(1)][TitleLen(4)][Title][DescLen(4)][Description][Rating(1)][LocLen(4)][Location]
//
// # Account Format
//
//	[Initialized(1)][TitleLen(4)][Title][DescLen(4)][Description][Rating(1)][LocLen(4)][Location]
//
// Fields:
//   - Variant: instruction discriminator, 0 adds a review and 1 updates one
//   - Initialized: boolean flag (0 or 1) set by the program on creation
//   - *Len: 32-bit unsigned byte length of the following UTF-8 text (little-endian)
//   - Rating: unsigned byte; the program accepts 1 to 10 but the codec does not check
//
// The encoded size is: 1 + (4+len(title)) + (4+len(description)) + 1 + (4+len(location))
//
// Encoding works in a scratch buffer of AccountSize bytes, the account length
// the program allocates. Only the written prefix is returned. A record that
// does not fit fails with ErrCapacityExceeded.
//
// # Usage
//
//	c := codec.NewReviewCodec(logger)
//
//	data, err := c.EncodeSubmission(codec.Review{
//	    Title:       "Pizza Place",
//	    Description: "Great crust",
//	    Rating:      5,
//	    Location:    "Main St",
//	})
//	if err != nil {
//	    return err
//	}
//
//	res := c.DecodeAccount(accountData)
//	if review, ok := res.Review(); ok {
//	    fmt.Println(review.Title)
//	}
//
// # Error Handling
//
// Encoding fails loudly: the caller built the record, so a record that does
// not fit is returned as an error.
//
// Decoding fails softly: account bytes come from the ledger, and one bad
// account must not break a listing. DecodeAccount never returns an error
// value; it returns a DecodeResult whose Err reports ErrNoAccountData for
// missing input or wraps ErrMalformedAccountData. Malformed input is logged
// with the cause and the offending bytes.
//
// # Schema
//
// Only the four-field layout {title, description, rating, location} is
// supported. An earlier three-field layout {title, rating, description} is
// not decodable: the wire carries no version tag to tell them apart.
//
// The check only holds for unpadded data. Stored accounts are zero-padded to
// AccountSize and trailing bytes are accepted, so a padded account written
// with a location-less layout {title, description, rating} decodes with an
// empty Location. The zero padding reads as a zero length prefix and the two
// cases cannot be told apart.
//
// # Thread Safety
//
// ReviewCodec instances are safe for concurrent use. Every call allocates its
// own buffer.
package codec
