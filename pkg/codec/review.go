package codec

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// AccountSize is the account length the review program allocates for every
// review. Encoded records must fit in it.
const AccountSize = 1000

const (
	tagSize    = 1 // variant or initialized flag
	lenSize    = 4 // string length prefix
	ratingSize = 1
)

// minAccountLen is the shortest valid account payload: flag, three empty
// strings and the rating.
const minAccountLen = tagSize + 3*lenSize + ratingSize

// Variant selects the program instruction.
type Variant uint8

const (
	// VariantAddReview creates a review account.
	VariantAddReview Variant = 0
	// VariantUpdateReview rewrites an existing review account.
	VariantUpdateReview Variant = 1
)

func (v Variant) String() string {
	switch v {
	case VariantAddReview:
		return "add"
	case VariantUpdateReview:
		return "update"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

var (
	// ErrCapacityExceeded is returned when a record does not fit in AccountSize bytes.
	ErrCapacityExceeded = errors.New("record exceeds account capacity")
	// ErrMalformedAccountData marks account bytes that do not parse as a review.
	ErrMalformedAccountData = errors.New("malformed account data")
	// ErrNoAccountData marks a missing account. It is a normal outcome.
	ErrNoAccountData = errors.New("no account data")
)

// Review is a restaurant review as stored by the program.
// Values are copied on every call; the codec never retains them.
type Review struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Rating      uint8  `json:"rating"`
	Location    string `json:"location"`
}

// Size returns the exact encoded length of the review, including the leading
// variant or initialized byte.
func (r Review) Size() int {
	return tagSize +
		lenSize + len(r.Title) +
		lenSize + len(r.Description) +
		ratingSize +
		lenSize + len(r.Location)
}

// ReviewCodec handles serialization and deserialization of reviews
type ReviewCodec struct {
	logger zerolog.Logger
}

// NewReviewCodec creates a codec that reports decode failures to logger.
func NewReviewCodec(logger zerolog.Logger) *ReviewCodec {
	return &ReviewCodec{logger: logger.With().Str("component", "codec").Logger()}
}

// EncodeSubmission serializes a review as an add-review instruction.
func (c *ReviewCodec) EncodeSubmission(r Review) ([]byte, error) {
	return c.EncodeInstruction(VariantAddReview, r)
}

// EncodeInstruction serializes a review as instruction data for the given variant.
// Format: [Variant(1)][Title][Description][Rating(1)][Location]
func (c *ReviewCodec) EncodeInstruction(v Variant, r Review) ([]byte, error) {
	return encode(uint8(v), r)
}

// EncodeAccount serializes a review in the stored account shape.
// Format: [Initialized(1)][Title][Description][Rating(1)][Location]
func (c *ReviewCodec) EncodeAccount(r Review, initialized bool) ([]byte, error) {
	var flag uint8
	if initialized {
		flag = 1
	}
	return encode(flag, r)
}

func encode(tag uint8, r Review) ([]byte, error) {
	w := &spanWriter{buf: make([]byte, AccountSize)}

	w.putUint8(tag)
	w.putString("title", r.Title)
	w.putString("description", r.Description)
	w.putUint8(r.Rating)
	w.putString("location", r.Location)

	if w.err != nil {
		return nil, w.err
	}
	return w.span(), nil
}

// DecodeAccount deserializes stored account bytes. It never fails the caller:
// missing data and malformed data are both reported through the result, and
// malformed data is logged along with the offending bytes.
func (c *ReviewCodec) DecodeAccount(data []byte) DecodeResult {
	if len(data) == 0 {
		return DecodeResult{err: ErrNoAccountData}
	}

	review, initialized, err := decodeAccount(data)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Int("len", len(data)).
			Str("data", hex.EncodeToString(data)).
			Msg("failed to decode review account")
		return DecodeResult{err: err}
	}

	return DecodeResult{review: review, initialized: initialized, ok: true}
}

// Deserialize returns the review stored in data, or false when data is
// missing or malformed.
func (c *ReviewCodec) Deserialize(data []byte) (Review, bool) {
	return c.DecodeAccount(data).Review()
}

func decodeAccount(data []byte) (Review, bool, error) {
	if len(data) < minAccountLen {
		return Review{}, false, fmt.Errorf("%w: data too short for review: %d < %d",
			ErrMalformedAccountData, len(data), minAccountLen)
	}

	rd := &spanReader{data: data}

	flag := rd.readUint8("initialized")
	if rd.err == nil && flag > 1 {
		rd.err = fmt.Errorf("%w: invalid initialized flag %d", ErrMalformedAccountData, flag)
	}

	var r Review
	r.Title = rd.readString("title")
	r.Description = rd.readString("description")
	r.Rating = rd.readUint8("rating")
	r.Location = rd.readString("location")

	if rd.err != nil {
		return Review{}, false, rd.err
	}
	return r, flag == 1, nil
}

// spanWriter writes into a fixed scratch buffer and tracks the written span.
// The first failure sticks; later writes are no-ops.
type spanWriter struct {
	buf []byte
	off int
	err error
}

func (w *spanWriter) remaining() int {
	return len(w.buf) - w.off
}

func (w *spanWriter) putUint8(v uint8) {
	if w.err != nil {
		return
	}
	if w.remaining() < 1 {
		w.err = fmt.Errorf("%w: no room for byte at offset %d", ErrCapacityExceeded, w.off)
		return
	}
	w.buf[w.off] = v
	w.off++
}

func (w *spanWriter) putString(field, s string) {
	if w.err != nil {
		return
	}
	if lenSize+len(s) > w.remaining() {
		w.err = fmt.Errorf("%w: %s needs %d bytes at offset %d, %d available",
			ErrCapacityExceeded, field, lenSize+len(s), w.off, w.remaining())
		return
	}
	binary.LittleEndian.PutUint32(w.buf[w.off:], uint32(len(s)))
	w.off += lenSize
	w.off += copy(w.buf[w.off:], s)
}

// span returns the meaningful prefix of the scratch buffer.
func (w *spanWriter) span() []byte {
	return w.buf[:w.off:w.off]
}

// spanReader reads fields in order. The first failure sticks.
type spanReader struct {
	data []byte
	off  int
	err  error
}

func (r *spanReader) readUint8(field string) uint8 {
	if r.err != nil {
		return 0
	}
	if len(r.data)-r.off < 1 {
		r.err = fmt.Errorf("%w: %s truncated at offset %d", ErrMalformedAccountData, field, r.off)
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *spanReader) readString(field string) string {
	if r.err != nil {
		return ""
	}
	if len(r.data)-r.off < lenSize {
		r.err = fmt.Errorf("%w: %s length prefix truncated at offset %d", ErrMalformedAccountData, field, r.off)
		return ""
	}
	n := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += lenSize

	if uint64(n) > uint64(len(r.data)-r.off) {
		r.err = fmt.Errorf("%w: %s length %d exceeds remaining %d bytes",
			ErrMalformedAccountData, field, n, len(r.data)-r.off)
		return ""
	}
	b := r.data[r.off : r.off+int(n)]
	if !utf8.Valid(b) {
		r.err = fmt.Errorf("%w: %s is not valid UTF-8", ErrMalformedAccountData, field)
		return ""
	}
	r.off += int(n)
	return string(b)
}
