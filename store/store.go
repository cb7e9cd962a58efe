// Package store persists surviving keywords. The adapter is a thin
// chunking layer over a KeywordSink; failure policy lives here (abort,
// report partial count), retry policy deliberately does not.
package store

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/sumukeio/niche-miner/models"
)

// Source tags every row with where it was mined.
const Source = "taobao-like"

// KeywordRow is the destination schema for one mined keyword.
type KeywordRow struct {
	Keyword   string   `json:"keyword"`
	ProjectID string   `json:"project_id"`
	Source    string   `json:"source"`
	Status    string   `json:"status"`
	Sales     *int     `json:"sales,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	OriginURL string   `json:"origin_url,omitempty"`
	ShopName  string   `json:"shop_name,omitempty"`
	ShopType  string   `json:"shop_type,omitempty"`
}

// KeywordSink accepts batches of rows and reports how many it stored.
type KeywordSink interface {
	Insert(ctx context.Context, rows []KeywordRow) (int, error)
}

// Adapter chunks rows into fixed-size batches for a sink. A chunk
// failure aborts the remaining chunks; the partial count and the
// triggering error both surface.
type Adapter struct {
	sink      KeywordSink
	chunkSize int
}

// NewAdapter wraps sink. chunkSize values below 1 fall back to 100.
func NewAdapter(sink KeywordSink, chunkSize int) *Adapter {
	if chunkSize < 1 {
		chunkSize = 100
	}
	return &Adapter{sink: sink, chunkSize: chunkSize}
}

// Submit stores all rows chunk by chunk and returns the total inserted.
func (a *Adapter) Submit(ctx context.Context, rows []KeywordRow) (int, error) {
	inserted := 0
	for start := 0; start < len(rows); start += a.chunkSize {
		end := start + a.chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := a.sink.Insert(ctx, rows[start:end])
		inserted += n
		if err != nil {
			slog.Error("chunk insert failed, aborting remaining chunks",
				"inserted", inserted, "remaining", len(rows)-end, "error", err)
			return inserted, models.NewMineError(
				models.ErrCodeStoreFailed,
				models.ClassInternal,
				"keyword sink rejected a chunk",
				err,
			)
		}
		slog.Debug("chunk inserted", "rows", n, "total", inserted)
	}
	return inserted, nil
}

// FromProducts converts filtered product records into keyword rows,
// normalizing each title into its keyword form.
func FromProducts(records []*models.ProductRecord, projectID string) []KeywordRow {
	rows := make([]KeywordRow, 0, len(records))
	for _, r := range records {
		keyword := NormalizeTitle(r.Title)
		if keyword == "" {
			continue
		}
		rows = append(rows, KeywordRow{
			Keyword:   keyword,
			ProjectID: projectID,
			Source:    Source,
			Status:    "pending",
			Sales:     r.Sales,
			Price:     r.Price,
			OriginURL: r.DetailURL,
			ShopName:  r.ShopName,
			ShopType:  string(r.ShopType),
		})
	}
	return rows
}

// NormalizeTitle reduces a raw listing title to keyword text: CJK,
// latin letters, digits, and spaces survive; everything else (emoji,
// promo punctuation, currency marks) becomes a space, and runs of
// whitespace collapse.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.Is(unicode.Han, r),
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Discard is the dry-run sink: counts rows, stores nothing.
type Discard struct{}

func (Discard) Insert(_ context.Context, rows []KeywordRow) (int, error) {
	return len(rows), nil
}
