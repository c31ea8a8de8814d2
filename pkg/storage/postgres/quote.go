package postgres

import (
	"context"
	"fmt"
	"time"

	"quotemaker/pkg/quote"

	"gorm.io/gorm/clause"
)

// InsertQuote upserts record keyed by QuoteID.
func (p *PostgresClient) InsertQuote(ctx context.Context, record *QuoteRecord) error {
	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "quote_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"symbol", "side", "price", "size", "timestamp"}),
	}).Create(record)

	return tx.Error
}

func (p *PostgresClient) GetQuote(ctx context.Context, quoteID uint64) (*QuoteRecord, error) {
	var rec QuoteRecord
	err := p.DB.WithContext(ctx).
		Where("quote_id = ?", int64(quoteID)).
		First(&rec).Error

	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CountQuotes returns how many archived rows exist for symbol and side.
func (p *PostgresClient) CountQuotes(ctx context.Context, symbol quote.Symbol, side quote.Side) (int64, error) {
	var n int64
	err := p.DB.WithContext(ctx).
		Model(&QuoteRecord{}).
		Where("symbol = ? AND side = ?", symbol.String(), side.String()).
		Count(&n).Error
	return n, err
}

func (p *PostgresClient) DeleteOldQuotes(ctx context.Context, before time.Time) error {
	return p.DB.WithContext(ctx).
		Where("timestamp < ?", before).
		Delete(&QuoteRecord{}).Error
}

// ToQuoteRecord converts a quote into a QuoteRecord for DB insertion.
func ToQuoteRecord(q quote.Quote) (*QuoteRecord, error) {
	if !q.Symbol.IsValid() || !q.Side.IsValid() {
		return nil, fmt.Errorf("invalid quote key %s", q.Key())
	}

	return &QuoteRecord{
		QuoteID:   int64(q.ID),
		Symbol:    q.Symbol.String(),
		Side:      q.Side.String(),
		Price:     q.Price,
		Size:      q.Size,
		Timestamp: time.Unix(q.Timestamp, 0).UTC(),
	}, nil
}

// Archive is a stream sink writing every received quote to Postgres.
type Archive struct {
	client  *PostgresClient
	timeout time.Duration
}

func NewArchive(client *PostgresClient, timeout time.Duration) *Archive {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Archive{client: client, timeout: timeout}
}

func (a *Archive) Name() string { return "postgres" }

func (a *Archive) Handle(ctx context.Context, q quote.Quote) error {
	rec, err := ToQuoteRecord(q)
	if err != nil {
		return err
	}

	dbCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.client.InsertQuote(dbCtx, rec)
}
