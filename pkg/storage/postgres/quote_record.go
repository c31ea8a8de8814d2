package postgres

import "time"

// QuoteRecord is one archived quote. QuoteID is unique: a repeated identifier
// overwrites the row, matching the in-memory update semantics.
//
// Postgres has no unsigned 64-bit type, so QuoteID holds the bit pattern of the quote
// id as a signed bigint. Use QuoteRecord.QuoteIdentifier to read it back.
type QuoteRecord struct {
	ID uint `gorm:"primaryKey"`

	QuoteID int64 `gorm:"not null;uniqueIndex:idx_quote_id"`

	Symbol string `gorm:"type:varchar(10);not null;index:idx_quote_symbol_side"`
	Side   string `gorm:"type:varchar(4);not null;index:idx_quote_symbol_side"`

	Price float64 `gorm:"type:numeric;not null"`
	Size  float64 `gorm:"type:numeric;not null"`

	Timestamp time.Time `gorm:"not null;index:idx_quote_timestamp"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (QuoteRecord) TableName() string {
	return "quote_record"
}

// QuoteIdentifier converts QuoteID back to the unsigned quote id.
func (r QuoteRecord) QuoteIdentifier() uint64 {
	return uint64(r.QuoteID)
}
