package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// nullText creates a pgtype.Text with empty string handling
func nullText(s *string) pgtype.Text {
	if s == nil || *s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// textPtr converts a pgtype.Text back to an optional string
func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// nullTimestamp creates a pgtype.Timestamptz from an optional time
func nullTimestamp(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// timestampPtr converts a pgtype.Timestamptz back to an optional time
func timestampPtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	ts := t.Time
	return &ts
}

// decimalToNumeric converts a decimal.Decimal to pgtype.Numeric
func decimalToNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	n := pgtype.Numeric{}
	if err := n.Scan(d.String()); err != nil {
		return n, fmt.Errorf("convert decimal: %w", err)
	}
	return n, nil
}

// numericToDecimal converts pgtype.Numeric to decimal.Decimal
func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	var dec decimal.Decimal
	if !n.Valid {
		return dec, nil
	}
	str, err := n.MarshalJSON()
	if err != nil {
		return dec, fmt.Errorf("marshal numeric: %w", err)
	}
	// Remove quotes from JSON string
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	return decimal.NewFromString(string(str))
}

// nullNumeric converts an optional decimal to pgtype.Numeric
func nullNumeric(d *decimal.Decimal) (pgtype.Numeric, error) {
	if d == nil {
		return pgtype.Numeric{Valid: false}, nil
	}
	return decimalToNumeric(*d)
}

// numericPtr converts a pgtype.Numeric back to an optional decimal
func numericPtr(n pgtype.Numeric) (*decimal.Decimal, error) {
	if !n.Valid {
		return nil, nil
	}
	d, err := numericToDecimal(n)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// marshalMap converts a string map to JSONB bytes, nil maps become {}
func marshalMap(m map[string]string) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal map: %w", err)
	}
	return b, nil
}

// unmarshalMap converts JSONB bytes back to a string map
func unmarshalMap(b []byte) (map[string]string, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal map: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}
