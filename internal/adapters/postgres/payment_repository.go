package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
)

const paymentColumns = `id, donation_id, method, status, amount, currency,
	transaction_id, gateway_response, error_message, error_code, refund_amount,
	preparation_payload, redirect_url, metadata,
	initiated_at, prepared_at, completed_at, failed_at, refunded_at`

// PaymentRepository implements ports.PaymentRepository on PostgreSQL
type PaymentRepository struct {
	db ports.DBPort
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db ports.DBPort) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) exec(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.db.GetDB()
}

// Create inserts a new payment
func (r *PaymentRepository) Create(ctx context.Context, db ports.DBTX, payment *domain.Payment) error {
	amount, err := decimalToNumeric(payment.Amount)
	if err != nil {
		return err
	}
	refundAmount, err := nullNumeric(payment.RefundAmount)
	if err != nil {
		return err
	}
	prep, err := marshalMap(payment.PreparationPayload)
	if err != nil {
		return err
	}
	metadata, err := marshalMap(payment.Metadata)
	if err != nil {
		return err
	}

	_, err = r.exec(db).Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		payment.ID, payment.DonationID, string(payment.Method), string(payment.Status),
		amount, payment.Currency,
		nullText(payment.TransactionID), nullText(payment.GatewayResponse),
		nullText(payment.ErrorMessage), nullText(payment.ErrorCode), refundAmount,
		prep, nullText(payment.RedirectURL), metadata,
		payment.InitiatedAt, nullTimestamp(payment.PreparedAt), nullTimestamp(payment.CompletedAt),
		nullTimestamp(payment.FailedAt), nullTimestamp(payment.RefundedAt),
	)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by its id
func (r *PaymentRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*domain.Payment, error) {
	row := r.exec(db).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	return r.scanPayment(row)
}

// GetByIDForUpdate retrieves a payment with a row lock so concurrent callback
// transactions serialize on the same payment
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, db ports.DBTX, id string) (*domain.Payment, error) {
	row := r.exec(db).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
	return r.scanPayment(row)
}

// Update writes the payment's mutable fields
func (r *PaymentRepository) Update(ctx context.Context, db ports.DBTX, payment *domain.Payment) error {
	refundAmount, err := nullNumeric(payment.RefundAmount)
	if err != nil {
		return err
	}
	prep, err := marshalMap(payment.PreparationPayload)
	if err != nil {
		return err
	}

	tag, err := r.exec(db).Exec(ctx, `
		UPDATE payments SET
			status = $2,
			transaction_id = $3,
			gateway_response = $4,
			error_message = $5,
			error_code = $6,
			refund_amount = $7,
			preparation_payload = $8,
			redirect_url = $9,
			prepared_at = $10,
			completed_at = $11,
			failed_at = $12,
			refunded_at = $13
		WHERE id = $1`,
		payment.ID, string(payment.Status),
		nullText(payment.TransactionID), nullText(payment.GatewayResponse),
		nullText(payment.ErrorMessage), nullText(payment.ErrorCode), refundAmount,
		prep, nullText(payment.RedirectURL),
		nullTimestamp(payment.PreparedAt), nullTimestamp(payment.CompletedAt),
		nullTimestamp(payment.FailedAt), nullTimestamp(payment.RefundedAt),
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound.WithDetail("payment_id", payment.ID)
	}
	return nil
}

func (r *PaymentRepository) scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		p                       domain.Payment
		method, status          string
		amount, refundAmount    pgtype.Numeric
		transactionID           pgtype.Text
		gatewayResponse         pgtype.Text
		errorMessage, errorCode pgtype.Text
		prep, metadata          []byte
		redirectURL             pgtype.Text
		initiatedAt             time.Time
		preparedAt, completedAt pgtype.Timestamptz
		failedAt, refundedAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&p.ID, &p.DonationID, &method, &status, &amount, &p.Currency,
		&transactionID, &gatewayResponse, &errorMessage, &errorCode, &refundAmount,
		&prep, &redirectURL, &metadata,
		&initiatedAt, &preparedAt, &completedAt, &failedAt, &refundedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	p.Method = domain.PaymentMethod(method)
	p.Status = domain.PaymentStatus(status)
	if p.Amount, err = numericToDecimal(amount); err != nil {
		return nil, err
	}
	if p.RefundAmount, err = numericPtr(refundAmount); err != nil {
		return nil, err
	}
	p.TransactionID = textPtr(transactionID)
	p.GatewayResponse = textPtr(gatewayResponse)
	p.ErrorMessage = textPtr(errorMessage)
	p.ErrorCode = textPtr(errorCode)
	p.RedirectURL = textPtr(redirectURL)
	if p.PreparationPayload, err = unmarshalMap(prep); err != nil {
		return nil, err
	}
	if p.Metadata, err = unmarshalMap(metadata); err != nil {
		return nil, err
	}
	p.InitiatedAt = initiatedAt
	p.PreparedAt = timestampPtr(preparedAt)
	p.CompletedAt = timestampPtr(completedAt)
	p.FailedAt = timestampPtr(failedAt)
	p.RefundedAt = timestampPtr(refundedAt)

	return &p, nil
}
