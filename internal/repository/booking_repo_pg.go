package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrDuplicateReference = errors.New("booking reference already exists")

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Save(ctx context.Context, booking *domain.Booking) error
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ExpireReservedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, reference, trip_type, origin, destination, departure_date, return_date,
	shipping_line, adults, children, total_price::text, details, status, reserved_until, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	details, err := json.Marshal(booking.Details)
	if err != nil {
		return fmt.Errorf("encode booking details: %w", err)
	}

	err = r.db.QueryRow(ctx, `INSERT INTO bookings (user_id, reference, trip_type, origin, destination, departure_date, return_date,
		shipping_line, adults, children, total_price, details, status, reserved_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::numeric, $12, $13, $14, $15, $15)
		RETURNING id, created_at, updated_at`,
		booking.UserID, booking.Reference, booking.TripType, booking.Origin, booking.Destination,
		booking.DepartureDate, booking.ReturnDate, booking.ShippingLine, booking.Adults, booking.Children,
		booking.TotalPrice.StringFixedBank(2), details, booking.Status, booking.ReservedUntil, booking.CreatedAt,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (r *PGBookingRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE reference=$1)`, reference).Scan(&exists)
	return exists, err
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// Save writes the mutable part of a booking: status, hold and details.
func (r *PGBookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	details, err := json.Marshal(booking.Details)
	if err != nil {
		return fmt.Errorf("encode booking details: %w", err)
	}

	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET status=$1, reserved_until=$2, details=$3, updated_at=$4 WHERE id=$5`,
		booking.Status, booking.ReservedUntil, details, booking.UpdatedAt, booking.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ExpireReservedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, reserved_until=NULL, updated_at=now()
		WHERE status=$2 AND reserved_until <= $3
		RETURNING `+bookingColumns,
		domain.BookingStatusExpired, domain.BookingStatusReserved, deadline)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b       domain.Booking
		total   string
		details []byte
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Reference, &b.TripType, &b.Origin, &b.Destination, &b.DepartureDate, &b.ReturnDate,
		&b.ShippingLine, &b.Adults, &b.Children, &total, &details, &b.Status, &b.ReservedUntil, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("booking %d: total price %q: %w", b.ID, total, err)
	}
	b.TotalPrice = price

	if len(details) > 0 {
		if err := json.Unmarshal(details, &b.Details); err != nil {
			return nil, fmt.Errorf("booking %d: decode details: %w", b.ID, err)
		}
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
