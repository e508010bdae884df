package repository

import (
	"context"
	"errors"
	"fmt"

	"flight-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Transactor runs fn against a Repository whose members share one
// transaction. The transaction commits when fn returns nil and rolls back
// otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *Repository) error) error
}

type Repository struct {
	User          UserRepository
	Session       SessionRepository
	Flight        FlightRepository
	FlightSeat    FlightSeatRepository
	Booking       BookingRepository
	BookingDetail BookingDetailRepository

	Tx Transactor
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newRepository(db, log)
	repo.Tx = &pgxTransactor{db: db, log: log}
	return repo
}

func newRepository(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		User:          NewUserRepository(q, log),
		Session:       NewSessionRepository(q, log),
		Flight:        NewFlightRepository(q, log),
		FlightSeat:    NewFlightSeatRepository(q, log),
		Booking:       NewBookingRepository(q, log),
		BookingDetail: NewBookingDetailRepository(q, log),
	}
}

type pgxTransactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func (t *pgxTransactor) WithinTx(ctx context.Context, fn func(tx *Repository) error) (err error) {
	tx, err := t.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		t.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				t.log.Error("Failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	txRepo := newRepository(tx, t.log)
	txRepo.Tx = nestedTx{repo: txRepo}

	if err = fn(txRepo); err != nil {
		return asConflict(err)
	}

	if err = tx.Commit(ctx); err != nil {
		t.log.Error("Failed to commit transaction", zap.Error(err))
		return asConflict(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// nestedTx reuses the surrounding transaction.
type nestedTx struct {
	repo *Repository
}

func (n nestedTx) WithinTx(_ context.Context, fn func(tx *Repository) error) error {
	return fn(n.repo)
}
