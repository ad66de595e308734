package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestNextSequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgx mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO id_sequences").
		WithArgs("doctor:3").
		WillReturnRows(pgxmock.NewRows([]string{"last_value"}).AddRow(int64(1)))
	mock.ExpectQuery("INSERT INTO id_sequences").
		WithArgs("doctor:3").
		WillReturnRows(pgxmock.NewRows([]string{"last_value"}).AddRow(int64(2)))

	for want := int64(1); want <= 2; want++ {
		got, err := NextSequence(context.Background(), mock, "doctor:3")
		if err != nil {
			t.Fatalf("next sequence: %v", err)
		}
		if got != want {
			t.Fatalf("sequence = %d, want %d", got, want)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("expected 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign key violation misclassified")
	}
	if IsUniqueViolation(errors.New("plain error")) {
		t.Fatal("plain error misclassified")
	}
}
