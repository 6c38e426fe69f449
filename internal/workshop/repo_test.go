package workshop

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decoder-44/vehicle-service-super-app/internal/booking"
	"github.com/decoder-44/vehicle-service-super-app/internal/postgres"
)

// These tests need a real database; set TEST_POSTGRES_DSN to run them.

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, pool))
	t.Cleanup(pool.Close)
	return pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool, role string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, full_name, email, role)
		VALUES ($1, 'Test User', $2, $3)`, id, id+"@example.com", role)
	require.NoError(t, err)
	return id
}

func seedBooking(t *testing.T, repo *Repo, customerID string) ServiceBooking {
	t.Helper()
	b, err := repo.CreateBooking(context.Background(), customerID, ServiceBooking{
		ServiceType:    "general_service",
		VehicleType:    "car",
		VehicleDetails: booking.VehicleDetails{VehicleType: "car", Brand: "Maruti"},
	})
	require.NoError(t, err)
	require.Equal(t, booking.StatusPending, b.Status)
	return b
}

func TestAssignRaceHasOneWinner(t *testing.T) {
	pool := testPool(t)
	repo := &Repo{DB: pool}
	ctx := context.Background()

	customer := seedUser(t, pool, "customer")
	mech1 := seedUser(t, pool, "mechanic")
	mech2 := seedUser(t, pool, "mechanic")
	b := seedBooking(t, repo, customer)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, mech := range []string{mech1, mech2} {
		wg.Add(1)
		go func(i int, mech string) {
			defer wg.Done()
			_, errs[i] = repo.Assign(ctx, b.ID, mech)
		}(i, mech)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrAlreadyAssigned):
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	got, err := repo.GetBooking(ctx, b.ID, customer)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusAssigned, got.Status)
	assert.NotNil(t, got.AssignedAt)
}

func TestAssignMissingBookingIsNotFound(t *testing.T) {
	pool := testPool(t)
	repo := &Repo{DB: pool}

	mech := seedUser(t, pool, "mechanic")
	_, err := repo.Assign(context.Background(), uuid.NewString(), mech)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusHidesExistenceFromStrangers(t *testing.T) {
	pool := testPool(t)
	repo := &Repo{DB: pool}
	ctx := context.Background()

	customer := seedUser(t, pool, "customer")
	stranger := seedUser(t, pool, "customer")
	b := seedBooking(t, repo, customer)

	// neither party nor nonexistent id may be told apart
	_, errStranger := repo.UpdateStatus(ctx, b.ID, stranger, StatusUpdate{Status: booking.StatusCancelled})
	_, errMissing := repo.UpdateStatus(ctx, uuid.NewString(), customer, StatusUpdate{Status: booking.StatusCancelled})
	assert.ErrorIs(t, errStranger, ErrNotFound)
	assert.ErrorIs(t, errMissing, ErrNotFound)

	// the booking itself is untouched
	got, err := repo.GetBooking(ctx, b.ID, customer)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, got.Status)
}

func TestUpdateStatusRejectsGapTransition(t *testing.T) {
	pool := testPool(t)
	repo := &Repo{DB: pool}
	ctx := context.Background()

	customer := seedUser(t, pool, "customer")
	b := seedBooking(t, repo, customer)

	_, err := repo.UpdateStatus(ctx, b.ID, customer, StatusUpdate{Status: booking.StatusCompleted})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
