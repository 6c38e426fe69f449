package orders

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func seedPart(t *testing.T, pool *pgxpool.Pool, merchantID, price string, stock int) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO vehicle_parts (id, merchant_id, name, price, stock_quantity, images, specifications, is_active)
		VALUES ($1, $2, 'Test Part', $3, $4, '[]', '{}', true)`, id, merchantID, price, stock)
	require.NoError(t, err)
	return id
}

func stockOf(t *testing.T, pool *pgxpool.Pool, partID string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT stock_quantity FROM vehicle_parts WHERE id = $1`, partID).Scan(&n))
	return n
}

func TestCreateOrdersMultiMerchantScenario(t *testing.T) {
	pool := testPool(t)
	repo := &Repo{DB: pool}
	ctx := context.Background()

	customer := seedUser(t, pool, "customer")
	m1 := seedUser(t, pool, "merchant")
	m2 := seedUser(t, pool, "merchant")
	partA := seedPart(t, pool, m1, "100", 5)
	partB := seedPart(t, pool, m2, "50", 5)

	created, err := repo.CreateOrders(ctx, customer, CreateRequest{Items: []CartLine{
		{PartID: partA, Quantity: 2},
		{PartID: partB, Quantity: 1},
	}})
	require.NoError(t, err)
	require.Len(t, created, 2)

	byMerchant := map[string]Order{}
	for _, o := range created {
		byMerchant[o.MerchantID] = o
		want := o.Subtotal.Add(o.PlatformCommission).Add(o.TaxAmount).Add(o.DeliveryCharge)
		assert.True(t, o.TotalAmount.Equal(want), "total %s != %s", o.TotalAmount, want)
	}
	assert.True(t, byMerchant[m1].TotalAmount.Equal(decimal.NewFromInt(296)))
	assert.True(t, byMerchant[m2].TotalAmount.Equal(decimal.RequireFromString("111.5")))

	assert.Equal(t, 3, stockOf(t, pool, partA))
	assert.Equal(t, 4, stockOf(t, pool, partB))
}

func TestCreateOrdersShortStockLeavesNothingBehind(t *testing.T) {
	pool := testPool(t)
	repo := &Repo{DB: pool}
	ctx := context.Background()

	customer := seedUser(t, pool, "customer")
	m1 := seedUser(t, pool, "merchant")
	m2 := seedUser(t, pool, "merchant")
	partA := seedPart(t, pool, m1, "100", 5)
	partB := seedPart(t, pool, m2, "50", 1)

	_, err := repo.CreateOrders(ctx, customer, CreateRequest{Items: []CartLine{
		{PartID: partA, Quantity: 2},
		{PartID: partB, Quantity: 2},
	}})
	var short *InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, partB, short.PartID)

	// no orders, no decrements, for either merchant
	assert.Equal(t, 5, stockOf(t, pool, partA))
	assert.Equal(t, 1, stockOf(t, pool, partB))
	var n int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM part_orders WHERE customer_id = $1`, customer).Scan(&n))
	assert.Zero(t, n)
}

func TestCreateOrdersConcurrentLastUnit(t *testing.T) {
	pool := testPool(t)
	repo := &Repo{DB: pool}
	ctx := context.Background()

	merchant := seedUser(t, pool, "merchant")
	part := seedPart(t, pool, merchant, "100", 1)
	c1 := seedUser(t, pool, "customer")
	c2 := seedUser(t, pool, "customer")

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, customer := range []string{c1, c2} {
		wg.Add(1)
		go func(i int, customer string) {
			defer wg.Done()
			_, errs[i] = repo.CreateOrders(ctx, customer, CreateRequest{Items: []CartLine{
				{PartID: part, Quantity: 1},
			}})
		}(i, customer)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		var short *InsufficientStockError
		switch {
		case err == nil:
			successes++
		case assert.ErrorAs(t, err, &short):
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, 0, stockOf(t, pool, part))
}
