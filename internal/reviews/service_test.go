package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/internal/catalog"
	"github.com/atelierno/storefront-backend/pkg/db"
	"github.com/atelierno/storefront-backend/pkg/db/models"
	"github.com/atelierno/storefront-backend/pkg/logger"
)

type recordingQueue struct {
	tasks []string
}

func (q *recordingQueue) Enqueue(_ context.Context, kind, key string) error {
	q.tasks = append(q.tasks, kind+":"+key)
	return nil
}

func setupReviewsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:reviews_tests?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL DEFAULT '',
  city TEXT,
  phone TEXT,
  address TEXT,
  postcode TEXT,
  extra_info TEXT,
  birthday DATETIME,
  is_admin INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  category_id TEXT,
  brand_id TEXT,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  base_price TEXT NOT NULL,
  discount_percent INTEGER NOT NULL DEFAULT 0,
  current_price TEXT NOT NULL,
  available INTEGER NOT NULL DEFAULT 1,
  sale_count INTEGER NOT NULL DEFAULT 0,
  rating REAL,
  review_count INTEGER NOT NULL DEFAULT 0,
  tags TEXT NOT NULL DEFAULT '{}',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS reviews (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  rating INTEGER NOT NULL,
  text TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id)
);`}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type reviewsFixture struct {
	svc     Service
	queue   *recordingQueue
	conn    *gorm.DB
	product *models.Product
}

func newReviewsFixture(t *testing.T) reviewsFixture {
	t.Helper()

	conn := setupReviewsTestDB(t)
	queue := &recordingQueue{}
	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(conn),
		CatalogRepo: catalog.NewRepository(conn),
		Client:      db.NewWithConn(conn),
		Queue:       queue,
		Logger:      logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)

	product := &models.Product{
		ID:           uuid.New(),
		Title:        "Boots",
		Slug:         "boots-" + uuid.NewString(),
		BasePrice:    decimal.RequireFromString("100.00"),
		CurrentPrice: decimal.RequireFromString("100.00"),
		Available:    true,
		Tags:         []string{},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, conn.Create(product).Error)
	return reviewsFixture{svc: svc, queue: queue, conn: conn, product: product}
}

func seedUser(t *testing.T, conn *gorm.DB, firstName string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		FirstName:    firstName,
		IsActive:     true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func productRating(t *testing.T, conn *gorm.DB, id uuid.UUID) (*float64, int) {
	t.Helper()

	var row struct {
		Rating      *float64
		ReviewCount int
	}
	require.NoError(t, conn.Table("products").
		Select("rating, review_count").
		Where("id = ?", id).
		Scan(&row).Error)
	return row.Rating, row.ReviewCount
}

func TestSubmitCreatesReviewAndEnqueuesAggregation(t *testing.T) {
	f := newReviewsFixture(t)
	user := seedUser(t, f.conn, "Dana")
	ctx := context.Background()

	dto, err := f.svc.Submit(ctx, user.ID, SubmitInput{ProductID: f.product.ID, Rating: 4, Text: "solid"})
	require.NoError(t, err)
	assert.Equal(t, 4, dto.Rating)
	require.Len(t, f.queue.tasks, 1)
	assert.Equal(t, TaskAggregateReviews+":"+f.product.ID.String(), f.queue.tasks[0])
}

func TestSubmitReplacesExistingReview(t *testing.T) {
	f := newReviewsFixture(t)
	user := seedUser(t, f.conn, "Eli")
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, user.ID, SubmitInput{ProductID: f.product.ID, Rating: 2, Text: "meh"})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, user.ID, SubmitInput{ProductID: f.product.ID, Rating: 5, Text: "grew on me"})
	require.NoError(t, err)

	reviews, err := f.svc.ListByProduct(ctx, f.product.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.Equal(t, "grew on me", reviews[0].Text)
}

func TestSubmitRejectsOutOfRangeRating(t *testing.T) {
	f := newReviewsFixture(t)
	user := seedUser(t, f.conn, "Ferris")

	for _, rating := range []int{0, 6, -1} {
		_, err := f.svc.Submit(context.Background(), user.ID, SubmitInput{ProductID: f.product.ID, Rating: rating})
		require.Error(t, err, "rating %d", rating)
	}
}

func TestRecomputeAggregateAveragesAndRounds(t *testing.T) {
	f := newReviewsFixture(t)
	ctx := context.Background()

	for _, rating := range []int{5, 4, 4} {
		user := seedUser(t, f.conn, "Rater")
		_, err := f.svc.Submit(ctx, user.ID, SubmitInput{ProductID: f.product.ID, Rating: rating})
		require.NoError(t, err)
	}

	require.NoError(t, f.svc.RecomputeAggregate(ctx, f.product.ID))

	rating, count := productRating(t, f.conn, f.product.ID)
	require.NotNil(t, rating)
	assert.InDelta(t, 4.33, *rating, 0.001)
	assert.Equal(t, 3, count)
}

func TestRecomputeAggregateWithNoReviewsClearsRating(t *testing.T) {
	f := newReviewsFixture(t)
	ctx := context.Background()

	require.NoError(t, f.conn.Model(&models.Product{}).
		Where("id = ?", f.product.ID).
		UpdateColumns(map[string]any{"rating": 3.5, "review_count": 7}).Error)

	require.NoError(t, f.svc.RecomputeAggregate(ctx, f.product.ID))

	rating, count := productRating(t, f.conn, f.product.ID)
	assert.Nil(t, rating)
	assert.Equal(t, 0, count)
}

func TestListByProductUsesDisplayName(t *testing.T) {
	f := newReviewsFixture(t)
	user := seedUser(t, f.conn, "Greta")
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, user.ID, SubmitInput{ProductID: f.product.ID, Rating: 3})
	require.NoError(t, err)

	reviews, err := f.svc.ListByProduct(ctx, f.product.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Greta", reviews[0].AuthorName)
}
