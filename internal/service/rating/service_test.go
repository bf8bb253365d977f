package rating_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/rating"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: false, DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

func newService(t *testing.T) (*rating.Service, domain.ProductRepository, domain.OutboxRepository) {
	t.Helper()

	products := memory.NewProductRepository()
	outbox := memory.NewOutboxRepository()
	return rating.NewServiceWithoutMetrics(products, outbox, loggerForTests()), products, outbox
}

func seedProduct(t *testing.T, products domain.ProductRepository, id string, currentRating float64) {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, products.Create(context.Background(), domain.Product{
		ID:         id,
		Title:      "Toy " + id,
		PriceMinor: 1000,
		SKU:        "sku-" + id,
		Stock:      10,
		Rating:     currentRating,
		Reviews:    []domain.Review{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}))
}

func TestRating_RateDirect(t *testing.T) {
	service, products, _ := newService(t)
	seedProduct(t, products, "product-1", 4.0)

	updated, err := service.RateDirect(context.Background(), "product-1", 2.0)
	require.NoError(t, err)
	require.Equal(t, 3.0, updated.Rating)
}

func TestRating_RateDirectIsOrderDependent(t *testing.T) {
	service, products, _ := newService(t)
	seedProduct(t, products, "product-1", 0)

	// Каждая оценка усредняется с текущим рейтингом, а не со всей
	// историей: 0 -> 2.5 -> 3.8.
	updated, err := service.RateDirect(context.Background(), "product-1", 5.0)
	require.NoError(t, err)
	require.Equal(t, 2.5, updated.Rating)

	updated, err = service.RateDirect(context.Background(), "product-1", 5.0)
	require.NoError(t, err)
	require.Equal(t, 3.8, updated.Rating)
}

func TestRating_RateDirectInvalid(t *testing.T) {
	service, products, _ := newService(t)
	seedProduct(t, products, "product-1", 4.0)

	_, err := service.RateDirect(context.Background(), "product-1", 5.5)
	require.ErrorIs(t, err, domain.ErrInvalidRating)

	_, err = service.RateDirect(context.Background(), "product-1", -0.1)
	require.ErrorIs(t, err, domain.ErrInvalidRating)
}

func TestRating_SubmitReviewRecalculatesMean(t *testing.T) {
	service, products, _ := newService(t)
	seedProduct(t, products, "product-1", 0)

	updated, err := service.SubmitReview(context.Background(), "product-1", "Alex", "good", 4)
	require.NoError(t, err)
	require.Equal(t, 4.0, updated.Rating)

	updated, err = service.SubmitReview(context.Background(), "product-1", "Kim", "meh", 2)
	require.NoError(t, err)
	require.Equal(t, 3.0, updated.Rating)

	updated, err = service.SubmitReview(context.Background(), "product-1", "Sasha", "love it", 5)
	require.NoError(t, err)
	require.Equal(t, 3.7, updated.Rating)
	require.Len(t, updated.Reviews, 3)
}

func TestRating_SubmitReviewAnonymousDefault(t *testing.T) {
	service, products, _ := newService(t)
	seedProduct(t, products, "product-1", 0)

	updated, err := service.SubmitReview(context.Background(), "product-1", "", "no name", 3)
	require.NoError(t, err)
	require.Equal(t, "Anonymous", updated.Reviews[0].Name)
}

func TestRating_SubmitReviewInvalid(t *testing.T) {
	service, products, _ := newService(t)
	seedProduct(t, products, "product-1", 0)

	_, err := service.SubmitReview(context.Background(), "product-1", "Alex", "bad", 6)
	require.ErrorIs(t, err, domain.ErrInvalidRating)
}

func TestRating_SubmitReviewEmitsEvent(t *testing.T) {
	service, products, outbox := newService(t)
	seedProduct(t, products, "product-1", 0)

	_, err := service.SubmitReview(context.Background(), "product-1", "Alex", "good", 4)
	require.NoError(t, err)

	pending, err := outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "review.added", pending[0].EventType)
}

func TestRating_SubmitReviewUnknownProduct(t *testing.T) {
	service, _, _ := newService(t)

	_, err := service.SubmitReview(context.Background(), "missing", "Alex", "good", 4)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestRating_FormulasDiverge(t *testing.T) {
	service, products, _ := newService(t)
	seedProduct(t, products, "direct", 0)
	seedProduct(t, products, "reviewed", 0)

	// Одинаковые оценки, разные операции: скользящее среднее двух точек
	// и честное среднее дают разный итог.
	for _, score := range []float64{5, 5, 1} {
		_, err := service.RateDirect(context.Background(), "direct", score)
		require.NoError(t, err)
		_, err = service.SubmitReview(context.Background(), "reviewed", "Alex", "", score)
		require.NoError(t, err)
	}

	direct, err := products.Get(context.Background(), "direct")
	require.NoError(t, err)
	reviewed, err := products.Get(context.Background(), "reviewed")
	require.NoError(t, err)

	require.Equal(t, 2.4, direct.Rating)
	require.Equal(t, 3.7, reviewed.Rating)
}

func TestRating_Like(t *testing.T) {
	service, products, _ := newService(t)
	seedProduct(t, products, "product-1", 0)

	updated, err := service.Like(context.Background(), "product-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), updated.Likes)

	updated, err = service.Like(context.Background(), "product-1")
	require.NoError(t, err)
	require.Equal(t, int64(2), updated.Likes)
}

func TestRating_LikeUnknownProduct(t *testing.T) {
	service, _, _ := newService(t)

	_, err := service.Like(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}
