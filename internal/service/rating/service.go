package rating

import (
	"context"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/events"
)

// anonymousReviewer подставляется вместо пустого имени автора отзыва.
const anonymousReviewer = "Anonymous"

// Service ведёт рейтинг товара по отзывам и прямым оценкам.
//
// В системе сосуществуют две разные формулы обновления рейтинга:
// RateDirect усредняет старый рейтинг с новой оценкой (скользящее среднее
// двух точек, зависит от порядка вызовов), а SubmitReview пересчитывает
// честное среднее всех отзывов. Расхождение унаследовано и сохранено
// намеренно; операции не объединять.
type Service struct {
	products domain.ProductRepository
	emitter  *events.Emitter
	logger   *log.Entry
	metrics  *metrics.InventoryMetrics
}

// NewService создаёт сервис рейтинга.
func NewService(products domain.ProductRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "rating")
	}
	return &Service{
		products: products,
		emitter:  events.NewEmitter(outbox, logger),
		logger:   logger,
		metrics:  metrics.NewInventoryMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт сервис рейтинга без метрик (для тестов).
func NewServiceWithoutMetrics(products domain.ProductRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	service := NewService(products, outbox, logger)
	service.metrics = nil
	return service
}

// SubmitReview добавляет отзыв и пересчитывает рейтинг как округлённое
// до одного знака среднее арифметическое всех отзывов товара.
func (s *Service) SubmitReview(ctx context.Context, productID, reviewer, comment string, rating float64) (domain.Product, error) {
	if rating < 0 || rating > 5 {
		return domain.Product{}, domain.ErrInvalidRating
	}
	if reviewer == "" {
		reviewer = anonymousReviewer
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	review := domain.Review{
		Name:      reviewer,
		Comment:   comment,
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	}

	sum := rating
	for _, r := range product.Reviews {
		sum += r.Rating
	}
	newRating := round1(sum / float64(len(product.Reviews)+1))

	updated, err := s.products.AppendReview(ctx, productID, review, newRating)
	if err != nil {
		return domain.Product{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordReviewAdded()
	}
	s.emit(productID, kafka.EventTypeReviewAdded, map[string]interface{}{
		"reviewer":       reviewer,
		"rating":         rating,
		"product_rating": newRating,
	})

	return updated, nil
}

// RateDirect выставляет оценку без отзыва: новый рейтинг — округлённое
// среднее старого рейтинга и присланной оценки. Это НЕ среднее всех
// когда-либо присланных оценок.
func (s *Service) RateDirect(ctx context.Context, productID string, rating float64) (domain.Product, error) {
	if rating < 0 || rating > 5 {
		return domain.Product{}, domain.ErrInvalidRating
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	newRating := round1((product.Rating + rating) / 2)
	return s.products.SetRating(ctx, productID, newRating)
}

// Like увеличивает счётчик лайков на единицу. Идемпотентность не
// гарантируется: это счётчик, а не переключатель.
func (s *Service) Like(ctx context.Context, productID string) (domain.Product, error) {
	product, err := s.products.IncrementLikes(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if s.metrics != nil {
		s.metrics.RecordLike()
	}
	return product, nil
}

// round1 округляет до одного знака после запятой.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func (s *Service) emit(productID string, eventType kafka.EventType, payload map[string]interface{}) {
	if s.emitter.Emit(productID, eventType, payload) && s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}
