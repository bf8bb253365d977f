package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/events"
)

// customerLovesLimit — размер витрины «customer loves» (топ по лайкам).
const customerLovesLimit = 4

// relatedProductsLimit — размер подборки «похожие товары» карточки товара.
const relatedProductsLimit = 4

// CreateInput — валидируемый вход создания товара. Ядро не принимает
// частично типизированные данные клиента: границы обязаны собрать
// и проверить эту структуру заранее.
type CreateInput struct {
	Title       string
	Description string
	PriceMinor  int64
	OldPrice    int64
	Tag         string
	Category    string
	SubCategory string
	AgeGroup    string
	SKU         string
	Stock       int64
}

// UpdateInput — явный patch каталожных полей; nil-поле не трогается.
type UpdateInput struct {
	Title       *string
	Description *string
	PriceMinor  *int64
	OldPrice    *int64
	Tag         *string
	Category    *string
	SubCategory *string
	AgeGroup    *string
	SKU         *string
}

// Service управляет жизненным циклом товаров каталога.
type Service struct {
	products domain.ProductRepository
	emitter  *events.Emitter
	logger   *log.Entry
}

// NewService создаёт сервис каталога.
func NewService(products domain.ProductRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{
		products: products,
		emitter:  events.NewEmitter(outbox, logger),
		logger:   logger,
	}
}

// Create заводит новый товар с нулевым рейтингом и пустым списком отзывов.
func (s *Service) Create(ctx context.Context, input CreateInput) (domain.Product, error) {
	now := time.Now().UTC()
	product := domain.Product{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		PriceMinor:  input.PriceMinor,
		OldPrice:    input.OldPrice,
		Tag:         input.Tag,
		Category:    input.Category,
		SubCategory: input.SubCategory,
		AgeGroup:    input.AgeGroup,
		SKU:         input.SKU,
		Stock:       input.Stock,
		Reviews:     []domain.Review{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}

	if err := s.products.Create(ctx, product); err != nil {
		return domain.Product{}, err
	}

	s.emitter.Emit(product.ID, kafka.EventTypeProductCreated, map[string]interface{}{
		"title": product.Title,
		"stock": product.Stock,
	})
	return product, nil
}

// Get возвращает товар по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.products.Get(ctx, id)
}

// GetWithRelated возвращает товар вместе с подборкой «похожие товары»:
// до четырёх товаров той же подкатегории, сам товар исключается.
func (s *Service) GetWithRelated(ctx context.Context, id string) (domain.Product, []domain.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, nil, err
	}

	related, err := s.products.ListRelated(ctx, product.SubCategory, product.ID, relatedProductsLimit)
	if err != nil {
		return domain.Product{}, nil, err
	}
	return product, related, nil
}

// List возвращает все товары каталога.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// Filter возвращает товары по критериям (категории, цена, возрастная группа).
func (s *Service) Filter(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.products.Filter(ctx, filter)
}

// CustomerLoves возвращает топ товаров по лайкам для витрины.
func (s *Service) CustomerLoves(ctx context.Context) ([]domain.Product, error) {
	return s.products.TopByLikes(ctx, customerLovesLimit)
}

// Update применяет patch к каталожным полям товара. Остаток, рейтинг,
// лайки и отзывы этим путём не меняются: ими владеют склад и рейтинг.
func (s *Service) Update(ctx context.Context, id string, patch UpdateInput) (domain.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if patch.Title != nil {
		product.Title = *patch.Title
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.PriceMinor != nil {
		product.PriceMinor = *patch.PriceMinor
	}
	if patch.OldPrice != nil {
		product.OldPrice = *patch.OldPrice
	}
	if patch.Tag != nil {
		product.Tag = *patch.Tag
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	if patch.SubCategory != nil {
		product.SubCategory = *patch.SubCategory
	}
	if patch.AgeGroup != nil {
		product.AgeGroup = *patch.AgeGroup
	}
	if patch.SKU != nil {
		product.SKU = *patch.SKU
	}

	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}
	if err := s.products.Save(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// Delete удаляет товар из каталога. Записи трекера и позиции корзин,
// ссылающиеся на него, становятся висячими и отфильтровываются при
// чтении; транзакционного каскада нет.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(id, kafka.EventTypeProductDeleted, nil)
	return nil
}
