package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func newProduct(id string) domain.Product {
	now := time.Now().UTC()
	return domain.Product{
		ID:          id,
		Title:       "Wooden Train",
		Description: "Classic wooden train set",
		PriceMinor:  2500,
		Category:    "toys",
		SubCategory: "wooden",
		AgeGroup:    "3-5",
		SKU:         "sku-" + id,
		Stock:       10,
		Reviews:     []domain.Review{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestProductRepository_ListRelated(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()

	for _, id := range []string{"product-1", "product-2", "product-3", "product-4", "product-5", "product-6"} {
		if err := repo.Create(ctx, newProduct(id)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	other := newProduct("product-other")
	other.SubCategory = "plush"
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	related, err := repo.ListRelated(ctx, "wooden", "product-1", 4)
	if err != nil {
		t.Fatalf("list related failed: %v", err)
	}
	if len(related) != 4 {
		t.Fatalf("expected 4 related products, got %d", len(related))
	}
	for _, product := range related {
		if product.ID == "product-1" {
			t.Fatal("related products must not contain the product itself")
		}
		if product.SubCategory != "wooden" {
			t.Fatalf("expected sub_category wooden, got %s", product.SubCategory)
		}
	}

	none, err := repo.ListRelated(ctx, "books", "product-1", 4)
	if err != nil {
		t.Fatalf("list related failed: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no related products, got %d", len(none))
	}
}

func TestProductRepository_CreateGet(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()
	product := newProduct("product-1")

	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != product.ID {
		t.Fatalf("expected id %s, got %s", product.ID, stored.ID)
	}
	if stored.Stock != 10 {
		t.Fatalf("expected stock 10, got %d", stored.Stock)
	}
}

func TestProductRepository_CreateDuplicate(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()
	product := newProduct("product-1")

	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(ctx, product); !errors.Is(err, domain.ErrProductExists) {
		t.Fatalf("expected ErrProductExists, got %v", err)
	}
}

func TestProductRepository_GetMissing(t *testing.T) {
	repo := memory.NewProductRepository()

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_DecrementStock(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()
	product := newProduct("product-1")
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := repo.DecrementStock(ctx, product.ID, 4)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if updated.Stock != 6 {
		t.Fatalf("expected stock 6, got %d", updated.Stock)
	}
}

func TestProductRepository_DecrementStockInsufficient(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()
	product := newProduct("product-1")
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := repo.DecrementStock(ctx, product.ID, 11)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	stored, err := repo.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Stock != 10 {
		t.Fatalf("rejected decrement must not mutate stock, got %d", stored.Stock)
	}
}

func TestProductRepository_IncrementStock(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()
	product := newProduct("product-1")
	product.Stock = 0
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := repo.IncrementStock(ctx, product.ID, 7)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if updated.Stock != 7 {
		t.Fatalf("expected stock 7, got %d", updated.Stock)
	}
}

func TestProductRepository_IncrementLikes(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()
	product := newProduct("product-1")
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := repo.IncrementLikes(ctx, product.ID)
	if err != nil {
		t.Fatalf("increment likes failed: %v", err)
	}
	second, err := repo.IncrementLikes(ctx, product.ID)
	if err != nil {
		t.Fatalf("increment likes failed: %v", err)
	}
	if first.Likes != 1 || second.Likes != 2 {
		t.Fatalf("expected likes 1 then 2, got %d then %d", first.Likes, second.Likes)
	}
}

func TestProductRepository_AppendReview(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()
	product := newProduct("product-1")
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	review := domain.Review{Name: "Alex", Comment: "great", Rating: 5, CreatedAt: time.Now().UTC()}
	updated, err := repo.AppendReview(ctx, product.ID, review, 5.0)
	if err != nil {
		t.Fatalf("append review failed: %v", err)
	}
	if len(updated.Reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(updated.Reviews))
	}
	if updated.Rating != 5.0 {
		t.Fatalf("expected rating 5.0, got %f", updated.Rating)
	}
}

func TestProductRepository_CloneIsolation(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()
	product := newProduct("product-1")
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	stored.Reviews = append(stored.Reviews, domain.Review{Name: "x", Rating: 1})

	again, err := repo.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(again.Reviews) != 0 {
		t.Fatalf("mutating returned product must not affect storage, got %d reviews", len(again.Reviews))
	}
}

func TestProductRepository_Filter(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()

	cheap := newProduct("product-cheap")
	cheap.PriceMinor = 500
	cheap.Category = "books"
	expensive := newProduct("product-expensive")
	expensive.PriceMinor = 9000
	expensive.Category = "toys"

	for _, p := range []domain.Product{cheap, expensive} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	result, err := repo.Filter(ctx, domain.ProductFilter{Categories: []string{"toys"}, MinPriceMinor: 1000})
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if len(result) != 1 || result[0].ID != expensive.ID {
		t.Fatalf("expected only expensive toy, got %d results", len(result))
	}
}

func TestProductRepository_TopByLikes(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()

	for i, likes := range []int64{3, 9, 1, 5, 7} {
		product := newProduct("product-" + string(rune('a'+i)))
		product.Likes = likes
		if err := repo.Create(ctx, product); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	top, err := repo.TopByLikes(ctx, 3)
	if err != nil {
		t.Fatalf("top by likes failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 products, got %d", len(top))
	}
	if top[0].Likes != 9 || top[1].Likes != 7 || top[2].Likes != 5 {
		t.Fatalf("expected likes 9,7,5 got %d,%d,%d", top[0].Likes, top[1].Likes, top[2].Likes)
	}
}

func TestProductRepository_SaveDelete(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()
	product := newProduct("product-1")
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	product.Title = "Updated Train"
	if err := repo.Save(ctx, product); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	stored, err := repo.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Title != "Updated Train" {
		t.Fatalf("expected updated title, got %s", stored.Title)
	}

	if err := repo.Delete(ctx, product.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, product.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}
	if err := repo.Save(ctx, product); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound on save of deleted product, got %v", err)
	}
}
