package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func testCart() domain.Cart {
	return domain.Cart{
		UserID: "user-1",
		Entries: []domain.CartEntry{
			{ProductID: "product-a", Quantity: 1},
			{ProductID: "product-b", Quantity: 2},
			{ProductID: "product-c", Quantity: 3},
		},
	}
}

func TestCart_FindEntry(t *testing.T) {
	cart := testCart()

	if idx := cart.FindEntry("product-b"); idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
	if idx := cart.FindEntry("missing"); idx != -1 {
		t.Fatalf("expected -1 for missing product, got %d", idx)
	}
}

func TestCart_RemoveEntry(t *testing.T) {
	cart := testCart()

	if !cart.RemoveEntry("product-b") {
		t.Fatal("expected removal of existing entry")
	}
	if len(cart.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(cart.Entries))
	}
	// Порядок оставшихся позиций сохраняется.
	if cart.Entries[0].ProductID != "product-a" || cart.Entries[1].ProductID != "product-c" {
		t.Fatalf("unexpected order: %+v", cart.Entries)
	}

	if cart.RemoveEntry("product-b") {
		t.Fatal("expected false for already removed entry")
	}
}
