package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shopspring/decimal"
)

// CartView is a user's cart with its current total.
type CartView struct {
	Items []models.Cart   `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type CartService struct {
	store *repositories.Store
}

func NewCartService(store *repositories.Store) *CartService {
	return &CartService{store: store}
}

// Add puts quantity of a product in the user's cart. An existing line for
// the same product is incremented.
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) (models.Cart, error) {
	if userID == 0 || productID == 0 || quantity <= 0 {
		return models.Cart{}, validation("User ID, Product ID, and positive quantity are required")
	}

	var line models.Cart
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.FindByID(ctx, userID); err != nil {
			return lookup(err, "User not found with ID: %d", userID)
		}
		product, err := tx.Products.FindByID(ctx, productID)
		if err != nil {
			return lookup(err, "Product not found with ID: %d", productID)
		}

		line, err = tx.Carts.FindByUserAndProduct(ctx, userID, productID)
		switch {
		case err == nil:
			line.Quantity += quantity
		case errors.Is(err, repositories.ErrNotFound):
			line = models.Cart{UserID: userID, ProductID: productID, Quantity: quantity}
		default:
			return internal("Error adding to cart", err)
		}
		line.Product = product

		if err := tx.Carts.Save(ctx, &line); err != nil {
			return internal("Error adding to cart", err)
		}
		return nil
	})
	return line, err
}

// Update sets a line's quantity; zero or less removes the line.
// removed reports which of the two happened.
func (s *CartService) Update(ctx context.Context, userID, itemID uint, quantity int) (line models.Cart, removed bool, err error) {
	if userID == 0 || itemID == 0 {
		return models.Cart{}, false, validation("User ID, Item ID, and non-negative quantity are required")
	}

	line, err = s.owned(ctx, userID, itemID, "Unauthorized: User does not own this cart item")
	if err != nil {
		return models.Cart{}, false, err
	}

	if quantity <= 0 {
		if err := s.store.Carts.Delete(ctx, line.ID); err != nil {
			return models.Cart{}, false, internal("Unexpected error updating cart", err)
		}
		return models.Cart{}, true, nil
	}

	line.Quantity = quantity
	if err := s.store.Carts.Save(ctx, &line); err != nil {
		return models.Cart{}, false, internal("Unexpected error updating cart", err)
	}
	return line, false, nil
}

// Remove deletes one of the user's lines.
func (s *CartService) Remove(ctx context.Context, userID, itemID uint) error {
	if userID == 0 || itemID == 0 {
		return validation("User ID and Item ID are required")
	}

	line, err := s.owned(ctx, userID, itemID, "Unauthorized")
	if err != nil {
		return err
	}
	if err := s.store.Carts.Delete(ctx, line.ID); err != nil {
		return internal("Error removing cart item", err)
	}
	return nil
}

// View returns the user's lines and their total at current prices.
func (s *CartService) View(ctx context.Context, userID uint) (CartView, error) {
	if _, err := s.store.Users.FindByID(ctx, userID); err != nil {
		return CartView{}, lookup(err, "User not found")
	}

	items, err := s.store.Carts.ForUser(ctx, userID)
	if err != nil {
		return CartView{}, internal("Error loading cart", err)
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return CartView{Items: items, Total: total}, nil
}

func (s *CartService) owned(ctx context.Context, userID, itemID uint, denied string) (models.Cart, error) {
	if _, err := s.store.Users.FindByID(ctx, userID); err != nil {
		return models.Cart{}, lookup(err, "User not found with ID: %d", userID)
	}
	line, err := s.store.Carts.FindByID(ctx, itemID)
	if err != nil {
		return models.Cart{}, lookup(err, "Cart item not found with ID: %d", itemID)
	}
	if line.UserID != userID {
		return models.Cart{}, forbidden(denied)
	}
	return line, nil
}
