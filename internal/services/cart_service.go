package services

import (
	"fmt"

	"duka/internal/apperrors"
	"duka/internal/models"
	"duka/internal/repositories"
)

// CartService handles business logic for carts. Every mutation snapshots
// product data into the line and recomputes the cart totals, so later
// catalog changes never alter an open cart.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// CreateCart creates a new empty cart.
func (s *CartService) CreateCart() (*models.Cart, error) {
	cart := &models.Cart{Status: models.CartStatusOpen}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

// GetCart retrieves a cart with its items.
func (s *CartService) GetCart(id string) (*models.Cart, error) {
	return s.cartRepo.GetByID(id)
}

// AddItem adds a product to the cart, snapshotting its current name, SKU,
// price, tax rate and digital flag. Adding a product already in the cart
// increases the line quantity instead of creating a duplicate line.
func (s *CartService) AddItem(cartID, productID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive, got %d", quantity)
	}

	cart, err := s.openCart(cartID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, apperrors.NewValidationError("insufficient stock for product %s (requested: %d, available: %d)", product.Name, quantity, product.Stock)
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			SKU:       product.SKU,
			UnitPrice: product.Price, // Price at the time the item is added
			TaxRate:   product.TaxRate,
			IsDigital: product.IsDigital,
			Quantity:  quantity,
		})
	}

	return s.persist(cart)
}

// UpdateItemQuantity sets the quantity on an existing cart line. The frozen
// snapshot is kept; only the quantity and derived totals change.
func (s *CartService) UpdateItemQuantity(cartID, itemID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive, got %d", quantity)
	}

	cart, err := s.openCart(cartID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("cart item %s: %w", itemID, apperrors.ErrNotFound)
	}

	return s.persist(cart)
}

// RemoveItem removes a line from the cart.
func (s *CartService) RemoveItem(cartID, itemID string) (*models.Cart, error) {
	cart, err := s.openCart(cartID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	found := false
	for _, item := range cart.Items {
		if item.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return nil, fmt.Errorf("cart item %s: %w", itemID, apperrors.ErrNotFound)
	}
	cart.Items = kept

	return s.persist(cart)
}

func (s *CartService) openCart(cartID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return nil, err
	}
	if cart.Status != models.CartStatusOpen {
		return nil, apperrors.NewValidationError("cart %s is already checked out", cartID)
	}
	return cart, nil
}

func (s *CartService) persist(cart *models.Cart) (*models.Cart, error) {
	cart.Recalculate()
	if err := s.cartRepo.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}
