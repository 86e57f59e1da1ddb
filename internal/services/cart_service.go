package services

import (
	"github.com/billiampalad/UMKM-sub000/internal/models"
	"github.com/billiampalad/UMKM-sub000/internal/repositories"
)

// CartService handles business logic for per-user cart lines.
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

// GetCart returns the user's cart lines with product details.
func (s *CartService) GetCart(userID uint) ([]models.CartItem, error) {
	return s.cartRepo.GetByUser(userID)
}

// AddItem puts quantity units of a product into the user's cart. If the
// (user, product) line already exists the quantities are merged, keeping one
// row per pair.
func (s *CartService) AddItem(userID, productID uint, quantity int) (*models.CartItem, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.GetItem(userID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		newQuantity := existing.Quantity + quantity
		if err := s.cartRepo.UpdateQuantity(userID, productID, newQuantity); err != nil {
			return nil, err
		}
		existing.Quantity = newQuantity
		existing.Product = product
		return existing, nil
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.cartRepo.Create(item); err != nil {
		return nil, err
	}
	item.Product = product
	return item, nil
}

// UpdateItem replaces the quantity of an existing cart line.
func (s *CartService) UpdateItem(userID, productID uint, quantity int) error {
	return s.cartRepo.UpdateQuantity(userID, productID, quantity)
}

// RemoveItem deletes a single cart line.
func (s *CartService) RemoveItem(userID, productID uint) error {
	return s.cartRepo.Remove(userID, productID)
}

// ClearCart deletes every cart line for the user and returns how many were removed.
func (s *CartService) ClearCart(userID uint) (int64, error) {
	return s.cartRepo.ClearForUser(userID)
}
