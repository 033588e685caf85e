package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirillov6/marketplace-service/internal/entities"

	"github.com/google/uuid"
)

type CartRepo interface {
	GetCartByCustomerID(ctx context.Context, customerID uuid.UUID) (entities.Cart, error)
	CreateCart(ctx context.Context, customerID uuid.UUID) (entities.Cart, error)
	SaveCart(ctx context.Context, cart entities.Cart) error
}

type SellerProvider interface {
	GetSellerByID(ctx context.Context, id uuid.UUID) (entities.Seller, error)
}

type cartService struct {
	logger    *slog.Logger
	txManager TxManager
	carts     CartRepo
	products  ProductRepo
	sellers   SellerProvider
}

func NewCartService(logger *slog.Logger, txManager TxManager, carts CartRepo, products ProductRepo, sellers SellerProvider) *cartService {
	return &cartService{
		logger:    logger.With(slog.String("service", "cart")),
		txManager: txManager,
		carts:     carts,
		products:  products,
		sellers:   sellers,
	}
}

// GetCart returns the customer's cart, creating an empty one on first
// access.
func (s *cartService) GetCart(ctx context.Context, customerID uuid.UUID) (entities.Cart, error) {
	cart, err := s.carts.GetCartByCustomerID(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, entities.ErrCartNotFound) {
		return entities.Cart{}, err
	}
	return s.carts.CreateCart(ctx, customerID)
}

// AddItem merges quantity into an existing line or appends a new one
// with the current catalog price. The merged quantity must fit the
// available stock.
func (s *cartService) AddItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (entities.Cart, error) {
	var cart entities.Cart

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		product, err := s.loadSellableProduct(ctx, productID)
		if err != nil {
			return err
		}

		cart, err = s.GetCart(ctx, customerID)
		if err != nil {
			return err
		}

		wanted := quantity
		if i := cart.ItemIndex(productID); i >= 0 {
			wanted += cart.Items[i].Quantity
		}
		if wanted > product.Stock {
			return fmt.Errorf("%w: %d of %q available", entities.ErrInsufficientStock, product.Stock, product.Name)
		}

		if i := cart.ItemIndex(productID); i >= 0 {
			cart.Items[i].Quantity = wanted
			cart.Items[i].Price = product.Price
		} else {
			cart.Items = append(cart.Items, entities.CartItem{
				ProductID: productID,
				Quantity:  quantity,
				Price:     product.Price,
			})
		}
		cart.Recalculate()

		return s.carts.SaveCart(ctx, cart)
	})
	if err != nil {
		return entities.Cart{}, err
	}
	return cart, nil
}

// UpdateItem sets an existing line's quantity outright and refreshes
// its unit price from the catalog.
func (s *cartService) UpdateItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (entities.Cart, error) {
	var cart entities.Cart

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		cart, err = s.carts.GetCartByCustomerID(ctx, customerID)
		if err != nil {
			return err
		}

		i := cart.ItemIndex(productID)
		if i < 0 {
			return entities.ErrCartItemNotFound
		}

		if quantity <= 0 {
			cart.RemoveItem(productID)
			return s.carts.SaveCart(ctx, cart)
		}

		product, err := s.loadSellableProduct(ctx, productID)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return fmt.Errorf("%w: %d of %q available", entities.ErrInsufficientStock, product.Stock, product.Name)
		}

		cart.Items[i].Quantity = quantity
		cart.Items[i].Price = product.Price
		cart.Recalculate()

		return s.carts.SaveCart(ctx, cart)
	})
	if err != nil {
		return entities.Cart{}, err
	}
	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (entities.Cart, error) {
	var cart entities.Cart

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		cart, err = s.carts.GetCartByCustomerID(ctx, customerID)
		if err != nil {
			return err
		}
		if !cart.RemoveItem(productID) {
			return entities.ErrCartItemNotFound
		}
		return s.carts.SaveCart(ctx, cart)
	})
	if err != nil {
		return entities.Cart{}, err
	}
	return cart, nil
}

func (s *cartService) ClearCart(ctx context.Context, customerID uuid.UUID) (entities.Cart, error) {
	cart, err := s.carts.GetCartByCustomerID(ctx, customerID)
	if err != nil {
		return entities.Cart{}, err
	}
	cart.Clear()
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return entities.Cart{}, err
	}
	return cart, nil
}

// loadSellableProduct rejects products whose seller is not approved,
// so suspended shops drop out of carts immediately.
func (s *cartService) loadSellableProduct(ctx context.Context, productID uuid.UUID) (entities.Product, error) {
	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return entities.Product{}, err
	}
	seller, err := s.sellers.GetSellerByID(ctx, product.SellerID)
	if err != nil {
		return entities.Product{}, err
	}
	if seller.Status != entities.ApprovalApproved {
		return entities.Product{}, entities.ErrProductUnavailable
	}
	return product, nil
}
