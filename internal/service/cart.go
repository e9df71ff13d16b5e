package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const cartLoadTimeout = 10 * time.Second

type CartService struct {
	Repo *repo.GormRepo
	Effects

	loads singleflight.Group
}

func cartOf(userID uint) string {
	return fmt.Sprintf("Cart for user_id %d", userID)
}

// GetCartByUser returns the nested cart view, served from the cache when
// possible. Concurrent misses for one user share a single query.
func (s *CartService) GetCartByUser(ctx context.Context, userID uint) (*transport.CartDetailView, error) {
	var cached transport.CartDetailView
	if s.cachedCart(ctx, userID, &cached) {
		return &cached, nil
	}

	v, err, _ := s.loads.Do(strconv.FormatUint(uint64(userID), 10), func() (any, error) {
		// shared by every waiter, so one caller going away must not fail the rest
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cartLoadTimeout)
		defer cancel()

		cart, err := s.Repo.GetCartDetailByUser(lctx, userID)
		if err != nil {
			return nil, storeErr(err, cartOf(userID))
		}
		view := transport.NewCartDetailView(cart)
		s.storeCart(lctx, userID, view)
		return &view, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*transport.CartDetailView), nil
}

func (s *CartService) CreateCartForUser(ctx context.Context, userID uint, req transport.CartRequest) (*transport.CartDetailView, error) {
	cart, err := s.create(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	full, err := s.Repo.GetCartDetail(ctx, cart.ID)
	if err != nil {
		return nil, storeErr(err, withID("Cart", cart.ID))
	}
	view := transport.NewCartDetailView(full)
	return &view, nil
}

func (s *CartService) create(ctx context.Context, userID uint, req transport.CartRequest) (*models.Cart, error) {
	cart, err := req.NewCart(userID)
	if err != nil {
		return nil, err
	}
	ok, err := s.Repo.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, domain.NotFound("User with id %d not found", userID)
	}
	if err := s.Repo.CreateCart(ctx, cart); err != nil {
		return nil, storeErr(err, cartOf(userID))
	}
	s.dropCart(ctx, userID)
	s.publish(ctx, TopicCarts, "cart_created", userID, map[string]any{"cart_id": cart.ID, "user_id": userID})
	return cart, nil
}

func (s *CartService) UpdateCartByUser(ctx context.Context, userID uint, req transport.CartRequest) (*transport.CartDetailView, error) {
	cart, err := s.Repo.PatchCartByUser(ctx, userID, func(_ *gorm.DB, c *models.Cart) error {
		return req.Apply(c)
	})
	if err != nil {
		return nil, storeErr(err, cartOf(userID))
	}
	s.dropCart(ctx, userID)
	s.publish(ctx, TopicCarts, "cart_updated", userID, map[string]any{"cart_id": cart.ID, "user_id": userID})

	full, err := s.Repo.GetCartDetail(ctx, cart.ID)
	if err != nil {
		return nil, storeErr(err, withID("Cart", cart.ID))
	}
	view := transport.NewCartDetailView(full)
	return &view, nil
}

func (s *CartService) DeleteCartByUser(ctx context.Context, userID uint) error {
	if _, err := s.Repo.DeleteCartByUser(ctx, userID); err != nil {
		return storeErr(err, cartOf(userID))
	}
	s.dropCart(ctx, userID)
	s.publish(ctx, TopicCarts, "cart_deleted", userID, map[string]any{"user_id": userID})
	return nil
}

func (s *CartService) GetCart(ctx context.Context, id uint) (*models.Cart, error) {
	cart, err := s.Repo.GetCartDetail(ctx, id)
	return cart, storeErr(err, withID("Cart", id))
}

func (s *CartService) GetCarts(ctx context.Context, offset, limit int) (int64, []models.Cart, error) {
	total, items, err := s.Repo.GetCarts(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list carts: %w", err)
	}
	return total, items, nil
}

func (s *CartService) CreateCart(ctx context.Context, req transport.CartRequest) (*models.Cart, error) {
	if req.UserID == nil {
		return nil, domain.Invalid("user_id is required")
	}
	return s.create(ctx, *req.UserID, req)
}

func (s *CartService) PatchCart(ctx context.Context, id uint, req transport.CartRequest) (*models.Cart, error) {
	cart, err := s.Repo.PatchCart(ctx, id, func(_ *gorm.DB, c *models.Cart) error {
		return req.Apply(c)
	})
	if err != nil {
		return nil, storeErr(err, withID("Cart", id))
	}
	s.dropCart(ctx, cart.UserID)
	s.publish(ctx, TopicCarts, "cart_updated", cart.UserID, map[string]any{"cart_id": cart.ID, "user_id": cart.UserID})
	return cart, nil
}

func (s *CartService) DeleteCart(ctx context.Context, id uint) error {
	userID, err := s.Repo.DeleteCartAndItems(ctx, id)
	if err != nil {
		return storeErr(err, withID("Cart", id))
	}
	s.dropCart(ctx, userID)
	s.publish(ctx, TopicCarts, "cart_deleted", userID, map[string]any{"cart_id": id, "user_id": userID})
	return nil
}

func (s *CartService) GetCartItem(ctx context.Context, id uint) (*models.CartItem, error) {
	item, err := s.Repo.GetCartItem(ctx, id)
	return item, storeErr(err, withID("Cart item", id))
}

func (s *CartService) GetCartItems(ctx context.Context, offset, limit int) (int64, []models.CartItem, error) {
	total, items, err := s.Repo.GetCartItems(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list cart items: %w", err)
	}
	return total, items, nil
}

func (s *CartService) CreateCartItem(ctx context.Context, req transport.CreateCartItemRequest) (*models.CartItem, error) {
	item, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateCartItem(ctx, item); err != nil {
		return nil, storeErr(err, "Cart item")
	}
	s.dropOwner(ctx, item.CartID)
	return item, nil
}

func (s *CartService) PatchCartItem(ctx context.Context, id uint, req transport.PatchCartItemRequest) (*models.CartItem, error) {
	item, err := s.Repo.PatchCartItem(ctx, id, func(_ *gorm.DB, it *models.CartItem) error {
		return req.Apply(it)
	})
	if err != nil {
		return nil, storeErr(err, withID("Cart item", id))
	}
	s.dropOwner(ctx, item.CartID)
	return item, nil
}

func (s *CartService) DeleteCartItem(ctx context.Context, id uint) error {
	item, err := s.Repo.DeleteCartItem(ctx, id)
	if err != nil {
		return storeErr(err, withID("Cart item", id))
	}
	s.dropOwner(ctx, item.CartID)
	return nil
}

// dropOwner invalidates the cached view of the cart's owner. An unknown
// cart has no cached view, so lookup failures are ignored.
func (s *CartService) dropOwner(ctx context.Context, cartID uint) {
	if s.Carts == nil {
		return
	}
	userID, err := s.Repo.CartOwner(ctx, cartID)
	if err != nil {
		return
	}
	s.dropCart(ctx, userID)
}
