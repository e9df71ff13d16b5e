package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

// SalesService covers coupons, orders and promotions. Amounts are stored as
// given; nothing here prices or discounts anything.
type SalesService struct {
	Repo *repo.GormRepo
}

func (s *SalesService) GetCoupon(ctx context.Context, id uint) (*models.Coupon, error) {
	c, err := s.Repo.GetCoupon(ctx, id)
	return c, storeErr(err, withID("Coupon", id))
}

func (s *SalesService) GetCoupons(ctx context.Context, offset, limit int) (int64, []models.Coupon, error) {
	total, items, err := s.Repo.GetCoupons(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list coupons: %w", err)
	}
	return total, items, nil
}

func (s *SalesService) CreateCoupon(ctx context.Context, req transport.CreateCouponRequest) (*models.Coupon, error) {
	c, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	taken, err := s.Repo.CouponCodeTaken(ctx, c.Code, 0)
	if err != nil {
		return nil, fmt.Errorf("check coupon code: %w", err)
	}
	if taken {
		return nil, domain.Conflict("Coupon with code %s already exists", c.Code)
	}
	if err := s.Repo.CreateCoupon(ctx, c); err != nil {
		return nil, storeErr(err, "Coupon with code "+c.Code)
	}
	return c, nil
}

func (s *SalesService) PatchCoupon(ctx context.Context, id uint, req transport.PatchCouponRequest) (*models.Coupon, error) {
	c, err := s.Repo.PatchCoupon(ctx, id, func(tx *gorm.DB, c *models.Coupon) error {
		if err := req.Apply(c); err != nil {
			return err
		}
		if req.Code == nil {
			return nil
		}
		taken, err := repo.CouponCodeTakenIn(ctx, tx, c.Code, c.ID)
		if err != nil {
			return err
		}
		if taken {
			return domain.Conflict("Coupon with code %s already exists", c.Code)
		}
		return nil
	})
	return c, storeErr(err, withID("Coupon", id))
}

func (s *SalesService) DeleteCoupon(ctx context.Context, id uint) error {
	return storeErr(s.Repo.DeleteCoupon(ctx, id), withID("Coupon", id))
}

func (s *SalesService) GetCouponUsers(ctx context.Context, offset, limit int) (int64, []models.CouponUser, error) {
	total, items, err := s.Repo.GetCouponUsers(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list coupon users: %w", err)
	}
	return total, items, nil
}

func (s *SalesService) CreateCouponUser(ctx context.Context, req transport.CreateCouponUserRequest) (*models.CouponUser, error) {
	cu, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateCouponUser(ctx, cu); err != nil {
		return nil, storeErr(err, "Coupon user")
	}
	return cu, nil
}

func (s *SalesService) DeleteCouponUser(ctx context.Context, id uint) error {
	return storeErr(s.Repo.DeleteCouponUser(ctx, id), withID("Coupon user", id))
}

func (s *SalesService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	return o, storeErr(err, withID("Order", id))
}

func (s *SalesService) GetOrders(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	total, items, err := s.Repo.GetOrders(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list orders: %w", err)
	}
	return total, items, nil
}

func (s *SalesService) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error) {
	o, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateOrder(ctx, o); err != nil {
		return nil, storeErr(err, "Order")
	}
	return o, nil
}

func (s *SalesService) PatchOrder(ctx context.Context, id uint, req transport.PatchOrderRequest) (*models.Order, error) {
	o, err := s.Repo.PatchOrder(ctx, id, func(_ *gorm.DB, o *models.Order) error {
		return req.Apply(o)
	})
	return o, storeErr(err, withID("Order", id))
}

func (s *SalesService) DeleteOrder(ctx context.Context, id uint) error {
	return storeErr(s.Repo.DeleteOrder(ctx, id), withID("Order", id))
}

func (s *SalesService) GetOrderItem(ctx context.Context, id uint) (*models.OrderItem, error) {
	oi, err := s.Repo.GetOrderItem(ctx, id)
	return oi, storeErr(err, withID("Order item", id))
}

func (s *SalesService) GetOrderItems(ctx context.Context, offset, limit int) (int64, []models.OrderItem, error) {
	total, items, err := s.Repo.GetOrderItems(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list order items: %w", err)
	}
	return total, items, nil
}

func (s *SalesService) CreateOrderItem(ctx context.Context, req transport.CreateOrderItemRequest) (*models.OrderItem, error) {
	oi, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateOrderItem(ctx, oi); err != nil {
		return nil, storeErr(err, "Order item")
	}
	return oi, nil
}

func (s *SalesService) PatchOrderItem(ctx context.Context, id uint, req transport.PatchOrderItemRequest) (*models.OrderItem, error) {
	oi, err := s.Repo.PatchOrderItem(ctx, id, func(_ *gorm.DB, oi *models.OrderItem) error {
		return req.Apply(oi)
	})
	return oi, storeErr(err, withID("Order item", id))
}

func (s *SalesService) DeleteOrderItem(ctx context.Context, id uint) error {
	return storeErr(s.Repo.DeleteOrderItem(ctx, id), withID("Order item", id))
}

func (s *SalesService) GetPromotion(ctx context.Context, id uint) (*transport.PromotionView, error) {
	p, err := s.Repo.GetPromotion(ctx, id)
	if err != nil {
		return nil, storeErr(err, withID("Promotion", id))
	}
	v := transport.NewPromotionView(p)
	return &v, nil
}

func (s *SalesService) GetPromotions(ctx context.Context, offset, limit int) (int64, []transport.PromotionView, error) {
	total, items, err := s.Repo.GetPromotions(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list promotions: %w", err)
	}
	return total, transport.NewPromotionViews(items), nil
}

func (s *SalesService) CreatePromotion(ctx context.Context, req transport.CreatePromotionRequest) (*transport.PromotionView, error) {
	p, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreatePromotion(ctx, p, req.ProductIDs, req.CategoryIDs); err != nil {
		return nil, storeErr(err, "Promotion")
	}
	v := transport.NewPromotionView(p)
	return &v, nil
}

func (s *SalesService) PatchPromotion(ctx context.Context, id uint, req transport.PatchPromotionRequest) (*transport.PromotionView, error) {
	p, err := s.Repo.PatchPromotion(ctx, id, func(_ *gorm.DB, p *models.Promotion) error {
		return req.Apply(p)
	}, req.ProductIDs, req.CategoryIDs)
	if err != nil {
		return nil, storeErr(err, withID("Promotion", id))
	}
	v := transport.NewPromotionView(p)
	return &v, nil
}

func (s *SalesService) DeletePromotion(ctx context.Context, id uint) error {
	return storeErr(s.Repo.DeletePromotion(ctx, id), withID("Promotion", id))
}
