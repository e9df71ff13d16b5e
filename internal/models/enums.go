package models

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool { return r == RoleCustomer || r == RoleAdmin }

type StockUnit string

const (
	StockUnitKg    StockUnit = "Kg"
	StockUnitGm    StockUnit = "gm"
	StockUnitL     StockUnit = "L"
	StockUnitMl    StockUnit = "ml"
	StockUnitOther StockUnit = "other"
)

func (u StockUnit) Valid() bool {
	switch u {
	case StockUnitKg, StockUnitGm, StockUnitL, StockUnitMl, StockUnitOther:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentFailed
}

type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderOutForDelivery, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type PromotionType string

const (
	PromotionForProduct  PromotionType = "product"
	PromotionForCategory PromotionType = "category"
)

func (t PromotionType) Valid() bool {
	return t == PromotionForProduct || t == PromotionForCategory
}
