package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/pagination"
)

// CartItem.Price is whatever the client last saw. It is accepted and ignored.
type CartItem struct {
	ID       string           `json:"id"       validate:"required,max=64"`
	Quantity int              `json:"quantity" validate:"gt=0"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

type CheckoutRequest struct {
	FullName      string     `json:"fullName"      validate:"required,min=2,max=100"`
	Email         string     `json:"email"         validate:"required,email,max=255"`
	Phone         string     `json:"phone"         validate:"required,min=6,max=32"`
	Address       string     `json:"address"       validate:"required,min=5,max=255"`
	City          string     `json:"city"          validate:"required,min=2,max=100"`
	PaymentMethod string     `json:"paymentMethod" validate:"required,oneof=CASH_ON_DELIVERY CMI STRIPE"`
	Notes         string     `json:"notes"         validate:"max=500"`
	CartItems     []CartItem `json:"cartItems"     validate:"required,min=1,dive"`
}

type CheckoutResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type ProductList struct {
	Data []models.Product `json:"data"`
	Meta pagination.Meta  `json:"meta"`
}

type CreateProductRequest struct {
	Name        string          `json:"name"        validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	ImageURL    string          `json:"image_url"   validate:"omitempty,url"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"       validate:"gte=0"`
	Featured    bool            `json:"featured"`
	CategoryID  *string         `json:"category_id"`
}

type PatchProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	ImageURL    *string          `json:"image_url"   validate:"omitempty,url"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"       validate:"omitempty,gte=0"`
	Featured    *bool            `json:"featured"`
	CategoryID  *string          `json:"category_id"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=100"`
	Slug        string `json:"slug"        validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SetCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderList struct {
	Data []models.Order  `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

type ConfirmationItem struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

type Confirmation struct {
	OrderID       string               `json:"order_id"`
	Status        models.OrderStatus   `json:"status"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Items         []ConfirmationItem   `json:"items"`
}

func NewConfirmation(o *models.Order) Confirmation {
	items := make([]ConfirmationItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ConfirmationItem{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			Quantity:     it.Quantity,
			PriceAtOrder: it.PriceAtOrder,
			LineTotal:    it.LineTotal(),
		})
	}
	return Confirmation{
		OrderID:       o.ID,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		TotalAmount:   o.TotalAmount,
		Items:         items,
	}
}
