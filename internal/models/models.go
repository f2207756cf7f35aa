package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentCMI            PaymentMethod = "CMI"
	PaymentStripe         PaymentMethod = "STRIPE"
)

type Category struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"    json:"id"`
	Name        string    `gorm:"not null"                       json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null"           json:"slug"`
	Description string    `                                      json:"description,omitempty"`
	CreatedAt   time.Time `                                      json:"created_at"`
	UpdatedAt   time.Time `                                      json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Product.Price is the only price the checkout ever trusts.
type Product struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)"    json:"id"`
	Name        string          `gorm:"not null"                       json:"name"`
	Description string          `gorm:"not null;default:''"            json:"description"`
	ImageURL    string          `                                      json:"image_url,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"    json:"price"`
	Stock       int             `gorm:"not null;default:0"             json:"stock"`
	Featured    bool            `gorm:"not null;default:false;index"   json:"featured"`
	CategoryID  *string         `gorm:"type:varchar(36);index"         json:"category_id,omitempty"`
	Category    *Category       `gorm:"constraint:OnDelete:SET NULL"   json:"category,omitempty"`
	CreatedAt   time.Time       `gorm:"index"                          json:"created_at"`
	UpdatedAt   time.Time       `                                      json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"                          json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type Order struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)"                  json:"id"`
	UserID        *string         `gorm:"index"                                        json:"user_id,omitempty"`
	FullName      string          `gorm:"not null"                                     json:"full_name"`
	Email         string          `gorm:"not null;index"                               json:"email"`
	Phone         string          `gorm:"not null"                                     json:"phone"`
	Address       string          `gorm:"not null"                                     json:"address"`
	City          string          `gorm:"not null"                                     json:"city"`
	Notes         string          `                                                    json:"notes,omitempty"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(32);not null"                    json:"payment_method"`
	Status        OrderStatus     `gorm:"type:varchar(16);not null;default:PENDING;index" json:"status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"                  json:"total_amount"`
	Items         []OrderItem     `gorm:"constraint:OnDelete:CASCADE"                  json:"items,omitempty"`
	CreatedAt     time.Time       `gorm:"index"                                        json:"created_at"`
	UpdatedAt     time.Time       `                                                    json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem.PriceAtOrder is frozen at purchase time and never follows later
// catalog price changes.
type OrderItem struct {
	ID           string          `gorm:"primaryKey;type:varchar(36)"        json:"id"`
	OrderID      string          `gorm:"type:varchar(36);index;not null"    json:"order_id"`
	ProductID    string          `gorm:"type:varchar(36);index;not null"    json:"product_id"`
	Product      *Product        `                                          json:"product,omitempty"`
	ProductName  string          `gorm:"not null;default:''"                json:"product_name"`
	Quantity     int             `gorm:"not null;check:quantity > 0"        json:"quantity"`
	PriceAtOrder decimal.Decimal `gorm:"type:decimal(12,2);not null"        json:"price_at_order"`
	CreatedAt    time.Time       `                                          json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtOrder.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Category{}, &Product{}, &Order{}, &OrderItem{})
}
