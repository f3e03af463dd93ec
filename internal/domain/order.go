package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"customerId"`
	Customer    Customer        `json:"customer"`
	Products    []Product       `gorm:"many2many:order_products" json:"products"`
	OrderDate   time.Time       `gorm:"index" json:"orderDate"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2)" json:"totalAmount"`
	Status      OrderStatus     `gorm:"type:varchar(30);index;default:'pending'" json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}
