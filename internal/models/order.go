package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the five known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a snapshot of a cart line taken at checkout.
type OrderItem struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"` // Price at the time of order
	Quantity  int             `json:"quantity"`
}

// Order is a simulated customer order. Orders live only in memory.
type Order struct {
	ID              int64           `json:"id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	Status          OrderStatus     `json:"status"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
	OrderDate       time.Time       `json:"order_date"`
	PaymentMethod   string          `json:"payment_method"`
}

// SnapshotLines copies cart lines into order items.
func SnapshotLines(lines []CartLine) []OrderItem {
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     l.Product.Price,
			Quantity:  l.Quantity,
		})
	}
	return items
}

// Clone returns a copy of o that does not share its item slice.
func (o Order) Clone() Order {
	cp := o
	cp.Items = append([]OrderItem(nil), o.Items...)
	return cp
}
