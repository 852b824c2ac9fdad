package repositories

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CatalogSeed is the static demo catalog.
func CatalogSeed() []models.Product {
	return []models.Product{
		{
			ID: 1, Name: "iPhone 15 Pro", Category: "Smartphones", Price: price("999.00"),
			Description: "Titanium design with the A17 Pro chip and a 48MP main camera.",
			Images:      models.StringList{"/images/iphone-15-pro-1.jpg", "/images/iphone-15-pro-2.jpg"},
			Features:    models.StringList{"A17 Pro chip", "48MP camera", "USB-C"},
		},
		{
			ID: 2, Name: `MacBook Pro 16"`, Category: "Laptops", Price: price("1999.00"),
			Description: "M3 Pro laptop with a Liquid Retina XDR display.",
			Images:      models.StringList{"/images/macbook-pro-16-1.jpg"},
			Features:    models.StringList{"M3 Pro chip", "18GB memory", "22-hour battery"},
		},
		{
			ID: 3, Name: "iPad Pro", Category: "Tablets", Price: price("799.00"),
			Description: "Thin tablet with the M2 chip and ProMotion display.",
			Images:      models.StringList{"/images/ipad-pro-1.jpg"},
			Features:    models.StringList{"M2 chip", "ProMotion", "Face ID"},
		},
		{
			ID: 4, Name: "AirPods Pro", Category: "Accessories", Price: price("249.00"),
			Description: "Wireless earbuds with active noise cancellation.",
			Images:      models.StringList{"/images/airpods-pro-1.jpg"},
			Features:    models.StringList{"Active noise cancellation", "Transparency mode"},
		},
		{
			ID: 5, Name: "Apple Watch Series 9", Category: "Accessories", Price: price("399.00"),
			Description: "Smartwatch with double tap gesture and a brighter display.",
			Images:      models.StringList{"/images/apple-watch-9-1.jpg"},
			Features:    models.StringList{"S9 chip", "Double tap", "Blood oxygen"},
		},
		{
			ID: 6, Name: "HomePod mini", Category: "Accessories", Price: price("99.00"),
			Description: "Compact smart speaker with room-filling sound.",
			Images:      models.StringList{"/images/homepod-mini-1.jpg"},
			Features:    models.StringList{"Siri", "Intercom"},
		},
		{
			ID: 7, Name: "Galaxy S24 Ultra", Category: "Smartphones", Price: price("1299.99"),
			Description: "Android flagship with a built-in S Pen.",
			Images:      models.StringList{"/images/galaxy-s24-ultra-1.jpg"},
			Features:    models.StringList{"S Pen", "200MP camera"},
		},
		{
			ID: 8, Name: "USB-C Charging Cable", Category: "Accessories", Price: price("19.00"),
			Description: "Braided 2m USB-C to USB-C cable.",
			Images:      models.StringList{"/images/usb-c-cable-1.jpg"},
		},
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func item(id int, name, p string, qty int) models.OrderItem {
	return models.OrderItem{ProductID: id, Name: name, Price: price(p), Quantity: qty}
}

// DemoOrders is the initial admin order collection.
func DemoOrders() []models.Order {
	return []models.Order{
		{
			ID: 1001, CustomerName: "John Doe", CustomerEmail: "john.doe@example.com", Status: models.OrderStatusDelivered,
			Items:       []models.OrderItem{item(1, "iPhone 15 Pro", "999", 1)},
			TotalAmount: price("999"), ShippingAddress: "123 Main St, New York, NY 10001",
			OrderDate: day("2023-06-15"), PaymentMethod: "Credit Card",
		},
		{
			ID: 1002, CustomerName: "Jane Smith", CustomerEmail: "jane.smith@example.com", Status: models.OrderStatusShipped,
			Items:       []models.OrderItem{item(2, `MacBook Pro 16"`, "1999", 1)},
			TotalAmount: price("1999"), ShippingAddress: "456 Elm St, Los Angeles, CA 90001",
			OrderDate: day("2023-06-14"), PaymentMethod: "PayPal",
		},
		{
			ID: 1003, CustomerName: "Bob Johnson", CustomerEmail: "bob.johnson@example.com", Status: models.OrderStatusProcessing,
			Items:       []models.OrderItem{item(3, "iPad Pro", "799", 1), item(4, "AirPods Pro", "249", 1)},
			TotalAmount: price("1048"), ShippingAddress: "789 Oak St, Chicago, IL 60007",
			OrderDate: day("2023-06-13"), PaymentMethod: "Credit Card",
		},
		{
			ID: 1004, CustomerName: "Alice Brown", CustomerEmail: "alice.brown@example.com", Status: models.OrderStatusPending,
			Items:       []models.OrderItem{item(5, "Apple Watch Series 9", "399", 1)},
			TotalAmount: price("399"), ShippingAddress: "101 Pine St, Seattle, WA 98101",
			OrderDate: day("2023-06-12"), PaymentMethod: "Apple Pay",
		},
		{
			ID: 1005, CustomerName: "Michael Wilson", CustomerEmail: "michael.wilson@example.com", Status: models.OrderStatusCancelled,
			Items:       []models.OrderItem{item(6, "HomePod mini", "99", 2)},
			TotalAmount: price("198"), ShippingAddress: "202 Maple St, Boston, MA 02108",
			OrderDate: day("2023-06-11"), PaymentMethod: "Credit Card",
		},
	}
}

// SeedProducts loads products into repo, skipping IDs that already exist.
func SeedProducts(repo ProductRepository, products []models.Product) (int, error) {
	created := 0
	for i := range products {
		if _, err := repo.GetByID(products[i].ID); err == nil {
			continue
		}
		if err := repo.Create(&products[i]); err != nil {
			return created, fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
		}
		created++
	}
	return created, nil
}

// SeedOrders loads orders into repo.
func SeedOrders(repo OrderRepository, orders []models.Order) error {
	for i := range orders {
		if err := repo.Create(&orders[i]); err != nil {
			return fmt.Errorf("failed to seed order %d: %w", orders[i].ID, err)
		}
	}
	return nil
}
