package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// SeedDemoData resets the domain tables and loads the demo catalog.
func SeedDemoData(ctx context.Context, db *bun.DB) error {
	for _, model := range domainModels() {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
		if _, err := db.NewCreateTable().Model(model).Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	now := time.Now().UTC()

	products := []productRow{
		{SKU: "APL-IP15-128-BLK", Name: "Apple iPhone 15 (128GB) - Black", Category: "Phone",
			Description: "6.1-inch Super Retina XDR, A16 Bionic, dual camera, USB-C, 128GB storage.",
			Price:       289999, InStock: true},
		{SKU: "APL-IP15P-256-BLU", Name: "Apple iPhone 15 Pro (256GB) - Blue Titanium", Category: "Phone",
			Description: "6.1-inch ProMotion display, A17 Pro, triple camera, USB-C, 256GB storage.",
			Price:       429999, InStock: true},
		{SKU: "SAM-S24U-256-BLK", Name: "Samsung Galaxy S24 Ultra (256GB) - Titanium Black", Category: "Phone",
			Description: "6.8-inch Dynamic AMOLED 2X, Snapdragon 8 Gen 3, 200MP camera, S Pen.",
			Price:       399999, InStock: true},
		{SKU: "SAM-A55-128-NVY", Name: "Samsung Galaxy A55 (128GB) - Navy", Category: "Phone",
			Description: "6.6-inch Super AMOLED, Exynos 1480, 50MP camera, 128GB storage.",
			Price:       134999, InStock: false},
		{SKU: "SAM-55Q60-QLED", Name: "Samsung 55\" Q60C QLED 4K TV", Category: "TV",
			Description: "55-inch QLED 4K, Quantum HDR, Tizen smart TV.",
			Price:       289999, InStock: true},
		{SKU: "LG-43UR73-LED", Name: "LG 43\" UR7300 4K Smart TV", Category: "TV",
			Description: "43-inch UHD 4K, webOS, HDR10 Pro.",
			Price:       159999, InStock: true},
		{SKU: "LG-260L-SLV", Name: "LG 260L Double Door Fridge - Silver", Category: "Fridge",
			Description: "260-litre double door, smart inverter compressor, frost free.",
			Price:       219999, InStock: true},
		{SKU: "SAM-345L-BLK", Name: "Samsung 345L Top Mount Fridge - Black", Category: "Fridge",
			Description: "345-litre top mount, digital inverter, all-around cooling.",
			Price:       289999, InStock: false},
	}
	if _, err := db.NewInsert().Model(&products).Exec(ctx); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	promotions := []promotionRow{
		{Title: "New Year Phone Fest", Details: "Up to 15% off selected smartphones. Online only.",
			DiscountPercent: 15, ValidUntil: now.AddDate(0, 1, 0)},
		{Title: "Big Screen Bonanza", Details: "10% off all TVs 50 inches and above, free wall mount.",
			DiscountPercent: 10, ValidUntil: now.AddDate(0, 0, 14)},
		{Title: "Kitchen Upgrade", Details: "8% off refrigerators with free delivery within Colombo.",
			DiscountPercent: 8, ValidUntil: now.AddDate(0, 2, 0)},
	}
	if _, err := db.NewInsert().Model(&promotions).Exec(ctx); err != nil {
		return fmt.Errorf("seed promotions: %w", err)
	}

	orders := []orderRow{
		{ID: 101, CustomerName: "Nimal Perera", Status: "shipped", TrackingNumber: "TRK-8841-LK",
			TotalAmount: 289999, UpdatedAt: now.AddDate(0, 0, -2), ProductID: 1},
		{ID: 102, CustomerName: "Sanduni Silva", Status: "processing", TrackingNumber: "",
			TotalAmount: 159999, UpdatedAt: now.AddDate(0, 0, -1), ProductID: 6},
		{ID: 103, CustomerName: "Ruwan Fernando", Status: "delivered", TrackingNumber: "TRK-7712-LK",
			TotalAmount: 219999, UpdatedAt: now.AddDate(0, 0, -7), ProductID: 7},
	}
	if _, err := db.NewInsert().Model(&orders).Exec(ctx); err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}

	faqs := []faqRow{
		{Question: "What is your return policy?",
			Answer: "Items can be returned within 14 days of delivery in original packaging. Refunds are issued to the original payment method within 7 working days."},
		{Question: "How long is the warranty on phones?",
			Answer: "All phones carry a 12-month manufacturer warranty covering hardware defects. Physical and liquid damage are not covered."},
		{Question: "My phone won't turn on, what should I do?",
			Answer: "Hold the power button for 15 seconds to force restart. If it still won't start, charge with the original charger for 30 minutes and try again."},
		{Question: "How do I set up my new smart TV?",
			Answer: "Connect the TV to power and Wi-Fi, then follow the on-screen setup. Sign in to your account to enable streaming apps."},
		{Question: "Do you offer cash on delivery?",
			Answer: "Cash on delivery is available within Colombo for orders under LKR 500,000. Bank transfer and card payments are accepted islandwide."},
		{Question: "My fridge is not cooling properly.",
			Answer: "Check that the thermostat is set between 3 and 5, leave 5cm clearance behind the unit, and avoid overloading shelves. If cooling does not improve in 24 hours, request a service visit."},
	}
	if _, err := db.NewInsert().Model(&faqs).Exec(ctx); err != nil {
		return fmt.Errorf("seed faqs: %w", err)
	}

	return nil
}
