package tool

import (
	"time"

	"github.com/uptrace/bun"
)

type productRow struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          int64   `bun:"id,pk,autoincrement"`
	SKU         string  `bun:"sku,notnull,unique"`
	Name        string  `bun:"name,notnull"`
	Category    string  `bun:"category,notnull"`
	Description string  `bun:"description"`
	Price       float64 `bun:"price,notnull"`
	InStock     bool    `bun:"in_stock,notnull,default:true"`
}

type promotionRow struct {
	bun.BaseModel `bun:"table:promotions,alias:pr"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Title           string    `bun:"title,notnull"`
	Details         string    `bun:"details"`
	DiscountPercent float64   `bun:"discount_percent,notnull,default:0"`
	ValidUntil      time.Time `bun:"valid_until,notnull"`
}

type orderRow struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID             int64     `bun:"id,pk,autoincrement"`
	CustomerName   string    `bun:"customer_name,notnull"`
	Status         string    `bun:"status,notnull"`
	TrackingNumber string    `bun:"tracking_number"`
	TotalAmount    float64   `bun:"total_amount,notnull,default:0"`
	UpdatedAt      time.Time `bun:"updated_at,notnull"`
	ProductID      int64     `bun:"product_id,notnull"`

	Product *productRow `bun:"rel:belongs-to,join:product_id=id"`
}

type ticketRow struct {
	bun.BaseModel `bun:"table:support_tickets,alias:t"`

	ID        int64     `bun:"id,pk,autoincrement"`
	OrderID   int64     `bun:"order_id,nullzero"`
	Issue     string    `bun:"issue,notnull"`
	Details   string    `bun:"details"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type returnRequestRow struct {
	bun.BaseModel `bun:"table:return_requests,alias:rr"`

	ID        int64     `bun:"id,pk,autoincrement"`
	OrderID   int64     `bun:"order_id,notnull"`
	Reason    string    `bun:"reason,notnull"`
	Notes     string    `bun:"notes"`
	Status    string    `bun:"status,notnull,default:'requested'"`
	CreatedAt time.Time `bun:"created_at,notnull"`

	Order *orderRow `bun:"rel:belongs-to,join:order_id=id"`
}

type leadRow struct {
	bun.BaseModel `bun:"table:leads,alias:l"`

	ID             int64     `bun:"id,pk,autoincrement"`
	ConversationID string    `bun:"conversation_id,notnull"`
	Name           string    `bun:"name,notnull"`
	Phone          string    `bun:"phone,notnull"`
	Interest       string    `bun:"interest"`
	Notes          string    `bun:"notes"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}

type faqRow struct {
	bun.BaseModel `bun:"table:faqs,alias:f"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Question string `bun:"question,notnull"`
	Answer   string `bun:"answer,notnull"`
}

func domainModels() []any {
	return []any{
		(*productRow)(nil),
		(*promotionRow)(nil),
		(*orderRow)(nil),
		(*ticketRow)(nil),
		(*returnRequestRow)(nil),
		(*leadRow)(nil),
		(*faqRow)(nil),
	}
}
