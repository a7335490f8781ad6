package tool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	contractx "github.com/electromart/agenthub/agent/contract"
)

const productSearchLimit = 8

// Gateway implements contract.Tools on Postgres. FAQ search is delegated to
// the index, lead notifications to the notifier; a notifier failure never
// fails the lead creation.
type Gateway struct {
	db       *bun.DB
	faq      *FAQIndex
	notifier contractx.Notifier
}

func NewGateway(db *bun.DB, faq *FAQIndex, notifier contractx.Notifier) (*Gateway, error) {
	if db == nil {
		return nil, errors.New("db handle is required")
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Gateway{db: db, faq: faq, notifier: notifier}, nil
}

// CreateTables creates the domain tables if missing.
func (g *Gateway) CreateTables(ctx context.Context) error {
	for _, model := range domainModels() {
		if _, err := g.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (g *Gateway) SearchProducts(ctx context.Context, query string, inStockOnly bool) ([]contractx.Product, error) {
	var rows []productRow
	q := g.db.NewSelect().Model(&rows)
	if inStockOnly {
		q = q.Where("in_stock = TRUE")
	}

	matchedCategory, err := g.matchCategory(ctx, query)
	if err != nil {
		return nil, err
	}

	if matchedCategory != "" {
		q = q.Where("category = ?", matchedCategory)
		if brand := ExtractBrand(query); brand != "" {
			q = q.Where("name ILIKE ?", "%"+brand+"%")
		}
	} else if kw := ExtractKeyword(query); kw != "" {
		like := "%" + kw + "%"
		q = q.WhereGroup(" AND ", func(sub *bun.SelectQuery) *bun.SelectQuery {
			return sub.
				WhereOr("name ILIKE ?", like).
				WhereOr("category ILIKE ?", like).
				WhereOr("description ILIKE ?", like).
				WhereOr("sku ILIKE ?", like)
		})
	}

	if err := q.Limit(productSearchLimit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: search products: %v", contractx.ErrToolFailure, err)
	}

	out := make([]contractx.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, contractx.Product{
			SKU:         row.SKU,
			Name:        row.Name,
			Category:    row.Category,
			Description: row.Description,
			Price:       row.Price,
			InStock:     row.InStock,
		})
	}
	return out, nil
}

// matchCategory compares query tokens against the distinct categories in the
// catalog, longest category name first.
func (g *Gateway) matchCategory(ctx context.Context, query string) (string, error) {
	var categories []string
	err := g.db.NewSelect().Model((*productRow)(nil)).
		ColumnExpr("DISTINCT category").
		Scan(ctx, &categories)
	if err != nil {
		return "", fmt.Errorf("%w: list categories: %v", contractx.ErrToolFailure, err)
	}

	sort.Slice(categories, func(i, j int) bool { return len(categories[i]) > len(categories[j]) })

	joined := " " + strings.Join(SearchTokens(query), " ") + " "
	for _, cat := range categories {
		if cat == "" {
			continue
		}
		if strings.Contains(joined, " "+strings.ToLower(cat)+" ") {
			return cat, nil
		}
	}
	return "", nil
}

func (g *Gateway) ListPromotions(ctx context.Context) ([]contractx.Promotion, error) {
	var rows []promotionRow
	err := g.db.NewSelect().Model(&rows).
		Order("valid_until DESC").
		Limit(10).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list promotions: %v", contractx.ErrToolFailure, err)
	}

	out := make([]contractx.Promotion, 0, len(rows))
	for _, row := range rows {
		out = append(out, contractx.Promotion{
			Title:           row.Title,
			Details:         row.Details,
			DiscountPercent: row.DiscountPercent,
			ValidUntil:      row.ValidUntil,
		})
	}
	return out, nil
}

func (g *Gateway) OrderStatus(ctx context.Context, orderID int64) (contractx.OrderInfo, error) {
	if orderID <= 0 {
		return contractx.OrderInfo{Found: false, NeedOrderID: true}, nil
	}

	row := new(orderRow)
	err := g.db.NewSelect().Model(row).
		Relation("Product").
		Where("o.id = ?", orderID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return contractx.OrderInfo{Found: false, OrderID: orderID}, nil
	}
	if err != nil {
		return contractx.OrderInfo{}, fmt.Errorf("%w: order lookup: %v", contractx.ErrToolFailure, err)
	}

	info := contractx.OrderInfo{
		Found:          true,
		OrderID:        row.ID,
		Status:         row.Status,
		TrackingNumber: row.TrackingNumber,
		TotalAmount:    row.TotalAmount,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.Product != nil {
		info.Product = &contractx.Product{
			SKU:      row.Product.SKU,
			Name:     row.Product.Name,
			Category: row.Product.Category,
			Price:    row.Product.Price,
			InStock:  row.Product.InStock,
		}
	}
	return info, nil
}

func (g *Gateway) CreateReturnRequest(ctx context.Context, orderID int64, reason, notes string) (contractx.ReturnReceipt, error) {
	existing := new(returnRequestRow)
	err := g.db.NewSelect().Model(existing).
		Where("order_id = ?", orderID).
		Order("id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return contractx.ReturnReceipt{}, fmt.Errorf("%w: return lookup: %v", contractx.ErrToolFailure, err)
	}
	if err == nil && (existing.Status == "requested" || existing.Status == "approved") {
		return contractx.ReturnReceipt{
			ReturnRequestID: existing.ID,
			Status:          existing.Status,
			CreatedAt:       existing.CreatedAt,
			AlreadyExists:   true,
		}, nil
	}

	row := &returnRequestRow{
		OrderID:   orderID,
		Reason:    truncate(reason, 200),
		Notes:     notes,
		Status:    "requested",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := g.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return contractx.ReturnReceipt{}, fmt.Errorf("%w: create return: %v", contractx.ErrToolFailure, err)
	}

	return contractx.ReturnReceipt{
		ReturnRequestID: row.ID,
		Status:          row.Status,
		CreatedAt:       row.CreatedAt,
	}, nil
}

func (g *Gateway) ReturnRequest(ctx context.Context, returnRequestID int64) (contractx.ReturnInfo, error) {
	row := new(returnRequestRow)
	err := g.db.NewSelect().Model(row).
		Relation("Order").
		Relation("Order.Product").
		Where("rr.id = ?", returnRequestID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return contractx.ReturnInfo{Found: false, ReturnRequestID: returnRequestID}, nil
	}
	if err != nil {
		return contractx.ReturnInfo{}, fmt.Errorf("%w: return lookup: %v", contractx.ErrToolFailure, err)
	}

	info := contractx.ReturnInfo{
		Found:           true,
		ReturnRequestID: row.ID,
		Status:          row.Status,
		Reason:          row.Reason,
		Notes:           row.Notes,
		OrderID:         row.OrderID,
	}
	if row.Order != nil {
		info.OrderStatus = row.Order.Status
		info.TrackingNumber = row.Order.TrackingNumber
		if row.Order.Product != nil {
			info.Product = &contractx.Product{
				SKU:      row.Order.Product.SKU,
				Name:     row.Order.Product.Name,
				Category: row.Order.Product.Category,
				Price:    row.Order.Product.Price,
				InStock:  row.Order.Product.InStock,
			}
		}
	}
	return info, nil
}

func (g *Gateway) CreateTicket(ctx context.Context, issue, details string, orderID int64) (contractx.TicketReceipt, error) {
	row := &ticketRow{
		OrderID:   orderID,
		Issue:     truncate(issue, 200),
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := g.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return contractx.TicketReceipt{}, fmt.Errorf("%w: create ticket: %v", contractx.ErrToolFailure, err)
	}
	return contractx.TicketReceipt{TicketID: row.ID, CreatedAt: row.CreatedAt}, nil
}

func (g *Gateway) CreateLead(ctx context.Context, lead contractx.Lead) (contractx.LeadReceipt, error) {
	row := &leadRow{
		ConversationID: lead.ConversationID,
		Name:           strings.TrimSpace(lead.Name),
		Phone:          strings.TrimSpace(lead.Phone),
		Interest:       strings.TrimSpace(lead.Interest),
		Notes:          strings.TrimSpace(lead.Notes),
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := g.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return contractx.LeadReceipt{}, fmt.Errorf("%w: create lead: %v", contractx.ErrToolFailure, err)
	}

	receipt := contractx.LeadReceipt{LeadID: row.ID, CreatedAt: row.CreatedAt}
	if err := g.notifier.NotifyLead(ctx, lead, receipt); err != nil {
		log.Warn().Err(err).Int64("lead_id", row.ID).Msg("lead notification dispatch failed")
	}
	return receipt, nil
}

func (g *Gateway) SearchFAQ(ctx context.Context, query string, k int) ([]contractx.FAQEntry, error) {
	if g.faq == nil {
		return nil, nil
	}
	return g.faq.Search(ctx, query, k)
}

// LoadFAQEntries reads all FAQ rows, used to build the search index at boot.
func (g *Gateway) LoadFAQEntries(ctx context.Context) ([]contractx.FAQEntry, error) {
	var rows []faqRow
	if err := g.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: load faqs: %v", contractx.ErrToolFailure, err)
	}
	out := make([]contractx.FAQEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, contractx.FAQEntry{Question: row.Question, Answer: row.Answer})
	}
	return out, nil
}

// SetFAQIndex attaches the search index once it has been built.
func (g *Gateway) SetFAQIndex(idx *FAQIndex) {
	g.faq = idx
}

// NoopNotifier is used when no SMTP capability is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyLead(context.Context, contractx.Lead, contractx.LeadReceipt) error {
	return nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
