package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	contractx "github.com/electromart/agenthub/agent/contract"
)

type fakeTools struct {
	products   []contractx.Product
	searchErr  error
	searches   []string
	promotions []contractx.Promotion
	promoErr   error

	order    contractx.OrderInfo
	orderErr error

	returnReceipt contractx.ReturnReceipt
	returnErr     error
	returnsMade   []string

	returnInfo contractx.ReturnInfo

	ticketReceipt contractx.TicketReceipt
	ticketErr     error
	ticketsMade   []string

	leadReceipt contractx.LeadReceipt
	leadErr     error
	leadsMade   []contractx.Lead

	faqs []contractx.FAQEntry
}

func (f *fakeTools) SearchProducts(ctx context.Context, query string, inStockOnly bool) ([]contractx.Product, error) {
	f.searches = append(f.searches, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if inStockOnly {
		out := make([]contractx.Product, 0, len(f.products))
		for _, p := range f.products {
			if p.InStock {
				out = append(out, p)
			}
		}
		return out, nil
	}
	return append([]contractx.Product(nil), f.products...), nil
}

func (f *fakeTools) ListPromotions(ctx context.Context) ([]contractx.Promotion, error) {
	if f.promoErr != nil {
		return nil, f.promoErr
	}
	return append([]contractx.Promotion(nil), f.promotions...), nil
}

func (f *fakeTools) OrderStatus(ctx context.Context, orderID int64) (contractx.OrderInfo, error) {
	if f.orderErr != nil {
		return contractx.OrderInfo{}, f.orderErr
	}
	if f.order.OrderID != orderID {
		return contractx.OrderInfo{OrderID: orderID}, nil
	}
	return f.order, nil
}

func (f *fakeTools) CreateReturnRequest(ctx context.Context, orderID int64, reason, notes string) (contractx.ReturnReceipt, error) {
	if f.returnErr != nil {
		return contractx.ReturnReceipt{}, f.returnErr
	}
	f.returnsMade = append(f.returnsMade, reason)
	return f.returnReceipt, nil
}

func (f *fakeTools) ReturnRequest(ctx context.Context, returnRequestID int64) (contractx.ReturnInfo, error) {
	if f.returnInfo.ReturnRequestID != returnRequestID {
		return contractx.ReturnInfo{ReturnRequestID: returnRequestID}, nil
	}
	return f.returnInfo, nil
}

func (f *fakeTools) CreateTicket(ctx context.Context, issue, details string, orderID int64) (contractx.TicketReceipt, error) {
	if f.ticketErr != nil {
		return contractx.TicketReceipt{}, f.ticketErr
	}
	f.ticketsMade = append(f.ticketsMade, issue)
	if f.ticketReceipt.TicketID == 0 {
		f.ticketReceipt = contractx.TicketReceipt{TicketID: 9001, CreatedAt: time.Now()}
	}
	return f.ticketReceipt, nil
}

func (f *fakeTools) CreateLead(ctx context.Context, lead contractx.Lead) (contractx.LeadReceipt, error) {
	if f.leadErr != nil {
		return contractx.LeadReceipt{}, f.leadErr
	}
	f.leadsMade = append(f.leadsMade, lead)
	if f.leadReceipt.LeadID == 0 {
		f.leadReceipt = contractx.LeadReceipt{LeadID: int64(len(f.leadsMade)), CreatedAt: time.Now()}
	}
	return f.leadReceipt, nil
}

func (f *fakeTools) SearchFAQ(ctx context.Context, query string, k int) ([]contractx.FAQEntry, error) {
	return append([]contractx.FAQEntry(nil), f.faqs...), nil
}

type fakeCompleter struct {
	out   string
	err   error
	calls int
	users []string
}

func (f *fakeCompleter) Complete(ctx context.Context, system string, history []contractx.Turn, user string) (string, error) {
	f.calls++
	f.users = append(f.users, user)
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

var errCapability = errors.New("capability down")

func containsText(t, sub string) bool {
	return strings.Contains(t, sub)
}
