package handlers

import (
	"fmt"
	"strings"

	contractx "github.com/electromart/agenthub/agent/contract"
	statex "github.com/electromart/agenthub/agent/state"
)

// formatLKR renders a price as whole rupees with thousand separators.
func formatLKR(price float64) string {
	whole := fmt.Sprintf("%.0f", price)
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}
	if neg {
		return "LKR -" + b.String()
	}
	return "LKR " + b.String()
}

func stockStatus(p contractx.Product) string {
	if p.InStock {
		return "In stock"
	}
	return "Out of stock"
}

func formatProducts(products []contractx.Product, maxItems int) string {
	if len(products) == 0 {
		return "No matching products found."
	}
	lines := []string{"Available products:"}
	for i, p := range products {
		if i >= maxItems {
			break
		}
		lines = append(lines, fmt.Sprintf("• %s — %s (%s) [SKU: %s]", p.Name, formatLKR(p.Price), stockStatus(p), p.SKU))
	}
	return strings.Join(lines, "\n")
}

func toProductRefs(products []contractx.Product) []statex.ProductRef {
	refs := make([]statex.ProductRef, 0, len(products))
	for _, p := range products {
		refs = append(refs, statex.ProductRef{
			SKU:      p.SKU,
			Name:     p.Name,
			Category: p.Category,
			Price:    p.Price,
			InStock:  p.InStock,
		})
	}
	return refs
}

func fromProductRefs(refs []statex.ProductRef) []contractx.Product {
	products := make([]contractx.Product, 0, len(refs))
	for _, r := range refs {
		products = append(products, contractx.Product{
			SKU:      r.SKU,
			Name:     r.Name,
			Category: r.Category,
			Price:    r.Price,
			InStock:  r.InStock,
		})
	}
	return products
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
