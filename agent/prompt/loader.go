package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/sales.txt
	salesRaw string

	//go:embed template/marketing.txt
	marketingRaw string

	//go:embed template/support.txt
	supportRaw string

	//go:embed template/orders.txt
	ordersRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Router    string
	Sales     string
	Marketing string
	Support   string
	Orders    string
}

// LoadPromptSet returns the embedded prompt templates, trimmed.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Router:    strings.TrimSpace(routerRaw),
		Sales:     strings.TrimSpace(salesRaw),
		Marketing: strings.TrimSpace(marketingRaw),
		Support:   strings.TrimSpace(supportRaw),
		Orders:    strings.TrimSpace(ordersRaw),
	}
}
