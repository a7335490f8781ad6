// Package handlers implements the five specialist agents behind the router.
package handlers

import (
	contractx "github.com/electromart/agenthub/agent/contract"
	promptx "github.com/electromart/agenthub/agent/prompt"
)

// Registry holds one instance of each agent. Completers may differ per agent
// so model overrides apply; a nil or disabled completer leaves that agent on
// its deterministic path.
type Registry struct {
	sales     *Sales
	marketing *Marketing
	support   *Support
	orders    *Orders
	purchase  *Purchase
}

type Completers struct {
	Sales     contractx.Completer
	Marketing contractx.Completer
	Support   contractx.Completer
	Orders    contractx.Completer
}

func NewRegistry(tools contractx.Tools, completers Completers, prompts promptx.PromptSet) *Registry {
	return &Registry{
		sales:     NewSales(tools, completers.Sales, prompts.Sales),
		marketing: NewMarketing(tools, completers.Marketing, prompts.Marketing),
		support:   NewSupport(tools, completers.Support, prompts.Support),
		orders:    NewOrders(tools, completers.Orders, prompts.Orders),
		purchase:  NewPurchase(tools),
	}
}

func (r *Registry) Sales() contractx.Agent     { return r.sales }
func (r *Registry) Marketing() contractx.Agent { return r.marketing }
func (r *Registry) Support() contractx.Agent   { return r.support }
func (r *Registry) Orders() contractx.Agent    { return r.orders }
func (r *Registry) Purchase() contractx.Agent  { return r.purchase }
