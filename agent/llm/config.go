package llm

import (
	"strings"

	contractx "github.com/electromart/agenthub/agent/contract"
	openaix "github.com/electromart/agenthub/pkg/openai"
)

// Config carries the shared model settings plus optional per-agent
// overrides. A negative temperature override means "use the default".
type Config struct {
	openaix.Config

	RouterModel          string  `envconfig:"ROUTER_MODEL" split_words:"true"`
	SalesModel           string  `envconfig:"SALES_MODEL" split_words:"true"`
	SupportModel         string  `envconfig:"SUPPORT_MODEL" split_words:"true"`
	RouterTemperature    float32 `envconfig:"ROUTER_TEMPERATURE" split_words:"true" default:"-1"`
	SalesTemperature     float32 `envconfig:"SALES_TEMPERATURE" split_words:"true" default:"-1"`
	SupportTemperature   float32 `envconfig:"SUPPORT_TEMPERATURE" split_words:"true" default:"-1"`
	MarketingTemperature float32 `envconfig:"MARKETING_TEMPERATURE" split_words:"true" default:"-1"`
}

// RouterRoute is a sentinel passed to OpenAIFor when building the
// classifier completer rather than an agent completer.
const RouterRoute contractx.Route = "router"

func (c Config) OpenAIFor(route contractx.Route) openaix.Config {
	out := c.Config
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch route {
	case RouterRoute:
		if v := strings.TrimSpace(c.RouterModel); v != "" {
			modelName = v
		}
		if c.RouterTemperature >= 0 {
			temp = c.RouterTemperature
		}
	case contractx.RouteSales, contractx.RoutePurchase:
		if v := strings.TrimSpace(c.SalesModel); v != "" {
			modelName = v
		}
		if c.SalesTemperature >= 0 {
			temp = c.SalesTemperature
		}
	case contractx.RouteSupport, contractx.RouteOrders:
		if v := strings.TrimSpace(c.SupportModel); v != "" {
			modelName = v
		}
		if c.SupportTemperature >= 0 {
			temp = c.SupportTemperature
		}
	case contractx.RouteMarketing:
		if c.MarketingTemperature >= 0 {
			temp = c.MarketingTemperature
		}
	}

	out.Model = modelName
	out.Temperature = temp
	return out
}
