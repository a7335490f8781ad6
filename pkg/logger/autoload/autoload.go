// Package autoload initializes the global logger from the LOG_* environment
// on import:
//
//	import _ "github.com/electromart/agenthub/pkg/logger/autoload"
package autoload

import (
	configx "github.com/electromart/agenthub/pkg/config"
	logx "github.com/electromart/agenthub/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
