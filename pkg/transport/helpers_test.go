package transport

import "github.com/bluest-sdk/bluest-go/pkg/log"

func logCounter(n *int) log.Logger {
	return log.LoggerFunc(func(log.Event) { *n++ })
}
