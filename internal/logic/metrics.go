package logic

import "github.com/zeromicro/go-zero/core/metric"

const (
	routeChatGPT = "chatgpt"
	routeNMAI    = "nm-ai"
	routeStream  = "stream"

	// intentLLM labels replies produced by a model instead of a calculator.
	intentLLM = "llm"
)

var replyTotal = metric.NewCounterVec(&metric.CounterVecOpts{
	Namespace: "nmai",
	Subsystem: "chat",
	Name:      "replies_total",
	Help:      "chat replies by route and intent.",
	Labels:    []string{"route", "intent"},
})

func countReply(route, intent string) {
	replyTotal.Inc(route, intent)
}
