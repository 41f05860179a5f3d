package clients

import (
	"github.com/hirokisan/bybit/v2"
)

// NewBybitClient creates a V5 client; authentication is attached only when both keys are set.
func NewBybitClient(apiKey, apiSecret string) *bybit.Client {
	client := bybit.NewClient()
	if apiKey != "" && apiSecret != "" {
		client = client.WithAuth(apiKey, apiSecret)
	}

	return client
}
