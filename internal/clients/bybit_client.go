package clients

import bybit "github.com/hirokisan/bybit/v2"

// NewBybitClient builds a bybit REST client. Auth is attached only when
// keys are provided; the spot ticker endpoints are public.
func NewBybitClient(apiKey, apiSecret string) *bybit.Client {
	client := bybit.NewClient()
	if apiKey != "" && apiSecret != "" {
		client = client.WithAuth(apiKey, apiSecret)
	}
	return client
}
