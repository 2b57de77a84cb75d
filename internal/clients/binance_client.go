package clients

import "github.com/adshao/go-binance/v2"

// NewBinanceClient builds a binance REST client. Empty keys are fine for
// the public market-data endpoints the price feed uses.
func NewBinanceClient(apiKey, apiSecret string) *binance.Client {
	return binance.NewClient(apiKey, apiSecret)
}
