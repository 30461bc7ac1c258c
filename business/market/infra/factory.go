// Package infra wires the per-venue market data adapters behind the
// client factory the registry consumes.
package infra

import (
	"github.com/protsenkopavel/CryptoBridge/business/market/app"
	"github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/business/market/infra/bitget"
	"github.com/protsenkopavel/CryptoBridge/business/market/infra/bybit"
	"github.com/protsenkopavel/CryptoBridge/business/market/infra/gateio"
	"github.com/protsenkopavel/CryptoBridge/business/market/infra/kucoin"
	"github.com/protsenkopavel/CryptoBridge/business/market/infra/mexc"
	"github.com/protsenkopavel/CryptoBridge/business/market/infra/okx"
	"github.com/protsenkopavel/CryptoBridge/internal/apperror"
	"github.com/protsenkopavel/CryptoBridge/internal/config"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
)

// Factory builds venue clients from config. Implements app.ClientFactory.
type Factory struct {
	cfg config.ExchangesConfig
	log logger.LoggerInterface
}

var _ app.ClientFactory = (*Factory)(nil)

func NewFactory(cfg config.ExchangesConfig, log logger.LoggerInterface) *Factory {
	return &Factory{cfg: cfg, log: log}
}

// NewClient constructs the adapter for ex. Unknown identifiers fail
// with UnsupportedExchange.
func (f *Factory) NewClient(ex domain.ExchangeID) (app.ExchangeClient, error) {
	switch ex {
	case domain.ExchangeMEXC:
		return mexc.New(mexc.Config{
			Timeout:           f.cfg.MEXC.Timeout,
			RequestsPerMinute: f.cfg.MEXC.RequestsPerMinute,
		}, f.log)
	case domain.ExchangeGateIO:
		return gateio.New(gateio.Config{
			Timeout:           f.cfg.GateIO.Timeout,
			RequestsPerMinute: f.cfg.GateIO.RequestsPerMinute,
		}, f.log)
	case domain.ExchangeOKX:
		return okx.New(okx.Config{
			Timeout:           f.cfg.OKX.Timeout,
			RequestsPerMinute: f.cfg.OKX.RequestsPerMinute,
		}, f.log)
	case domain.ExchangeKuCoin:
		return kucoin.New(kucoin.Config{
			Timeout:           f.cfg.KuCoin.Timeout,
			RequestsPerMinute: f.cfg.KuCoin.RequestsPerMinute,
		}, f.log)
	case domain.ExchangeBybit:
		return bybit.New(bybit.Config{
			Timeout:           f.cfg.Bybit.Timeout,
			RequestsPerMinute: f.cfg.Bybit.RequestsPerMinute,
		}, f.log)
	case domain.ExchangeBitget:
		return bitget.New(bitget.Config{
			Timeout:           f.cfg.Bitget.Timeout,
			RequestsPerMinute: f.cfg.Bitget.RequestsPerMinute,
		}, f.log)
	}

	return nil, apperror.Validation(apperror.CodeUnsupportedExchange, ex.String())
}
