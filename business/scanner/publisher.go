// Package scanner runs the periodic aggregate-and-evaluate pipeline
// and publishes discovered opportunities.
package scanner

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	spread "github.com/protsenkopavel/CryptoBridge/business/spread/domain"
	tradinginfo "github.com/protsenkopavel/CryptoBridge/business/tradinginfo/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/apperror"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
)

// Publisher hands accepted spread results to an outbound sink.
// Delivery is fire-and-forget from the scanner's perspective.
type Publisher interface {
	Publish(ctx context.Context, result spread.SpreadResult) error
}

// RedisPublisher pushes opportunities onto a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, result spread.SpreadResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return apperror.External(apperror.CodePublishFailed, result.Pair.String(), err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return apperror.External(apperror.CodePublishFailed, result.Pair.String(), err)
	}
	return nil
}

// LogPublisher writes opportunities to the log. Used when no broker is
// configured.
type LogPublisher struct {
	log logger.LoggerInterface
}

func NewLogPublisher(log logger.LoggerInterface) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, result spread.SpreadResult) error {
	p.log.Info(ctx, "arbitrage opportunity",
		"pair", result.Pair.String(),
		"buyExchange", result.Candidate.BuyExchange.String(),
		"buyPrice", result.Candidate.BuyPrice.String(),
		"sellExchange", result.Candidate.SellExchange.String(),
		"sellPrice", result.Candidate.SellPrice.String(),
		"spread", result.Candidate.Spread().String(),
		"profitPercent", result.Candidate.ProfitPercent().String(),
		"buyNetworks", networkNames(result.BuyInfo),
		"sellNetworks", networkNames(result.SellInfo))
	return nil
}

func networkNames(info tradinginfo.CoinTradingInfo) []string {
	transferable := info.TransferableNetworks()
	names := make([]string, 0, len(transferable))
	for _, n := range transferable {
		names = append(names, n.Network)
	}
	return names
}
