// Package strategy simulates a KDJ threshold strategy over a bar series.
package strategy

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kline_service/internal/domain"
	"kline_service/internal/domain/entity"
	"kline_service/internal/feature/indicator/domain/kdj"
)

// Action is the side of a trade.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// Config holds the strategy parameters.
type Config struct {
	InitialCapital   decimal.Decimal
	BuyThreshold     float64         // buy when J <= BuyThreshold
	SellThreshold    float64         // sell the oldest lot when J >= SellThreshold
	PositionFraction decimal.Decimal // share of current cash spent per buy
}

// DefaultConfig returns 10000 capital, J <= -5 to buy, J >= 105 to sell and 25% of cash per buy.
func DefaultConfig() Config {
	return Config{
		InitialCapital:   decimal.NewFromInt(10000),
		BuyThreshold:     -5,
		SellThreshold:    105,
		PositionFraction: decimal.NewFromFloat(0.25),
	}
}

// Validate checks capital, fraction and threshold ordering.
func (c Config) Validate() error {
	switch {
	case !c.InitialCapital.IsPositive():
		return fmt.Errorf("%w: initial_capital must be positive", domain.ErrInvalidQuery)
	case !c.PositionFraction.IsPositive() || c.PositionFraction.GreaterThan(decimal.NewFromInt(1)):
		return fmt.Errorf("%w: position_fraction must be in (0, 1]", domain.ErrInvalidQuery)
	case c.BuyThreshold >= c.SellThreshold:
		return fmt.Errorf("%w: buy_threshold must be below sell_threshold", domain.ErrInvalidQuery)
	}
	return nil
}

// Trade is one executed order.
type Trade struct {
	Date        time.Time
	Action      Action
	Price       decimal.Decimal
	Shares      int64
	Value       decimal.Decimal
	Cash        decimal.Decimal // cash after the trade
	TotalShares int64           // shares held after the trade
	J           float64
}

// Summary is the account state at the end of the series.
type Summary struct {
	InitialCapital decimal.Decimal
	FinalAssets    decimal.Decimal
	ReturnPct      decimal.Decimal
	Cash           decimal.Decimal
	Shares         int64
	HoldingValue   decimal.Decimal
}

// Result is the outcome of a simulation.
type Result struct {
	Trades  []Trade
	Summary Summary
}

// Simulate trades at each bar's close. values must be aligned with bars.
// Lots are sold first in, first out, one lot per signal.
func Simulate(bars []entity.Bar, values []kdj.Value, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, domain.ErrNoData
	}
	if len(values) != len(bars) {
		return nil, fmt.Errorf("kdj values (%d) are not aligned with bars (%d)", len(values), len(bars))
	}

	cash := cfg.InitialCapital
	var (
		held   int64
		lots   []int64 // shares per open buy, oldest first
		trades []Trade
	)
	for i, b := range bars {
		v := values[i]
		if !v.Valid {
			continue
		}
		price := decimal.NewFromFloat(b.Close)
		if !price.IsPositive() {
			continue
		}

		if v.J <= cfg.BuyThreshold && cash.IsPositive() {
			shares := cash.Mul(cfg.PositionFraction).Div(price).Floor().IntPart()
			if shares <= 0 {
				continue
			}
			value := price.Mul(decimal.NewFromInt(shares))
			cash = cash.Sub(value)
			held += shares
			lots = append(lots, shares)
			trades = append(trades, Trade{Date: b.Time, Action: Buy, Price: price, Shares: shares, Value: value, Cash: cash, TotalShares: held, J: v.J})
		} else if v.J >= cfg.SellThreshold && len(lots) > 0 {
			shares := lots[0]
			lots = lots[1:]
			value := price.Mul(decimal.NewFromInt(shares))
			cash = cash.Add(value)
			held -= shares
			trades = append(trades, Trade{Date: b.Time, Action: Sell, Price: price, Shares: shares, Value: value, Cash: cash, TotalShares: held, J: v.J})
		}
	}

	last := decimal.NewFromFloat(bars[len(bars)-1].Close)
	holding := last.Mul(decimal.NewFromInt(held))
	final := cash.Add(holding)
	return &Result{
		Trades: trades,
		Summary: Summary{
			InitialCapital: cfg.InitialCapital,
			FinalAssets:    final,
			ReturnPct:      final.Sub(cfg.InitialCapital).Div(cfg.InitialCapital).Mul(decimal.NewFromInt(100)).Round(2),
			Cash:           cash,
			Shares:         held,
			HoldingValue:   holding,
		},
	}, nil
}
