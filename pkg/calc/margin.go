package calc

import (
	"errors"
	"math"
)

const (
	// DefaultContractSize is the troy-ounce size of one XAUUSD lot.
	DefaultContractSize = 1000.0
	// DefaultFXRate is the fixed USD to IDR simulation rate.
	DefaultFXRate   = 10000.0
	DefaultLotSize  = 1.0
	DefaultLeverage = 100.0
)

var (
	// ErrMissingPrice means no usable price was stated or supplied by a quote.
	ErrMissingPrice = errors.New("calc: missing price")
	// ErrInvalidLeverage means leverage was not a positive number.
	ErrInvalidLeverage = errors.New("calc: leverage must be positive")
)

// MarginRequest describes a leveraged position to simulate.
type MarginRequest struct {
	Price        float64
	LotSize      float64
	Leverage     float64
	ContractSize float64
	FXRate       float64
}

// MarginResult carries the normalised request and the derived amounts.
type MarginResult struct {
	Request     MarginRequest
	Notional    float64
	MarginUSD   float64
	MarginLocal float64
}

// Margin computes notional value and required margin for req.
// Zero contract size or FX rate fall back to the defaults.
func Margin(req MarginRequest) (MarginResult, error) {
	if !isFinite(req.Price) || req.Price <= 0 {
		return MarginResult{}, ErrMissingPrice
	}
	if !isFinite(req.Leverage) || req.Leverage <= 0 {
		return MarginResult{}, ErrInvalidLeverage
	}
	if !isFinite(req.LotSize) {
		req.LotSize = DefaultLotSize
	}
	if req.ContractSize <= 0 {
		req.ContractSize = DefaultContractSize
	}
	if req.FXRate <= 0 {
		req.FXRate = DefaultFXRate
	}

	notional := req.Price * req.ContractSize * req.LotSize
	marginUSD := notional / req.Leverage
	return MarginResult{
		Request:     req,
		Notional:    notional,
		MarginUSD:   marginUSD,
		MarginLocal: marginUSD * req.FXRate,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
