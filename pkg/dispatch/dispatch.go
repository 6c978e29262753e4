// Package dispatch answers calculator, price and calendar requests
// directly, without a language model round trip.
package dispatch

import (
	"strings"
	"time"

	"nmai-api/pkg/briefing"
	"nmai-api/pkg/calc"
	"nmai-api/pkg/instrument"
	"nmai-api/pkg/market"
	"nmai-api/pkg/textparse"
)

// Intent names the short-circuit that produced a reply.
type Intent string

const (
	IntentFibonacci Intent = "fibonacci"
	IntentPivot     Intent = "pivot"
	IntentMargin    Intent = "margin"
	IntentPrice     Intent = "price"
	IntentCalendar  Intent = "calendar"
)

// Config is the explicit configuration of a Dispatcher. Zero values fall
// back to the calculator defaults, the reference zone and the built-in
// instrument table.
type Config struct {
	ContractSize float64
	FXRate       float64
	Location     *time.Location
	Instruments  *instrument.Table
}

// Input is one user message plus the feed data the short-circuits may use.
type Input struct {
	Text string
	Now  time.Time
	// Quotes are the quote board rows; nil when the feed failed.
	Quotes          []market.Row
	QuotesUpdatedAt time.Time
	Calendar        briefing.CalendarDigest
}

// Reply is a finished answer.
type Reply struct {
	Intent Intent
	Text   string
}

// Dispatcher routes text to the first short-circuit that can answer it.
type Dispatcher struct {
	contractSize float64
	fxRate       float64
	loc          *time.Location
	table        *instrument.Table
}

// New builds a Dispatcher from cfg.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		contractSize: cfg.ContractSize,
		fxRate:       cfg.FXRate,
		loc:          cfg.Location,
		table:        cfg.Instruments,
	}
	if d.contractSize <= 0 {
		d.contractSize = calc.DefaultContractSize
	}
	if d.fxRate <= 0 {
		d.fxRate = calc.DefaultFXRate
	}
	if d.loc == nil {
		d.loc = textparse.ReferenceLocation()
	}
	if d.table == nil {
		d.table = instrument.Default()
	}
	return d
}

// Dispatch tries Fibonacci, pivot, margin, price and calendar overview in
// that order. A keyword without extractable parameters moves on to the
// next candidate; false means the message belongs to the language model.
func (d *Dispatcher) Dispatch(in Input) (Reply, bool) {
	lower := strings.ToLower(in.Text)
	steps := []struct {
		intent Intent
		try    func(Input, string) (string, bool)
	}{
		{IntentFibonacci, d.fibonacci},
		{IntentPivot, d.pivot},
		{IntentMargin, d.margin},
		{IntentPrice, d.price},
		{IntentCalendar, d.calendar},
	}
	for _, s := range steps {
		if text, ok := s.try(in, lower); ok {
			return Reply{Intent: s.intent, Text: text}, true
		}
	}
	return Reply{}, false
}

// money renders v in id-ID style with two decimals.
func money(v float64) string {
	return textparse.FormatLocaleNumber(v, 2)
}
