package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// declineSuffix mirrors Stripe's generic decline test card 4000 0000 0000 0002.
const declineSuffix = "0002"

// SimulatedGateway accepts any well-formed, unexpired card and is the
// default when no Stripe key is configured.
type SimulatedGateway struct {
	mu      sync.Mutex
	charged map[string]*ChargeResult
	now     func() time.Time
}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{charged: make(map[string]*ChargeResult), now: time.Now}
}

// WithClock replaces the clock used for expiry checks and timestamps.
func (g *SimulatedGateway) WithClock(now func() time.Time) *SimulatedGateway {
	g.now = now
	return g
}

func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if prev, ok := g.charged[req.ReferenceID]; ok && req.ReferenceID != "" {
		return prev, nil
	}

	number := digitsOnly(req.Details.CardNumber)
	if number == "" {
		return nil, ErrNoPaymentMethod
	}
	if len(number) < 12 || len(number) > 19 || !luhnValid(number) {
		return nil, fmt.Errorf("%w: card number failed checksum", ErrInvalidCard)
	}
	if expired(req.Details.ExpMonth, req.Details.ExpYear, g.now()) {
		return nil, fmt.Errorf("%w: card has expired", ErrPaymentFailed)
	}
	if strings.HasSuffix(number, declineSuffix) {
		return nil, fmt.Errorf("%w: card was declined", ErrPaymentFailed)
	}

	res := &ChargeResult{
		TransactionID: "sim_" + simulatedID(req.ReferenceID, number, req.AmountCents),
		Status:        ChargeSucceeded,
		Last4:         number[len(number)-4:],
		PaidAt:        g.now().UTC(),
	}
	if req.ReferenceID != "" {
		g.charged[req.ReferenceID] = res
	}
	return res, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r != ' ' && r != '-' {
			return ""
		}
	}
	return b.String()
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// expired treats a card as valid through the last day of its expiry month.
func expired(month, year int, now time.Time) bool {
	if month < 1 || month > 12 || year < 1 {
		return true
	}
	firstOfNext := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return !now.UTC().Before(firstOfNext)
}

func simulatedID(ref, number string, amount int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", ref, number, amount)))
	return hex.EncodeToString(sum[:12])
}
