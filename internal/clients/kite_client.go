// Package clients wraps the Kite Connect SDK behind the narrow fetch
// surface the rest of the program consumes.
package clients

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"go.uber.org/zap"

	"kitefolio/internal/domain"
)

// ErrMissingCredentials is returned before any network call when neither
// an access token nor a complete exchange triple is configured.
var ErrMissingCredentials = errors.New("provide KITE_ACCESS_TOKEN or (KITE_API_KEY, KITE_API_SECRET, KITE_REQUEST_TOKEN)")

// ErrMalformedData marks provider payloads with unusable numeric fields.
// It is never retried.
var ErrMalformedData = errors.New("malformed numeric field in provider response")

// Credentials is everything the broker session can be built from.
type Credentials struct {
	APIKey       string
	APISecret    string
	RequestToken string
	AccessToken  string
}

// KiteClient is a read-only Kite Connect session.
type KiteClient struct {
	kc *kiteconnect.Client
}

// NewKiteClient resolves credentials into a usable session. An explicit
// access token short-circuits the exchange; otherwise the short-lived
// request token is exchanged for one, which costs a network round trip.
func NewKiteClient(creds Credentials, timeout time.Duration, logger *zap.Logger) (*KiteClient, error) {
	if creds.AccessToken != "" {
		apiKey := creds.APIKey
		if apiKey == "" {
			apiKey = "anonymous"
		}
		kc := kiteconnect.New(apiKey)
		kc.SetTimeout(timeout)
		kc.SetAccessToken(creds.AccessToken)
		return &KiteClient{kc: kc}, nil
	}

	if creds.APIKey == "" || creds.APISecret == "" || creds.RequestToken == "" {
		return nil, ErrMissingCredentials
	}

	kc := kiteconnect.New(creds.APIKey)
	kc.SetTimeout(timeout)

	session, err := kc.GenerateSession(creds.RequestToken, creds.APISecret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate session")
	}
	kc.SetAccessToken(session.AccessToken)

	logger.Info("access token fetched, save it for reuse",
		zap.String("access_token", session.AccessToken))

	return &KiteClient{kc: kc}, nil
}

// Holdings fetches equity holdings. The raw payload returned alongside
// the typed rows is only ever echoed in debug mode.
func (c *KiteClient) Holdings(_ context.Context) ([]domain.Holding, json.RawMessage, error) {
	holdings, err := c.kc.GetHoldings()
	if err != nil {
		return nil, nil, errors.Wrap(err, "holdings")
	}

	rows := make([]domain.Holding, 0, len(holdings))
	for _, h := range holdings {
		row, err := holdingFromKite(h)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "holding %s", h.Tradingsymbol)
		}
		rows = append(rows, row)
	}

	raw, _ := json.Marshal(holdings)
	return rows, raw, nil
}

// DayPositions fetches today's intraday positions.
func (c *KiteClient) DayPositions(_ context.Context) ([]domain.Position, json.RawMessage, error) {
	positions, err := c.kc.GetPositions()
	if err != nil {
		return nil, nil, errors.Wrap(err, "day positions")
	}

	rows, err := positionsFromKite(positions.Day)
	if err != nil {
		return nil, nil, err
	}

	raw, _ := json.Marshal(positions.Day)
	return rows, raw, nil
}

// NetPositions fetches carried-over net positions.
func (c *KiteClient) NetPositions(_ context.Context) ([]domain.Position, json.RawMessage, error) {
	positions, err := c.kc.GetPositions()
	if err != nil {
		return nil, nil, errors.Wrap(err, "net positions")
	}

	rows, err := positionsFromKite(positions.Net)
	if err != nil {
		return nil, nil, err
	}

	raw, _ := json.Marshal(positions.Net)
	return rows, raw, nil
}

// Funds fetches the equity segment margins.
func (c *KiteClient) Funds(_ context.Context) (domain.Funds, json.RawMessage, error) {
	margins, err := c.kc.GetUserMargins()
	if err != nil {
		return domain.Funds{}, nil, errors.Wrap(err, "margins")
	}

	cash, err := dec(margins.Equity.Available.Cash)
	if err != nil {
		return domain.Funds{}, nil, errors.Wrap(err, "available cash")
	}
	utilised, err := dec(margins.Equity.Used.Debits)
	if err != nil {
		return domain.Funds{}, nil, errors.Wrap(err, "utilised debits")
	}

	raw, _ := json.Marshal(margins)
	return domain.Funds{AvailableCash: cash, Utilised: utilised}, raw, nil
}

// IsTransient reports whether a fetch error is worth retrying. Network
// faults and provider-side 5xx/429 responses are; auth, permission and
// bad-input rejections are not, and neither is malformed data.
func IsTransient(err error) bool {
	if errors.Is(err, ErrMalformedData) {
		return false
	}

	var kerr kiteconnect.Error
	if errors.As(err, &kerr) {
		switch kerr.ErrorType {
		case kiteconnect.NetworkError:
			return true
		case kiteconnect.GeneralError, kiteconnect.DataError:
			return kerr.Code == http.StatusTooManyRequests || kerr.Code >= http.StatusInternalServerError
		default:
			return false
		}
	}

	// Plain transport errors (timeouts, refused connections) never reach
	// the provider, so a retry is always safe.
	return true
}

func holdingFromKite(h kiteconnect.Holding) (domain.Holding, error) {
	qty, err := dec(float64(h.Quantity))
	if err != nil {
		return domain.Holding{}, err
	}
	avg, err := dec(h.AveragePrice)
	if err != nil {
		return domain.Holding{}, err
	}
	ltp, err := dec(h.LastPrice)
	if err != nil {
		return domain.Holding{}, err
	}
	perShareChange, err := dec(h.DayChange)
	if err != nil {
		return domain.Holding{}, err
	}
	changePct, err := dec(h.DayChangePercentage)
	if err != nil {
		return domain.Holding{}, err
	}

	return domain.Holding{
		Symbol:    h.Tradingsymbol,
		Exchange:  h.Exchange,
		Quantity:  qty,
		AvgPrice:  avg,
		LastPrice: ltp,
		// Kite reports day change per share; the report works in
		// whole-holding amounts.
		DayChange:    perShareChange.Mul(qty),
		DayChangePct: changePct,
	}, nil
}

func positionsFromKite(positions []kiteconnect.Position) ([]domain.Position, error) {
	rows := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		qty, err := dec(float64(p.Quantity))
		if err != nil {
			return nil, errors.Wrapf(err, "position %s", p.Tradingsymbol)
		}
		avg, err := dec(p.AveragePrice)
		if err != nil {
			return nil, errors.Wrapf(err, "position %s", p.Tradingsymbol)
		}
		ltp, err := dec(p.LastPrice)
		if err != nil {
			return nil, errors.Wrapf(err, "position %s", p.Tradingsymbol)
		}
		m2m, err := dec(p.M2M)
		if err != nil {
			return nil, errors.Wrapf(err, "position %s", p.Tradingsymbol)
		}

		rows = append(rows, domain.Position{
			Product:   p.Product,
			Symbol:    p.Tradingsymbol,
			Exchange:  p.Exchange,
			Quantity:  qty,
			AvgPrice:  avg,
			LastPrice: ltp,
			M2M:       m2m,
		})
	}
	return rows, nil
}

// dec converts a provider float, rejecting NaN and infinities instead of
// letting them poison the metrics.
func dec(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, ErrMalformedData
	}
	return decimal.NewFromFloat(v), nil
}
