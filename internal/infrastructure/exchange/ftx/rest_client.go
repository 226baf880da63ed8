package ftx

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"gridbot/internal/application/port"
	"gridbot/internal/domain"
	"gridbot/internal/domain/model"
)

// RestClient talks to the FTX REST API. Request signing: HMAC-SHA256 over
// ts + method + path + body, hex encoded.
type RestClient struct {
	baseURL    string // e.g. https://ftx.com/api
	key        string
	secret     string
	subAccount string
	httpc      *http.Client
}

func NewRestClient(baseURL, key, secret, subAccount string) *RestClient {
	return &RestClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
		secret:     secret,
		subAccount: subAccount,
		httpc:      &http.Client{Timeout: 10 * time.Second},
	}
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Result  json.RawMessage `json:"result"`
}

// apiError distinguishes "the exchange said no" from transport failures.
type apiError struct {
	msg string
}

func (e *apiError) Error() string { return e.msg }

func (c *RestClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", domain.ErrConnectivity, err)
		}
		payload = b
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", domain.ErrConnectivity, err)
	}
	c.sign(req, path, payload)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrConnectivity, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrConnectivity, err)
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: decode response (%d): %v", domain.ErrConnectivity, resp.StatusCode, err)
	}
	if !env.Success {
		return &apiError{msg: fmt.Sprintf("%s %s: %s", method, path, env.Error)}
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("%w: decode result: %v", domain.ErrConnectivity, err)
		}
	}
	return nil
}

func (c *RestClient) sign(req *http.Request, path string, body []byte) {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)

	// the signed path includes the /api prefix stripped from baseURL joins
	signPath := "/api" + path
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(ts + req.Method + signPath))
	mac.Write(body)

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("FTX-KEY", c.key)
	req.Header.Set("FTX-SIGN", hex.EncodeToString(mac.Sum(nil)))
	req.Header.Set("FTX-TS", ts)
	if c.subAccount != "" {
		req.Header.Set("FTX-SUBACCOUNT", c.subAccount)
	}
}

func (c *RestClient) CancelAllOrders(ctx context.Context, market string) error {
	body := map[string]string{"market": market}
	if err := c.do(ctx, http.MethodDelete, "/orders", body, nil); err != nil {
		return c.asDomainError(err, false)
	}
	return nil
}

type walletBalance struct {
	Coin  string  `json:"coin"`
	Free  float64 `json:"free"`
	Total float64 `json:"total"`
}

func (c *RestClient) GetBalances(ctx context.Context) (map[string]model.Balance, error) {
	var rows []walletBalance
	if err := c.do(ctx, http.MethodGet, "/wallet/balances", nil, &rows); err != nil {
		return nil, c.asDomainError(err, false)
	}
	out := make(map[string]model.Balance, len(rows))
	for _, b := range rows {
		out[b.Coin] = model.Balance{Coin: b.Coin, Total: b.Total, Free: b.Free}
	}
	return out, nil
}

type marketResult struct {
	Name  string  `json:"name"`
	Last  float64 `json:"last"`
	Bid   float64 `json:"bid"`
	Ask   float64 `json:"ask"`
	Price float64 `json:"price"`
}

func (c *RestClient) GetMarketSnapshot(ctx context.Context, market string) (model.MarketSnapshot, error) {
	var r marketResult
	if err := c.do(ctx, http.MethodGet, "/markets/"+market, nil, &r); err != nil {
		return model.MarketSnapshot{}, c.asDomainError(err, false)
	}
	last := r.Price
	if last <= 0 {
		last = r.Last
	}
	return model.MarketSnapshot{Market: market, Last: last, Bid: r.Bid, Ask: r.Ask}, nil
}

type placeOrderReq struct {
	Market   string   `json:"market"`
	Side     string   `json:"side"`
	Price    *float64 `json:"price"` // null for market orders
	Type     string   `json:"type"`
	Size     float64  `json:"size"`
	ClientID string   `json:"clientId"`
}

type placeOrderResult struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func (c *RestClient) PlaceOrder(ctx context.Context, intent model.OrderIntent) (model.OrderAck, error) {
	req := placeOrderReq{
		Market:   intent.Market,
		Side:     string(intent.Side),
		Type:     string(intent.Type),
		Size:     intent.Size,
		ClientID: uuid.NewString(),
	}
	if intent.Type == model.TypeLimit {
		p := intent.Price
		req.Price = &p
	}

	var r placeOrderResult
	if err := c.do(ctx, http.MethodPost, "/orders", req, &r); err != nil {
		return model.OrderAck{}, c.asDomainError(err, true)
	}
	return model.OrderAck{ID: strconv.FormatInt(r.ID, 10), Status: r.Status}, nil
}

type openOrderResult struct {
	ID     int64   `json:"id"`
	Market string  `json:"market"`
	Side   string  `json:"side"`
	Type   string  `json:"type"`
	Price  float64 `json:"price"`
	Size   float64 `json:"size"`
	Status string  `json:"status"`
}

func (c *RestClient) GetOpenOrders(ctx context.Context, market string) ([]model.Order, error) {
	var rows []openOrderResult
	if err := c.do(ctx, http.MethodGet, "/orders?market="+market, nil, &rows); err != nil {
		return nil, c.asDomainError(err, false)
	}
	out := make([]model.Order, 0, len(rows))
	for _, o := range rows {
		out = append(out, model.Order{
			ID:     strconv.FormatInt(o.ID, 10),
			Market: o.Market,
			Side:   model.Side(o.Side),
			Type:   model.OrderType(o.Type),
			Price:  o.Price,
			Size:   o.Size,
			Status: o.Status,
		})
	}
	return out, nil
}

// asDomainError maps API refusals on order placement to ErrOrderRejected;
// everything else is connectivity.
func (c *RestClient) asDomainError(err error, placing bool) error {
	var ae *apiError
	if errors.As(err, &ae) {
		if placing {
			return fmt.Errorf("%w: %s", domain.ErrOrderRejected, ae.msg)
		}
		return fmt.Errorf("%w: %s", domain.ErrConnectivity, ae.msg)
	}
	return err
}

var _ port.Exchange = (*RestClient)(nil)
