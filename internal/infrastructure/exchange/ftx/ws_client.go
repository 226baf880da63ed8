package ftx

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"gridbot/internal/application/port"
	"gridbot/internal/domain/model"
)

const (
	pingInterval     = 15 * time.Second
	reconnectInitial = time.Second
	reconnectMax     = 30 * time.Second
)

// OrderStream subscribes to the private FTX "orders" websocket channel and
// republishes order-state changes on a Go channel. Reconnects with backoff
// until the context is cancelled.
type OrderStream struct {
	wsURL      string
	key        string
	secret     string
	subAccount string
}

func NewOrderStream(wsURL, key, secret, subAccount string) *OrderStream {
	return &OrderStream{
		wsURL:      strings.TrimSpace(wsURL),
		key:        key,
		secret:     secret,
		subAccount: subAccount,
	}
}

type wsRequest struct {
	Op      string `json:"op"`
	Channel string `json:"channel,omitempty"`
	Args    any    `json:"args,omitempty"`
}

type wsLoginArgs struct {
	Key        string `json:"key"`
	Sign       string `json:"sign"`
	Time       int64  `json:"time"`
	SubAccount string `json:"subaccount,omitempty"`
}

type wsOrderData struct {
	ID         int64   `json:"id"`
	Market     string  `json:"market"`
	Side       string  `json:"side"`
	Type       string  `json:"type"`
	Status     string  `json:"status"`
	Size       float64 `json:"size"`
	FilledSize float64 `json:"filledSize"`
	Price      float64 `json:"price"`
}

type wsMessage struct {
	Channel string          `json:"channel"`
	Type    string          `json:"type"`
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

func (s *OrderStream) Subscribe(ctx context.Context) (<-chan port.OrderUpdate, error) {
	out := make(chan port.OrderUpdate, 64)
	go s.run(ctx, out)
	return out, nil
}

func (s *OrderStream) run(ctx context.Context, out chan<- port.OrderUpdate) {
	defer close(out)

	delay := reconnectInitial
	for {
		if ctx.Err() != nil {
			return
		}

		err := s.connectAndRead(ctx, out)
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Dur("retry_in", delay).Msg("order stream disconnected")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > reconnectMax {
			delay = reconnectMax
		}
	}
}

func (s *OrderStream) connectAndRead(ctx context.Context, out chan<- port.OrderUpdate) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WriteJSON(s.loginRequest()); err != nil {
		return err
	}
	if err := conn.WriteJSON(wsRequest{Op: "subscribe", Channel: "orders"}); err != nil {
		return err
	}
	log.Info().Str("channel", "orders").Msg("order stream subscribed")

	// keepalive and ctx-driven shutdown
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
				_ = conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteJSON(wsRequest{Op: "ping"}); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Debug().Err(err).Msg("skipping undecodable ws message")
			continue
		}
		if msg.Type == "error" {
			log.Error().Int("code", msg.Code).Str("msg", msg.Msg).Msg("order stream error message")
			continue
		}
		if msg.Channel != "orders" || msg.Type != "update" || len(msg.Data) == 0 {
			continue
		}

		var data wsOrderData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			log.Debug().Err(err).Msg("skipping undecodable order update")
			continue
		}

		update := port.OrderUpdate{
			Market:     data.Market,
			Side:       model.Side(data.Side),
			Type:       model.OrderType(data.Type),
			Status:     data.Status,
			Size:       data.Size,
			FilledSize: data.FilledSize,
			Price:      data.Price,
		}

		select {
		case out <- update:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *OrderStream) loginRequest() wsRequest {
	ts := time.Now().UnixMilli()
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10) + "websocket_login"))

	return wsRequest{
		Op: "login",
		Args: wsLoginArgs{
			Key:        s.key,
			Sign:       hex.EncodeToString(mac.Sum(nil)),
			Time:       ts,
			SubAccount: s.subAccount,
		},
	}
}

var _ port.OrderStream = (*OrderStream)(nil)
