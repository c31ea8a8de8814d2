package wsfeed

import (
	"context"
	"sync"
	"time"

	"quotemaker/pkg/quote"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client subscribes to a Hub endpoint and decodes every text frame as a quote line.
type Client struct {
	url            string
	mu             sync.Mutex
	conn           *websocket.Conn
	handler        func(quote.Quote)
	reconnectDelay time.Duration
	logger         *zap.Logger
}

// NewClient creates a websocket client for the feed at url.
func NewClient(url string, logger *zap.Logger) *Client {
	return &Client{
		url:            url,
		reconnectDelay: 3 * time.Second,
		logger:         logger,
	}
}

// SetMessageHandler sets the function to handle incoming quotes.
func (c *Client) SetMessageHandler(h func(quote.Quote)) {
	c.handler = h
}

// Connect establishes the websocket connection. It does not start the listener.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.logger.Error("Failed to connect to WebSocket", zap.String("url", c.url), zap.Error(err))
		return err
	}
	c.setConn(conn)
	c.logger.Info("WebSocket connected", zap.String("url", c.url))
	return nil
}

// Listen reads until ctx ends, reconnecting after read errors. Without a prior
// successful Connect it dials first.
func (c *Client) Listen(ctx context.Context) {
	go func() {
		<-ctx.Done()
		if conn := c.currentConn(); conn != nil {
			_ = conn.Close()
		}
	}()

	for {
		conn := c.currentConn()
		if conn == nil {
			if !c.redial(ctx) {
				return
			}
			continue
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("WebSocket read error", zap.Error(err))
			if !c.redial(ctx) {
				return
			}
			continue // Start listening again with the new connection
		}

		q, err := quote.Parse(string(msg))
		if err != nil {
			c.logger.Warn("failed to parse quote line", zap.Error(err))
			continue
		}
		if c.handler != nil {
			c.handler(q)
		}
	}
}

// redial retries reconnect every reconnectDelay and reports false once ctx ends.
func (c *Client) redial(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.reconnectDelay):
		}
		if err := c.reconnect(ctx); err != nil {
			c.logger.Warn("Retrying reconnect...", zap.Error(err))
			continue
		}
		c.logger.Info("Reconnected successfully")
		return true
	}
}

func (c *Client) reconnect(ctx context.Context) error {
	newConn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}

	// Close the old connection if it exists
	if old := c.setConn(newConn); old != nil {
		_ = old.Close()
	}
	if ctx.Err() != nil {
		_ = newConn.Close()
	}
	return nil
}

func (c *Client) currentConn() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// setConn swaps in conn and returns the previous connection.
func (c *Client) setConn(conn *websocket.Conn) *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.conn
	c.conn = conn
	return old
}
