package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
	"github.com/gorilla/websocket"
)

// ErrClosed is returned by calls on a Client whose connection has ended.
var ErrClosed = errors.New("rpc: client closed")

// RemoteError is a failure reported by the server. errors.Is matches it against the sentinel of
// its code: geometry.ErrInvalidGeometry, geometry.ErrNotFound, geometry.ErrFatal, ErrBadRequest or
// ErrUnknownMethod.
type RemoteError struct {
	Method  string
	Code    ErrorCode
	Field   string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("rpc: %s: %s", e.Method, e.Message)
}

func (e *RemoteError) Is(target error) bool {
	return target == e.Code.sentinel()
}

// Client is one WebSocket connection to a viewer service. It is safe for concurrent use; each
// Call waits only for its own response.
type Client struct {
	ws      *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[uint64]chan Response
	nextID  atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once
	err       error
}

// URL returns the WebSocket URL of the service for dim on a viewer listening at addr.
//
// Parameters:
//   - addr: the viewer's host:port
//   - dim: geometry.Dim2 or geometry.Dim3
//
// Returns:
//   - string: a ws:// URL such as ws://127.0.0.1:50051/d3
func URL(addr string, dim geometry.Dim) string {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/" + dim.String()}
	return u.String()
}

// Dial connects to a service URL such as the one returned by URL.
//
// Parameters:
//   - ctx: bounds the handshake
//   - rawURL: the ws:// service URL
//
// Returns:
//   - *Client: the connected client
//   - error: an error if the handshake fails
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("rpc: dial %s: %w", rawURL, err)
	}
	c := &Client{
		ws:      ws,
		pending: make(map[uint64]chan Response),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Call sends one request and waits for its response.
//
// Parameters:
//   - ctx: bounds the wait; cancelling abandons the call but not the connection
//   - method: the method name, such as MethodAddSphere
//   - client: the client name owning the scene, ignored by KillServer
//   - params: the descriptor or arguments, marshalled as JSON; nil sends no params
//
// Returns:
//   - Result: the success payload
//   - error: a *RemoteError for server failures, ErrClosed once the connection ends, or ctx.Err()
func (c *Client) Call(ctx context.Context, method, client string, params any) (Result, error) {
	req := Request{
		ID:         c.nextID.Add(1),
		Method:     method,
		ClientName: client,
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return Result{}, fmt.Errorf("rpc: %s: encode params: %w", method, err)
		}
		req.Params = raw
	}

	ch := make(chan Response, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return Result{}, err
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.ws.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(req.ID)
		return Result{}, fmt.Errorf("rpc: %s: %w", method, err)
	}

	select {
	case resp := <-ch:
		return decodeResponse(method, resp)
	case <-ctx.Done():
		c.forget(req.ID)
		return Result{}, ctx.Err()
	case <-c.done:
		// The response may have arrived just before the connection ended.
		select {
		case resp := <-ch:
			return decodeResponse(method, resp)
		default:
		}
		return Result{}, c.closeErr()
	}
}

func decodeResponse(method string, resp Response) (Result, error) {
	if resp.Error != nil {
		return Result{}, &RemoteError{
			Method:  method,
			Code:    resp.Error.Code,
			Field:   resp.Error.Field,
			Message: resp.Error.Message,
		}
	}
	if resp.Result == nil {
		return Result{}, nil
	}
	return *resp.Result, nil
}

// Close ends the connection. Pending calls fail with ErrClosed.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	err := c.ws.Close()
	c.shutdown(ErrClosed)
	return err
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) readLoop() {
	for {
		var resp Response
		if err := c.ws.ReadJSON(&resp); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				continue
			}
			c.shutdown(fmt.Errorf("%w: %v", ErrClosed, err))
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

func (c *Client) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.err = err
		c.pending = make(map[uint64]chan Response)
		c.mu.Unlock()
		close(c.done)
	})
}

func (c *Client) closeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return ErrClosed
	}
	return c.err
}

func (c *Client) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
