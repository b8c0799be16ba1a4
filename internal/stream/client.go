package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/logging"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/model"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/ndjson"
)

// Default endpoint paths, relative to the base URL.
const (
	DefaultStreamPath   = "/optimize-stream"
	DefaultOptimizePath = "/optimize-analytics"
	DefaultSamplePath   = "/sample-data"
	DefaultHealthPath   = "/health"

	// DefaultReadSize is the size of each read from the response body.
	DefaultReadSize = 4 * 1024
)

// RequestIDHeader carries the per-submission request id.
const RequestIDHeader = "X-Request-ID"

// ProgressSink receives the progress of one submission. Started is called
// once, immediately before the request is sent. Observe is called for each
// progress event, in arrival order, before the next read from the network.
type ProgressSink interface {
	Started(at time.Time)
	Observe(p ProgressData)
}

// ProgressFunc adapts a plain function to a ProgressSink.
type ProgressFunc func(ProgressData)

// Started implements ProgressSink.
func (f ProgressFunc) Started(time.Time) {}

// Observe implements ProgressSink.
func (f ProgressFunc) Observe(p ProgressData) {
	if f != nil {
		f(p)
	}
}

// Client talks to one solver endpoint. A Client runs at most one streaming
// submission at a time; independent Clients share no state.
type Client struct {
	// baseURL is the solver API root (e.g., "http://localhost:8080/api")
	baseURL string

	// streamPath is the path of the streaming optimization endpoint
	streamPath string

	httpClient *http.Client
	logger     *logging.Logger

	// readSize bounds each body read
	readSize int

	now          func() time.Time
	newRequestID func() string

	// recorder, if set, receives a copy of every streamed byte
	recorder io.Writer

	// mu protects cancel
	mu     sync.Mutex
	cancel context.CancelCauseFunc
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithStreamPath overrides the streaming endpoint path.
func WithStreamPath(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.streamPath = "/" + strings.TrimPrefix(path, "/")
		}
	}
}

// WithReadSize sets the maximum number of bytes read from the body at once.
func WithReadSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.readSize = n
		}
	}
}

// WithClock sets the time source used for Started notifications.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// WithRequestIDFunc sets the generator for request ids.
func WithRequestIDFunc(fn func() string) ClientOption {
	return func(c *Client) {
		c.newRequestID = fn
	}
}

// WithRecorder copies the raw stream to w as it is read.
func WithRecorder(w io.Writer) ClientOption {
	return func(c *Client) {
		c.recorder = w
	}
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		streamPath: DefaultStreamPath,
		httpClient: &http.Client{
			Timeout: 0, // No timeout for streaming connections
		},
		logger:       logging.With("component", "stream"),
		readSize:     DefaultReadSize,
		now:          time.Now,
		newRequestID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Submit streams one optimization. It returns the completed result, or an
// error matching exactly one of ErrTransport, ErrProtocol, ErrSolver or
// ErrCancelled. sink may be nil.
func (c *Client) Submit(ctx context.Context, req *model.Request, sink ProgressSink) (*model.Result, error) {
	if err := model.ValidateRequest(req); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = ProgressFunc(nil)
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		cancel(nil)
		return nil, ErrBusy
	}
	c.cancel = cancel
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()
		cancel(nil)
	}()

	requestID := c.newRequestID()
	logger := c.logger.With("requestID", requestID)

	start := c.now()
	s := &submission{
		client: c,
		ctx:    runCtx,
		req:    req,
		sink:   sink,
		logger: logger,
	}
	result, err := s.run(requestID, start)

	dur := c.now().Sub(start)
	if err != nil {
		logger.Info("optimization failed", "error", err, "events", s.seq.Seen(), "durMs", dur.Milliseconds())
		return nil, err
	}
	logger.Info("optimization completed", "events", s.seq.Seen(), "durMs", dur.Milliseconds())
	return result, nil
}

// Cancel aborts the in-flight submission, if any. The submission returns
// ErrCancelled and its sink receives no further samples. Cancel is a no-op
// when nothing is in flight.
func (c *Client) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel(ErrCancelled)
	}
}

// InFlight reports whether a submission is running.
func (c *Client) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// submission is the state of one Submit call.
type submission struct {
	client *Client
	ctx    context.Context
	req    *model.Request
	sink   ProgressSink
	logger *logging.Logger

	dec ndjson.Decoder
	seq Sequence
}

func (s *submission) run(requestID string, start time.Time) (*model.Result, error) {
	c := s.client

	body, err := json.Marshal(s.req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(s.ctx, http.MethodPost, c.baseURL+c.streamPath, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")
	httpReq.Header.Set(RequestIDHeader, requestID)

	if err := s.cancelled(); err != nil {
		return nil, err
	}
	s.sink.Started(start)

	s.logger.Debug("opening optimization stream", "url", httpReq.URL.String(), "orders", len(s.req.Orders), "shoppers", len(s.req.Shoppers))
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if cerr := s.cancelled(); cerr != nil {
			return nil, cerr
		}
		return nil, &TransportError{Op: "connect", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &TransportError{Op: "open stream", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, &TransportError{Op: "open stream", Err: errors.New("response has no body")}
	}

	return s.consume(resp.Body)
}

// consume reads body until a terminal event, cancellation, or failure.
func (s *submission) consume(body io.Reader) (*model.Result, error) {
	buf := make([]byte, s.client.readSize)

	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			s.record(buf[:n])
			for _, line := range s.dec.Write(buf[:n]) {
				if result, done, err := s.handleLine(line); done {
					return result, err
				}
			}
		}

		if rerr == nil {
			continue
		}
		if err := s.cancelled(); err != nil {
			return nil, err
		}
		if !errors.Is(rerr, io.EOF) {
			return nil, &TransportError{Op: "read stream", Err: rerr}
		}

		if line, ok := s.dec.Flush(); ok {
			if result, done, err := s.handleLine(line); done {
				return result, err
			}
		}
		return nil, newProtocolError("", "no terminal event", ErrUnexpectedEOF)
	}
}

// handleLine dispatches one line. done is true when the submission has an
// outcome.
func (s *submission) handleLine(line string) (*model.Result, bool, error) {
	if err := s.cancelled(); err != nil {
		return nil, true, err
	}

	ev, err := ParseEvent(line)
	if err != nil {
		return nil, true, err
	}
	if ev == nil {
		return nil, false, nil
	}

	regressed, err := s.seq.Accept(ev)
	if err != nil {
		return nil, true, err
	}
	if regressed {
		s.logger.Warn("progress iteration went backwards", "iteration", ev.Progress.Iteration)
	}

	switch ev.Type {
	case EventProgress:
		s.sink.Observe(*ev.Progress)
		return nil, false, nil

	case EventCompleted:
		if len(s.req.Orders) == 0 {
			return ev.Result, true, nil
		}
		if err := model.CheckAssignments(s.req.Orders, &ev.Result.Optimization); err != nil {
			return nil, true, newProtocolError("", "completed result failed validation", err)
		}
		return ev.Result, true, nil

	default:
		return nil, true, &SolverError{Message: ev.Message}
	}
}

// cancelled returns the cancellation outcome if the submission context is
// done. A deadline is a transport failure, not a caller cancellation.
func (s *submission) cancelled() error {
	if s.ctx.Err() == nil {
		return nil
	}
	cause := context.Cause(s.ctx)
	switch {
	case errors.Is(cause, ErrCancelled):
		return ErrCancelled
	case errors.Is(cause, context.DeadlineExceeded):
		return &TransportError{Op: "stream", Err: cause}
	default:
		return fmt.Errorf("%w: %w", ErrCancelled, cause)
	}
}

// Replay decodes a recorded stream from r with the same rules Submit
// applies to a live one. When orders is non-empty the completed result is
// checked against it. Cancelling ctx yields ErrCancelled.
func Replay(ctx context.Context, r io.Reader, orders []model.Order, sink ProgressSink) (*model.Result, error) {
	if sink == nil {
		sink = ProgressFunc(nil)
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	s := &submission{
		client: &Client{readSize: DefaultReadSize},
		ctx:    runCtx,
		req:    &model.Request{Orders: orders},
		sink:   sink,
		logger: logging.With("component", "replay"),
	}
	sink.Started(time.Now())
	return s.consume(r)
}

func (s *submission) record(b []byte) {
	if s.client.recorder == nil {
		return
	}
	if _, err := s.client.recorder.Write(b); err != nil {
		s.logger.Warn("failed to record stream", "error", err)
	}
}

// Optimize runs a non-streaming optimization and returns its result.
func (c *Client) Optimize(ctx context.Context, req *model.Request) (*model.Result, error) {
	if err := model.ValidateRequest(req); err != nil {
		return nil, err
	}

	var result model.Result
	if err := c.doJSON(ctx, http.MethodPost, DefaultOptimizePath, req, &result); err != nil {
		return nil, err
	}
	if err := model.CheckAssignments(req.Orders, &result.Optimization); err != nil {
		return nil, newProtocolError("", "result failed validation", err)
	}
	return &result, nil
}

// SampleData fetches the solver's demo orders and shoppers.
func (c *Client) SampleData(ctx context.Context) (*model.SampleData, error) {
	var data model.SampleData
	if err := c.doJSON(ctx, http.MethodGet, DefaultSamplePath, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Health fetches the solver health report.
func (c *Client) Health(ctx context.Context) (*model.Health, error) {
	var h model.Health
	if err := c.doJSON(ctx, http.MethodGet, DefaultHealthPath, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// doJSON performs a plain request/response exchange.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Op: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &TransportError{Op: method + " " + path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newProtocolError("", "failed to decode "+path+" response", err)
	}
	return nil
}
