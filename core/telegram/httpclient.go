package telegram

import (
	"net"
	"net/http"
	"path"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m3rciful/gameclub/core/telegram/netutil"
)

const tracerName = "github.com/m3rciful/gameclub/core/telegram"

const (
	dialTimeout      = 5 * time.Second
	handshakeTimeout = 5 * time.Second
	idleConnTimeout  = 90 * time.Second
	keepAlive        = 30 * time.Second
	// requestBudget bounds every API call on top of the long-poll wait.
	requestBudget = 20 * time.Second
	apiRetries    = 2
	apiBackoff    = time.Second
)

// ClientOptions tunes the Telegram API client.
type ClientOptions struct {
	// PollTimeout is the long-poll wait; getUpdates may block that long.
	PollTimeout time.Duration
	Retries     int
	Backoff     time.Duration
}

// BuildHTTPClient returns a client for the Bot API. Each call is traced as
// "tg.api <method>" and transient network failures are retried.
func BuildHTTPClient(opts ClientOptions) *http.Client {
	if opts.Retries <= 0 {
		opts.Retries = apiRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = apiBackoff
	}
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAlive}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     idleConnTimeout,
		TLSHandshakeTimeout: handshakeTimeout,
	}
	return &http.Client{
		Timeout: opts.PollTimeout + requestBudget,
		Transport: &apiTransport{
			base:    base,
			tracer:  otel.Tracer(tracerName),
			retries: opts.Retries,
			backoff: opts.Backoff,
		},
	}
}

type apiTransport struct {
	base    http.RoundTripper
	tracer  trace.Tracer
	retries int
	backoff time.Duration
}

func (t *apiTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// The token is part of the path, only the method name is safe to record.
	method := path.Base(req.URL.Path)
	ctx, span := t.tracer.Start(req.Context(), "tg.api "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("tg.method", method)),
	)
	defer span.End()

	resp, attempts, err := t.send(req.WithContext(ctx))
	span.SetAttributes(attribute.Int("tg.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, resp.Status)
	}
	return resp, nil
}

func (t *apiTransport) send(req *http.Request) (*http.Response, int, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		curr := req
		if attempt > 1 {
			if req.GetBody == nil && req.Body != nil {
				return nil, attempt - 1, lastErr
			}
			curr = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, attempt, err
				}
				curr.Body = body
			}
		}

		resp, err := t.base.RoundTrip(curr)
		if err == nil {
			return resp, attempt, nil
		}
		lastErr = err
		if attempt > t.retries || !netutil.ShouldRetry(err) {
			return nil, attempt, lastErr
		}

		timer := time.NewTimer(t.backoff * time.Duration(attempt))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, attempt, req.Context().Err()
		case <-timer.C:
		}
	}
}
