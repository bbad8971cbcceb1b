package notifier

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/notification"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/logging"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const maxLoggedBody = 512

type WebhookConfig struct {
	URL            string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookSink posts events as JSON to a single endpoint. The event id is sent
// as Idempotency-Key so the receiver can drop redeliveries.
type WebhookSink struct {
	client  *fasthttp.Client
	url     string
	token   string
	timeout time.Duration
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewWebhookSink(cfg WebhookConfig, clock clockwork.Clock, logger *logging.Logger) (*WebhookSink, error) {
	target, err := validateWebhookURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid NOTIFY_WEBHOOK_URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &WebhookSink{
		client: &fasthttp.Client{
			Name:                "bloodbowl-league-notifier",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		url:     target,
		token:   strings.TrimSpace(cfg.Token),
		timeout: timeout,
		breaker: resilience.NewCircuitBreaker(cfg.CircuitBreaker, clock),
		logger:  logger,
	}, nil
}

func (s *WebhookSink) Send(ctx context.Context, ev notification.Event) error {
	if err := s.breaker.Allow(); err != nil {
		s.logger.WarnContext(ctx, "webhook circuit breaker rejected notification", "event_id", ev.ID, "state", s.breaker.State())
		return crerr.Wrap(err, "notification webhook is temporarily unavailable")
	}

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return crerr.Wrapf(context.DeadlineExceeded, "post notification %s", ev.ID)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(ev); err != nil {
		return crerr.Wrapf(err, "encode notification %s", ev.ID)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Idempotency-Key", ev.ID)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	req.SetBody(buf.B)

	if err := s.client.DoTimeout(req, resp, timeout); err != nil {
		s.breaker.RecordFailure()
		return markTransient(crerr.Wrapf(err, "post notification %s", ev.ID))
	}

	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		s.breaker.RecordSuccess()
		return nil
	}

	body := abbreviate(string(resp.Body()), maxLoggedBody)
	if isRetryableStatus(status) {
		s.breaker.RecordFailure()
		return markTransient(crerr.Newf("post notification %s status=%d body=%s", ev.ID, status, body))
	}
	// The receiver answered, so the endpoint itself is healthy.
	s.breaker.RecordSuccess()
	return crerr.Newf("post notification %s rejected status=%d body=%s", ev.ID, status, body)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

func validateWebhookURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return candidate, nil
}

func abbreviate(value string, max int) string {
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
