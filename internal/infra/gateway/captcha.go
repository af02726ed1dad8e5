package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/civicsignal/petitiond/internal/metrics"
)

const defaultSiteverifyURL = "https://api.hcaptcha.com/siteverify"

// CaptchaVerifier asks hCaptcha whether a client-supplied token is genuine.
// Fail-closed: a missing token never reaches the remote service, and any
// remote failure reads as rejection.
type CaptchaVerifier struct {
	secret   string
	endpoint string
	client   *http.Client
	log      *slog.Logger
}

func NewCaptchaVerifier(secret string, logger *slog.Logger) *CaptchaVerifier {
	return &CaptchaVerifier{
		secret:   secret,
		endpoint: defaultSiteverifyURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      logger.With(slog.String("gateway", "hcaptcha")),
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (v *CaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) bool {
	if token == "" {
		return false
	}
	if v.secret == "" {
		v.log.WarnContext(ctx, "captcha secret not configured, rejecting")
		return false
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.ErrorContext(ctx, "siteverify request failed", slog.String("error", err.Error()))
		metrics.CaptchaChecks.WithLabelValues("error").Inc()
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.log.ErrorContext(ctx, "siteverify returned non-200", slog.Int("status", resp.StatusCode))
		metrics.CaptchaChecks.WithLabelValues("error").Inc()
		return false
	}

	var result siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		v.log.ErrorContext(ctx, "siteverify response malformed", slog.String("error", err.Error()))
		metrics.CaptchaChecks.WithLabelValues("error").Inc()
		return false
	}

	if result.Success {
		metrics.CaptchaChecks.WithLabelValues("ok").Inc()
	} else {
		v.log.DebugContext(ctx, "captcha rejected", slog.Any("codes", result.ErrorCodes))
		metrics.CaptchaChecks.WithLabelValues("rejected").Inc()
	}
	return result.Success
}
