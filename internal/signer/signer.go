// Package signer hands move calls to an external wallet for approval and signing.
package signer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/feral-file/ff-social/internal/adapter"
	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/logger"
)

// Signer asks an external agent to approve and sign a transaction.
// A refusal is reported as domain.ErrSignatureDeclined.
//
//go:generate mockgen -source=signer.go -destination=../mocks/signer.go -package=mocks -mock_names=Signer=MockSigner
type Signer interface {
	Sign(ctx context.Context, call domain.MoveCall) (*domain.SignedTransaction, error)
}

// Config holds the remote wallet bridge configuration
type Config struct {
	URL    string
	Sender string
	Token  string
}

type signRequest struct {
	Sender      string          `json:"sender"`
	Transaction domain.MoveCall `json:"transaction"`
}

type remoteSigner struct {
	config Config
	http   adapter.HTTPClient
	codec  adapter.Codec
}

// NewRemoteSigner creates a Signer that forwards move calls to a wallet bridge over HTTP.
// The request body is canonical JSON so the bridge can display and hash exactly what it signs.
func NewRemoteSigner(cfg Config, httpClient adapter.HTTPClient, codec adapter.Codec) Signer {
	return &remoteSigner{
		config: cfg,
		http:   httpClient,
		codec:  codec,
	}
}

func (s *remoteSigner) Sign(ctx context.Context, call domain.MoveCall) (*domain.SignedTransaction, error) {
	if s.config.URL == "" {
		return nil, domain.NewValidationError("signer", "no wallet bridge configured")
	}

	body, err := s.codec.Canonical(signRequest{Sender: s.config.Sender, Transaction: call})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sign request: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	if s.config.Token != "" {
		headers.Set("Authorization", "Bearer "+s.config.Token)
	}

	logger.DebugCtx(ctx, "Requesting signature", zap.String("target", call.Target))

	resp, err := s.http.PostWithHeaders(ctx, s.config.URL, headers, body)
	if err != nil {
		var statusErr *adapter.HTTPStatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusForbidden || statusErr.StatusCode == http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSignatureDeclined, strings.TrimSpace(statusErr.Body))
		}
		return nil, fmt.Errorf("failed to reach signer: %w", err)
	}

	if !gjson.ValidBytes(resp) {
		return nil, fmt.Errorf("signer returned invalid JSON")
	}
	parsed := gjson.ParseBytes(resp)
	if parsed.Get("declined").Bool() {
		reason := parsed.Get("reason").String()
		if reason == "" {
			reason = "rejected by user"
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrSignatureDeclined, reason)
	}

	signed := &domain.SignedTransaction{TxBytes: parsed.Get("txBytes").String()}
	for _, sig := range parsed.Get("signatures").Array() {
		signed.Signatures = append(signed.Signatures, sig.String())
	}
	if signed.TxBytes == "" || len(signed.Signatures) == 0 {
		return nil, fmt.Errorf("signer returned an incomplete transaction")
	}
	return signed, nil
}
