package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/daubit/tracy-web/internal/module/pool/model"
	"github.com/daubit/tracy-web/internal/module/shared"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

var (
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendStatus      = errors.New("unexpected backend status")
	ErrMalformedResponse  = errors.New("malformed backend response")
	ErrBackendReported    = errors.New("backend reported an error")
)

// BackendService reads pools and quotes from the tracy backend.
type BackendService interface {
	GetPools(ctx context.Context) (model.PoolList, error)
	GetPoolsForDenom(ctx context.Context, denom string) (model.PoolList, error)
	GetPoolsForDenoms(ctx context.Context, denom1, denom2 string) (model.PoolList, error)
	GetPool(ctx context.Context, address string) (model.Pool, error)
	GetQuotes(ctx context.Context, tokenIn, tokenOut, amount string) (model.QuoteList, error)
}

type backendService struct {
	baseURL string
	client  shared.HTTPClient
	logger  zerolog.Logger
}

func NewBackendService(cfg *koanf.Koanf, logger zerolog.Logger) BackendService {
	return NewBackendServiceWithClient(
		cfg.String("backend.url"),
		&http.Client{Timeout: cfg.Duration("backend.timeout")},
		logger,
	)
}

func NewBackendServiceWithClient(baseURL string, client shared.HTTPClient, logger zerolog.Logger) BackendService {
	return &backendService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

func (s *backendService) GetPools(ctx context.Context) (model.PoolList, error) {
	return s.getPools(ctx, "/pools")
}

func (s *backendService) GetPoolsForDenom(ctx context.Context, denom string) (model.PoolList, error) {
	return s.getPools(ctx, path("pools_for_denom", denom))
}

func (s *backendService) GetPoolsForDenoms(ctx context.Context, denom1, denom2 string) (model.PoolList, error) {
	return s.getPools(ctx, path("pools_for_denoms", denom1, denom2))
}

func (s *backendService) GetPool(ctx context.Context, address string) (model.Pool, error) {
	p := path("pool", address)
	body, err := s.get(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := reportedError(p, body); err != nil {
		return nil, err
	}

	pool, err := model.DecodePool(body)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrMalformedResponse, p, err)
	}
	return pool, nil
}

func (s *backendService) GetQuotes(ctx context.Context, tokenIn, tokenOut, amount string) (model.QuoteList, error) {
	p := path("quote", tokenIn, tokenOut, amount)
	body, err := s.get(ctx, p)
	if err != nil {
		return nil, err
	}

	var quotes model.QuoteList
	if err := shared.ParseJSONResponse(body, &quotes); err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrMalformedResponse, p, err)
	}
	return quotes, nil
}

// getPools accepts an array of pools or, for the denom endpoints, a single
// pool object.
func (s *backendService) getPools(ctx context.Context, p string) (model.PoolList, error) {
	body, err := s.get(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := reportedError(p, body); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		pool, err := model.DecodePool(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: GET %s: %w", ErrMalformedResponse, p, err)
		}
		return model.PoolList{pool}, nil
	}

	var pools model.PoolList
	if err := shared.ParseJSONResponse(trimmed, &pools); err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrMalformedResponse, p, err)
	}
	return pools, nil
}

func (s *backendService) get(ctx context.Context, p string) ([]byte, error) {
	start := time.Now()
	body, status, err := shared.DoRequest(ctx, s.client, s.baseURL+p, map[string]string{
		"Accept": "application/json",
	})
	s.logger.Debug().Str("path", p).Int("status", status).Dur("took", time.Since(start)).Msg("backend request")

	if err != nil {
		if status == 0 || status == http.StatusOK {
			return nil, fmt.Errorf("%w: GET %s: %w", ErrBackendUnavailable, p, err)
		}
		if rerr := reportedError(p, body); rerr != nil {
			return nil, fmt.Errorf("%w (status %d)", rerr, status)
		}
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrBackendStatus, p, status)
	}
	return body, nil
}

// reportedError recognizes the {"error": "..."} body the backend sends
// instead of a pool it cannot find.
func reportedError(p string, body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var reported struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &reported); err != nil || reported.Error == nil {
		return nil
	}
	return fmt.Errorf("%w: GET %s: %s", ErrBackendReported, p, *reported.Error)
}

func path(segments ...string) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	return b.String()
}
