package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// SaltClient fetches the per-user zkLogin salt from the salt service. When the
// service is unreachable it falls back to a deterministic local salt so login
// keeps working (same identity always lands on the same address).
type SaltClient struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

func NewSaltClient(url string, log *logrus.Logger) *SaltClient {
	return &SaltClient{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// GetSalt resolves the salt for a verified ID token.
func (s *SaltClient) GetSalt(ctx context.Context, idToken string) (string, error) {
	salt, err := s.fetch(ctx, idToken)
	if err == nil && salt != "" {
		return salt, nil
	}
	if err != nil {
		s.log.WithError(err).Warn("salt service unavailable, using fallback salt")
	}

	iss, sub, derr := DecodeUnverified(idToken)
	if derr != nil {
		return "", fmt.Errorf("derive fallback salt: %w", derr)
	}
	return FallbackSalt(iss, sub), nil
}

func (s *SaltClient) fetch(ctx context.Context, idToken string) (string, error) {
	body, err := json.Marshal(map[string]string{"jwt": idToken})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("salt service returned %d", resp.StatusCode)
	}

	var out struct {
		Salt string `json:"salt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Salt, nil
}
