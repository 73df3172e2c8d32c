package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RESTStore talks to a hosted document-tree database over its JSON REST
// interface: one HTTP request per operation against <baseURL>/<path>.json.
// Transport failures and non-2xx statuses come back as ErrUnavailable so the
// caller, not the adapter, picks the fallback.
type RESTStore struct {
	baseURL string
	client  *http.Client
}

const defaultRESTTimeout = 8 * time.Second

func NewRESTStore(baseURL string, timeout time.Duration) *RESTStore {
	if timeout <= 0 {
		timeout = defaultRESTTimeout
	}
	return &RESTStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *RESTStore) Backend() string { return "rest" }

func (s *RESTStore) url(path string) (string, error) {
	if _, err := splitPath(path); err != nil {
		return "", err
	}
	return s.baseURL + "/" + strings.Trim(path, "/") + ".json", nil
}

func (s *RESTStore) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	url, err := s.url(path)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s: status %d", ErrUnavailable, method, path, resp.StatusCode)
	}
	return data, nil
}

func (s *RESTStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	data, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	// the service answers 200 with a literal null for absent nodes
	if len(bytes.TrimSpace(data)) == 0 || string(bytes.TrimSpace(data)) == "null" {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *RESTStore) Write(ctx context.Context, path string, value any) error {
	_, err := s.do(ctx, http.MethodPut, path, value)
	return err
}

func (s *RESTStore) Merge(ctx context.Context, path string, partial any) error {
	_, err := s.do(ctx, http.MethodPatch, path, partial)
	return err
}

func (s *RESTStore) Append(ctx context.Context, path string, value any) (string, error) {
	data, err := s.do(ctx, http.MethodPost, path, value)
	if err != nil {
		return "", err
	}
	var res struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &res); err != nil || res.Name == "" {
		return "", fmt.Errorf("%w: append returned no key", ErrUnavailable)
	}
	return res.Name, nil
}

func (s *RESTStore) Delete(ctx context.Context, path string) error {
	_, err := s.do(ctx, http.MethodDelete, path, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
