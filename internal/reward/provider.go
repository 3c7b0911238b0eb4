package reward

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/models"
)

// ErrNoPhoto is returned when the provider has nothing to offer for a seed.
var ErrNoPhoto = errors.New("reward: provider returned no photo")

// Provider returns a photo chosen by seed. The same seed should give the same photo.
type Provider interface {
	RandomPhoto(ctx context.Context, seed int64) (*models.PhotoReward, error)
}

// HTTPProvider calls GET {BaseURL}/photos/random?seed=N on a photo library service.
type HTTPProvider struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPProvider(baseURL, token string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = constants.DefaultRewardTimeout
	}
	return &HTTPProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) RandomPhoto(ctx context.Context, seed int64) (*models.PhotoReward, error) {
	endpoint, err := url.Parse(p.BaseURL + "/photos/random")
	if err != nil {
		return nil, fmt.Errorf("invalid provider url: %w", err)
	}
	q := endpoint.Query()
	q.Set("seed", strconv.FormatInt(seed, 10))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build photo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.Token)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("photo request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound:
		return nil, ErrNoPhoto
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("photo provider returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var photo models.PhotoReward
	if err := json.NewDecoder(resp.Body).Decode(&photo); err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}
	if photo.URL == "" {
		return nil, ErrNoPhoto
	}
	return &photo, nil
}
