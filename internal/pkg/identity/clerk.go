package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FinWiseHQ/FinWise/internal/pkg/env"
)

const defaultClerkAPIBaseURL = "https://api.clerk.com/v1"

// ClerkClient talks to a Clerk-style user API. It implements Store.
type ClerkClient struct {
	SecretKey  string
	APIBaseURL string

	HTTPClient *http.Client
}

func NewClerkClientFromEnv() *ClerkClient {
	return &ClerkClient{
		SecretKey:  strings.TrimSpace(env.GetEnv("CLERK_SECRET_KEY", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("CLERK_API_BASE_URL", defaultClerkAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type clerkUserResponse struct {
	ID             string `json:"id"`
	PublicMetadata struct {
		SubscriptionPlan string `json:"subscription_plan"`
	} `json:"public_metadata"`
	PrivateMetadata struct {
		StripeCustomerID     string `json:"stripe_customer_id"`
		StripeSubscriptionID string `json:"stripe_subscription_id"`
	} `json:"private_metadata"`
}

// GetUser fetches a user by its opaque identifier.
func (c *ClerkClient) GetUser(ctx context.Context, opaqueID string) (*User, error) {
	id := strings.TrimSpace(opaqueID)
	if id == "" {
		return nil, errors.New("opaque user id is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("CLERK_SECRET_KEY is not configured")
	}

	endpoint := strings.TrimRight(c.APIBaseURL, "/") + "/users/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("identity user lookup failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out clerkUserResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &User{
		ID:                   out.ID,
		SubscriptionPlan:     out.PublicMetadata.SubscriptionPlan,
		StripeCustomerID:     out.PrivateMetadata.StripeCustomerID,
		StripeSubscriptionID: out.PrivateMetadata.StripeSubscriptionID,
	}, nil
}

// UpdateEntitlement writes the full entitlement state for a user.
// Nil update fields are sent as JSON null, which the provider treats
// as "clear this key".
func (c *ClerkClient) UpdateEntitlement(ctx context.Context, opaqueID string, update EntitlementUpdate) error {
	id := strings.TrimSpace(opaqueID)
	if id == "" {
		return errors.New("opaque user id is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("CLERK_SECRET_KEY is not configured")
	}

	payload := map[string]any{
		"private_metadata": map[string]any{
			"stripe_customer_id":     update.StripeCustomerID,
			"stripe_subscription_id": update.StripeSubscriptionID,
		},
		"public_metadata": map[string]any{
			"subscription_plan": update.SubscriptionPlan,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := strings.TrimRight(c.APIBaseURL, "/") + "/users/" + url.PathEscape(id) + "/metadata"
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("identity entitlement update failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}
