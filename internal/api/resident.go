// Package api is the client for the resident back end, which issues device
// identities.
//
// Register endpoint: POST /api/devices/registrations with a push token,
// answered 204. Confirm endpoint: POST /api/devices with the activation
// code, answered 200 with {id, secretKey, publicKey}.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"colocate/contact-agent/internal/model"
)

const requestTimeout = 10 * time.Second

// DeviceConfirmation carries everything the back end needs to activate a
// device.
type DeviceConfirmation struct {
	ActivationCode  string `json:"activationCode"`
	PushToken       string `json:"pushToken"`
	DeviceModel     string `json:"deviceModel"`
	DeviceOSVersion string `json:"deviceOSVersion"`
	PostalCode      string `json:"postalCode"`
}

// Client talks to the resident API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client against the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Register announces the device's push token ahead of activation.
func (c *Client) Register(ctx context.Context, pushToken string) error {
	body := struct {
		PushToken string `json:"pushToken"`
	}{PushToken: pushToken}

	resp, err := c.post(ctx, "/api/devices/registrations", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("register: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// ConfirmDevice exchanges an activation code for the device identity.
func (c *Client) ConfirmDevice(ctx context.Context, confirmation DeviceConfirmation) (model.Registration, error) {
	resp, err := c.post(ctx, "/api/devices", confirmation)
	if err != nil {
		return model.Registration{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Registration{}, fmt.Errorf("confirm device: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		ID        string `json:"id"`
		SecretKey string `json:"secretKey"`
		PublicKey string `json:"publicKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.Registration{}, fmt.Errorf("confirm device: decode response: %w", err)
	}

	return model.Registration{
		ID:        payload.ID,
		SecretKey: payload.SecretKey,
		PublicKey: payload.PublicKey,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}
