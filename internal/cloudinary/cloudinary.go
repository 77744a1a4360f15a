// Package cloudinary talks to the hosted media service. The server never
// proxies image bytes: it signs upload parameters so browsers upload straight
// to the host, and it deletes assets by public id when products go away.
package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"tienda-catalog/internal/config"
)

// ErrSecretNotConfigured is returned when a signing operation is attempted
// without an API secret. The signature is the sole authorization the media
// host trusts, so signing with an empty secret must never happen.
var ErrSecretNotConfigured = errors.New("cloudinary api secret not configured")

const defaultBaseURL = "https://api.cloudinary.com/v1_1"

// Client wraps interactions with the Cloudinary API.
type Client struct {
	cloudName    string
	apiKey       string
	apiSecret    string
	uploadPreset string
	baseURL      string
	httpClient   *http.Client
	now          func() time.Time
}

// NewClient constructs a client from configuration.
func NewClient(cfg config.CloudinaryConfig) *Client {
	return &Client{
		cloudName:    cfg.CloudName,
		apiKey:       cfg.APIKey,
		apiSecret:    cfg.APISecret,
		uploadPreset: cfg.UploadPreset,
		baseURL:      defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// SignedUpload is everything a browser needs for a direct signed upload.
// The secret itself never leaves the server.
type SignedUpload struct {
	Signature    string `json:"signature"`
	Timestamp    int64  `json:"timestamp"`
	APIKey       string `json:"apiKey"`
	CloudName    string `json:"cloudName"`
	UploadPreset string `json:"uploadPreset,omitempty"`
	Folder       string `json:"folder,omitempty"`
}

// Preset is the unsigned-upload configuration safe to expose to any client.
type Preset struct {
	CloudName    string `json:"cloudName"`
	UploadPreset string `json:"uploadPreset"`
}

// SignUpload authorizes a direct client upload. The signed parameter set is
// always the timestamp, plus the folder when given, plus the configured
// upload preset when usePreset is set.
func (c *Client) SignUpload(folder string, usePreset bool) (SignedUpload, error) {
	if c.apiSecret == "" {
		return SignedUpload{}, ErrSecretNotConfigured
	}

	timestamp := c.now().Unix()

	params := map[string]string{
		"timestamp": strconv.FormatInt(timestamp, 10),
	}
	if folder != "" {
		params["folder"] = folder
	}
	preset := ""
	if usePreset && c.uploadPreset != "" {
		preset = c.uploadPreset
		params["upload_preset"] = preset
	}

	signed := SignedUpload{
		Signature:    signParams(params, c.apiSecret),
		Timestamp:    timestamp,
		APIKey:       c.apiKey,
		CloudName:    c.cloudName,
		UploadPreset: preset,
		Folder:       folder,
	}
	return signed, nil
}

// UnsignedPreset returns the public unsigned-upload configuration.
func (c *Client) UnsignedPreset() Preset {
	return Preset{CloudName: c.cloudName, UploadPreset: c.uploadPreset}
}

// Destroy deletes an uploaded asset by public id. An empty id is a no-op so
// callers can fan out over image lists without filtering first.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if c.apiSecret == "" {
		return ErrSecretNotConfigured
	}

	timestamp := c.now().Unix()
	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(timestamp, 10),
	}

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", strconv.FormatInt(timestamp, 10))
	form.Set("api_key", c.apiKey)
	form.Set("signature", signParams(params, c.apiSecret))

	endpoint := fmt.Sprintf("%s/%s/image/destroy", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary destroy request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("cloudinary destroy returned status %d for %s", resp.StatusCode, publicID)
	}
	return nil
}

// signParams builds the canonical string the host expects: parameters sorted
// by key, joined as key=value with '&', no URL-encoding, with the secret
// appended before hashing. SHA-1 lowercase hex is the host's signature format.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
