// Package robot drives the robot body through its HTTP control API.
package robot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// DefaultTimeout bounds a single control request.
const DefaultTimeout = 2 * time.Second

// Client implements ports.Actuation over HTTP.
type Client struct {
	BaseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a client for the robot at baseURL (e.g. "http://10.0.0.7:8000").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   DefaultTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type moveRequest struct {
	LinearVelocity float64 `json:"linear_velocity"`
	Angle          float64 `json:"angle"`
}

type jointsRequest struct {
	Angles map[string]float64 `json:"angles"`
	Speed  float64            `json:"speed"`
}

type stiffnessRequest struct {
	Group string  `json:"group"`
	Level float64 `json:"level"`
}

type poseResponse struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// MoveToward sets the base velocity along angle.
func (c *Client) MoveToward(ctx context.Context, linearVelocity, angle float64) error {
	return c.post(ctx, "/api/base/move", moveRequest{LinearVelocity: linearVelocity, Angle: angle})
}

// StopMotion halts the base.
func (c *Client) StopMotion(ctx context.Context) error {
	return c.post(ctx, "/api/base/stop", nil)
}

// GetPosition returns the pose reported by odometry.
func (c *Client) GetPosition(ctx context.Context) (domain.Pose, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/base/pose", nil)
	if err != nil {
		return domain.Pose{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Pose{}, fmt.Errorf("pose request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return domain.Pose{}, err
	}

	var pose poseResponse
	if err := json.NewDecoder(resp.Body).Decode(&pose); err != nil {
		return domain.Pose{}, fmt.Errorf("failed to decode pose: %w", err)
	}
	return domain.Pose{X: pose.X, Y: pose.Y, Heading: pose.Heading}, nil
}

// SetJointAngles moves the named joints.
func (c *Client) SetJointAngles(ctx context.Context, angles map[string]float64, speed float64) error {
	return c.post(ctx, "/api/joints/angles", jointsRequest{Angles: angles, Speed: speed})
}

// SetStiffness sets the stiffness of a joint group.
func (c *Client) SetStiffness(ctx context.Context, group string, level float64) error {
	return c.post(ctx, "/api/joints/stiffness", stiffnessRequest{Group: group, Level: level})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", path, err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode/100 == 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("robot returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
}
