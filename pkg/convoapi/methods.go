package convoapi

import (
	"context"
	"net/http"
	"net/url"
)

const (
	pathLogin        = "api/v1/auth/login"
	pathSendOTP      = "api/v1/auth/send-otp"
	pathVerifyOTP    = "api/v1/auth/verify-otp"
	pathRegister     = "api/v1/users/register"
	pathSessionCheck = "api/v1/test/check-session-expire"
	pathTestMessage  = "v1/test/message"
)

// Login authenticates and, on success, the server sets the session cookie
// on the response. The credentials travel as query parameters.
func (c *Client) Login(ctx context.Context, r LoginRequest) (*LoginResponse, error) {
	q := url.Values{}
	q.Set("username", r.Username)
	q.Set("password", r.Password)
	q.Set("deviceModel", r.DeviceModel)
	q.Set("deviceOs", r.DeviceOS)
	q.Set("deviceId", r.DeviceID)
	q.Set("deviceToken", r.DeviceToken)
	return invoke[LoginResponse](ctx, c, http.MethodPost, pathLogin, q, nil)
}

func (c *Client) SendOTP(ctx context.Context, phoneNumber string) (*OtpResponse, error) {
	q := url.Values{"phoneNumber": {phoneNumber}}
	return invoke[OtpResponse](ctx, c, http.MethodPost, pathSendOTP, q, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, phoneNumber, otp string) (*OtpResponse, error) {
	q := url.Values{"phoneNumber": {phoneNumber}, "otp": {otp}}
	return invoke[OtpResponse](ctx, c, http.MethodPost, pathVerifyOTP, q, nil)
}

func (c *Client) Register(ctx context.Context, r RegisterRequest) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c, http.MethodPost, pathRegister, nil, &r)
}

// CheckSessionExpire asks the server whether the session cookie is still
// honoured and returns the raw status code. 200 means valid and 503 means
// expired; every other code is left to the caller. An error is returned only
// when no response arrived at all.
func (c *Client) CheckSessionExpire(ctx context.Context) (int, error) {
	status, _, err := c.do(ctx, http.MethodGet, pathSessionCheck, nil, nil)
	if err != nil && status == 0 {
		return 0, err
	}
	return status, nil
}

// TestMessage fetches the plain-text connectivity probe.
func (c *Client) TestMessage(ctx context.Context) (string, error) {
	status, data, err := c.do(ctx, http.MethodGet, pathTestMessage, nil, nil)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", decodeAPIError(status, data)
	}
	return string(data), nil
}
