package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Leganyst/therapy-booking/internal/booking"
	"github.com/Leganyst/therapy-booking/internal/config"
	"github.com/Leganyst/therapy-booking/internal/model"
)

// Токен обновляем заранее, чтобы не словить 401 на границе срока жизни.
const tokenExpiryMargin = time.Minute

// ZoomClient — booking.MeetingProvider поверх Zoom REST API (server-to-server OAuth).
type ZoomClient struct {
	cfg     config.ZoomConfig
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

var _ booking.MeetingProvider = (*ZoomClient)(nil)

func NewZoomClient(cfg config.ZoomConfig, log *zap.Logger) *ZoomClient {
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 10
	}
	return &ZoomClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(perSec), int(perSec)+1),
		log:     log,
	}
}

type createMeetingRequest struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"`
	Duration  int             `json:"duration"`
	Timezone  string          `json:"timezone,omitempty"`
	Settings  meetingSettings `json:"settings"`
}

type meetingSettings struct {
	JoinBeforeHost bool `json:"join_before_host"`
	WaitingRoom    bool `json:"waiting_room"`
}

type createMeetingResponse struct {
	ID       int64  `json:"id"`
	JoinURL  string `json:"join_url"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// scheduledMeeting — тип встречи Zoom "запланированная".
const scheduledMeeting = 2

func (c *ZoomClient) CreateMeeting(ctx context.Context, req booking.MeetingRequest) (model.MeetingRef, error) {
	body := createMeetingRequest{
		Topic:    req.Topic,
		Type:     scheduledMeeting,
		Duration: req.DurationMinutes,
		Timezone: req.TimeZone,
		Settings: meetingSettings{WaitingRoom: true},
	}
	// Локальное время + timezone: так Zoom показывает участникам правильные часы.
	if loc, err := time.LoadLocation(req.TimeZone); err == nil && req.TimeZone != "" {
		body.StartTime = req.StartsAt.In(loc).Format("2006-01-02T15:04:05")
	} else {
		body.StartTime = req.StartsAt.UTC().Format(time.RFC3339)
		body.Timezone = ""
	}

	var out createMeetingResponse
	if err := c.do(ctx, http.MethodPost, "/users/me/meetings", body, http.StatusCreated, &out); err != nil {
		return model.MeetingRef{}, fmt.Errorf("zoom create meeting: %w", err)
	}

	c.log.Info("zoom meeting created", zap.Int64("meeting_id", out.ID))
	return model.MeetingRef{
		MeetingID: strconv.FormatInt(out.ID, 10),
		JoinURL:   out.JoinURL,
		Password:  out.Password,
	}, nil
}

func (c *ZoomClient) DeleteMeeting(ctx context.Context, meetingID string) error {
	err := c.do(ctx, http.MethodDelete, "/meetings/"+url.PathEscape(meetingID), nil, http.StatusNoContent, nil)
	if err != nil {
		return fmt.Errorf("zoom delete meeting %s: %w", meetingID, err)
	}
	return nil
}

// apiError — ответ Zoom с неожиданным статусом.
type apiError struct {
	Status  int
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("zoom api status %d: code %d: %s", e.Status, e.Code, e.Message)
}

func (c *ZoomClient) do(ctx context.Context, method, path string, in any, wantStatus int, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && method == http.MethodDelete {
		return booking.ErrMeetingNotFound
	}
	if resp.StatusCode != wantStatus {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		if resp.StatusCode == http.StatusUnauthorized {
			c.resetToken()
		}
		return apiErr
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// accessToken возвращает закэшированный токен account_credentials или получает новый.
func (c *ZoomClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "account_credentials")
	form.Set("account_id", c.cfg.AccountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OAuthURL+"?"+form.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("zoom oauth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("zoom oauth: status %d", resp.StatusCode)
	}
	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("zoom oauth decode: %w", err)
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenExpiryMargin)
	return c.token, nil
}

func (c *ZoomClient) resetToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}
