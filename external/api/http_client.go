package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saluslab/escriba/internal/api"
	"github.com/saluslab/escriba/internal/capture"
	"github.com/saluslab/escriba/internal/record"
	"github.com/saluslab/escriba/internal/subscription"
)

type HTTPClient struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

func NewHTTPClient(baseURL, accessToken string, timeout time.Duration) api.Client {
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		client:      &http.Client{Timeout: timeout},
	}
}

type accountResponse struct {
	Email               string     `json:"email"`
	Name                string     `json:"name"`
	SubscriptionStatus  string     `json:"subscription_status"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date"`
	IsAdmin             bool       `json:"is_admin"`
}

func (c *HTTPClient) GetAccount(ctx context.Context) (*api.Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	var raw accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return &api.Account{
		Email:               raw.Email,
		Name:                raw.Name,
		SubscriptionStatus:  subscription.Status(raw.SubscriptionStatus),
		SubscriptionEndDate: raw.SubscriptionEndDate,
		IsAdmin:             raw.IsAdmin,
	}, nil
}

func (c *HTTPClient) Transcribe(ctx context.Context, artifact capture.Artifact, title string) (*record.SessionRecord, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fileHeader := make(textproto.MIMEHeader)
	fileHeader.Set("Content-Disposition", `form-data; name="file"; filename="recording.webm"`)
	fileHeader.Set("Content-Type", artifact.ContentType)
	fw, err := mw.CreatePart(fileHeader)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(artifact.Data); err != nil {
		return nil, err
	}
	if err := mw.WriteField("title", title); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcriptions/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	var rec record.SessionRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode transcription: %w", err)
	}
	return &rec, nil
}

type structureRequest struct {
	TranscriptionID string `json:"transcription_id"`
}

type structureResponse struct {
	StructuredNotes record.StructuredNotes `json:"structured_notes"`
}

func (c *HTTPClient) Structure(ctx context.Context, recordID string) (*record.StructuredNotes, error) {
	b, err := json.Marshal(structureRequest{TranscriptionID: recordID})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcriptions/structure", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	var raw structureResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode structured notes: %w", err)
	}
	return &raw.StructuredNotes, nil
}

func (c *HTTPClient) ListRecords(ctx context.Context) ([]record.SessionRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcriptions", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	var list []record.SessionRecord
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode transcription list: %w", err)
	}
	return list, nil
}

func (c *HTTPClient) GetRecord(ctx context.Context, recordID string) (*record.SessionRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcriptions/"+recordID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	var rec record.SessionRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode transcription: %w", err)
	}
	return &rec, nil
}

func (c *HTTPClient) DeleteRecord(ctx context.Context, recordID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/transcriptions/"+recordID, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	closeBody(resp)
	return nil
}

// do sends the request with the bearer credential attached and maps the
// transport-level status to the error contract: 401 becomes
// api.ErrUnauthorized, other non-2xx statuses surface the server detail.
func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		closeBody(resp)
		return nil, api.ErrUnauthorized
	}
	if !isHTTPSuccessStatus(resp.StatusCode) {
		detail := readErrorDetail(resp.Body)
		closeBody(resp)
		if detail != "" {
			return nil, fmt.Errorf("api returned status %d: %s", resp.StatusCode, detail)
		}
		return nil, fmt.Errorf("api returned status %d", resp.StatusCode)
	}
	return resp, nil
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func readErrorDetail(body io.Reader) string {
	var raw errorResponse
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return ""
	}
	return raw.Detail
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
