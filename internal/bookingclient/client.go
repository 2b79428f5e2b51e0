// Package bookingclient submits an assembled booking to the appointments API
// as one multipart request, the way the public booking form does.
package bookingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
)

const (
	appointmentsPath = "/api/appointments"
	reportField      = "medicalReport"
	maxErrorBody     = 64 << 10
)

var _ booking.Submitter = (*Client)(nil)

// SubmitError is a non-2xx answer from the server.
type SubmitError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *SubmitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bookingclient: server returned %d", e.Status)
	}
	return fmt.Sprintf("bookingclient: server returned %d: %s", e.Status, e.Message)
}

// UserMessage is the server's text for rejections the patient can fix.
// Anything else gets the generic retry message.
func (e *SubmitError) UserMessage() string {
	if e.Status != http.StatusBadRequest && e.Status != http.StatusRequestEntityTooLarge {
		return ""
	}
	if len(e.Fields) == 0 {
		return e.Message
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	if e.Message == "" {
		return strings.Join(parts, ". ")
	}
	return e.Message + " " + strings.Join(parts, ". ")
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit sends s. It is never retried; the caller resubmits on failure.
func (c *Client) Submit(ctx context.Context, s booking.Submission) error {
	body, contentType, err := encode(s)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+appointmentsPath, body)
	if err != nil {
		return fmt.Errorf("bookingclient: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bookingclient: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	serr := decodeError(resp)
	c.log.Warn("booking rejected",
		zap.Int("status", serr.Status),
		zap.String("code", serr.Code),
	)
	return serr
}

func encode(s booking.Submission) (io.Reader, string, error) {
	fields, err := s.Fields()
	if err != nil {
		return nil, "", fmt.Errorf("bookingclient: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return nil, "", fmt.Errorf("bookingclient: field %s: %w", k, err)
		}
	}

	if report, ok := s.MedicalReport.Get(); ok {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, reportField, report.Filename))
		h.Set("Content-Type", report.ContentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("bookingclient: report: %w", err)
		}
		if _, err := part.Write(report.Data); err != nil {
			return nil, "", fmt.Errorf("bookingclient: report: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("bookingclient: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func decodeError(resp *http.Response) *SubmitError {
	serr := &SubmitError{Status: resp.StatusCode}

	var payload struct {
		Code    string            `json:"error_code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(raw, &payload) == nil {
		serr.Code = payload.Code
		serr.Message = payload.Message
		serr.Fields = payload.Fields
	}
	return serr
}
