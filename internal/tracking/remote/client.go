package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/auth"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/telemetry/tracing"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking"
	"github.com/manea-palluat/flexfit-workout-sub001/pkg"
)

const DefaultTimeout = 15 * time.Second

var _ tracking.Repository = (*Client)(nil)

// Client talks to the record store service on behalf of one signed-in owner.
type Client struct {
	baseURL    string
	identity   auth.Identity
	httpClient *http.Client
}

// NewHTTPClient returns the traced http client the store clients use.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// NewClient returns a client for identity. A nil httpClient means NewHTTPClient(DefaultTimeout).
func NewClient(baseURL string, identity auth.Identity, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultTimeout)
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		identity:   identity,
		httpClient: httpClient,
	}
}

func (c *Client) Identity() auth.Identity {
	return c.identity
}

func (c *Client) Create(ctx context.Context, record tracking.Record) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.records.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("record.id", record.ID))

	if err := c.checkOwner(record.OwnerID); err != nil {
		return err
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/records", record)
	if err != nil {
		return &tracking.RemoteWriteError{Op: "create", ID: record.ID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return &tracking.RemoteWriteError{Op: "create", ID: record.ID, Err: statusError(resp)}
	}
	return nil
}

func (c *Client) Update(ctx context.Context, record tracking.Record) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.records.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("record.id", record.ID))

	if err := c.checkOwner(record.OwnerID); err != nil {
		return err
	}

	resp, err := c.doJSON(ctx, http.MethodPut, "/records/"+url.PathEscape(record.ID), record)
	if err != nil {
		return &tracking.RemoteWriteError{Op: "update", ID: record.ID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &tracking.RemoteWriteError{Op: "update", ID: record.ID, Err: statusError(resp)}
	}
	return nil
}

// Delete succeeds for identities the store does not know.
func (c *Client) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.records.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("record.id", id))

	if !c.identity.SignedIn() {
		return tracking.ErrNotAuthenticated
	}

	resp, err := c.do(ctx, http.MethodDelete, "/records/"+url.PathEscape(id), nil, "")
	if err != nil {
		return &tracking.RemoteWriteError{Op: "delete", ID: id, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNotFound:
		return nil
	default:
		return &tracking.RemoteWriteError{Op: "delete", ID: id, Err: statusError(resp)}
	}
}

// ListByOwner returns the owner's records. The store only lists the owner
// behind the session token, so asking for anyone else is refused locally.
func (c *Client) ListByOwner(ctx context.Context, ownerID string) (_ []tracking.Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.records.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if ownerID == "" || !c.identity.SignedIn() {
		return nil, tracking.ErrNotAuthenticated
	}
	if ownerID != c.identity.OwnerID {
		return nil, &tracking.RemoteReadError{Op: "list", Err: tracking.ErrNotAuthenticated}
	}

	resp, err := c.do(ctx, http.MethodGet, "/records", nil, "")
	if err != nil {
		return nil, &tracking.RemoteReadError{Op: "list", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &tracking.RemoteReadError{Op: "list", Err: statusError(resp)}
	}

	var records []tracking.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &tracking.RemoteReadError{Op: "list", Err: fmt.Errorf("decode records: %w", err)}
	}
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

// SignOut ends the session on the store. The identity is unusable afterwards.
func (c *Client) SignOut(ctx context.Context) error {
	if !c.identity.SignedIn() {
		return tracking.ErrNotAuthenticated
	}

	resp, err := c.do(ctx, http.MethodPost, "/a/logout", nil, "")
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()

	// an unknown token is as signed out as it gets
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("logout: %w", statusError(resp))
	}
	log.Debugf("owner [%s] signed out", c.identity.OwnerID)
	c.identity = auth.Identity{}
	return nil
}

func (c *Client) checkOwner(ownerID string) error {
	if !c.identity.SignedIn() || ownerID == "" {
		return tracking.ErrNotAuthenticated
	}
	if ownerID != c.identity.OwnerID {
		return &tracking.RemoteWriteError{Op: "check owner", Err: tracking.ErrNotAuthenticated}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any) (*http.Response, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(bodyBytes), pkg.ContentType.JSON)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.identity.Token != "" {
		req.Header.Set(auth.TokenHeader, c.identity.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	return resp, nil
}

// statusError maps a store response onto the tracking error taxonomy.
func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return tracking.ErrNotAuthenticated
	case http.StatusNotFound:
		return tracking.ErrRecordNotFound
	case http.StatusConflict:
		return tracking.ErrRecordExists
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}
