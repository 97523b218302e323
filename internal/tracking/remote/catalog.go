package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/catalog"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/telemetry/tracing"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking"
)

var _ catalog.Source = (*CatalogClient)(nil)

// CatalogClient reads the exercise catalog of the store. No session is needed.
type CatalogClient struct {
	client *Client
}

func (c *Client) Catalog() *CatalogClient {
	return &CatalogClient{client: c}
}

func (cc *CatalogClient) List(ctx context.Context) (_ []catalog.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.catalog.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	resp, err := cc.client.do(ctx, http.MethodGet, "/exercises", nil, "")
	if err != nil {
		return nil, &tracking.RemoteReadError{Op: "list exercises", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &tracking.RemoteReadError{Op: "list exercises", Err: statusError(resp)}
	}

	var exercises []catalog.Exercise
	if err := json.NewDecoder(resp.Body).Decode(&exercises); err != nil {
		return nil, &tracking.RemoteReadError{Op: "list exercises", Err: fmt.Errorf("decode exercises: %w", err)}
	}
	return exercises, nil
}

func (cc *CatalogClient) Get(ctx context.Context, id string) (_ catalog.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.catalog.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	resp, err := cc.client.do(ctx, http.MethodGet, "/exercises/"+url.PathEscape(id), nil, "")
	if err != nil {
		return catalog.Exercise{}, &tracking.RemoteReadError{Op: "get exercise", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := statusError(resp)
		if errors.Is(statusErr, tracking.ErrRecordNotFound) {
			return catalog.Exercise{}, catalog.ErrExerciseNotFound
		}
		return catalog.Exercise{}, &tracking.RemoteReadError{Op: "get exercise", Err: statusErr}
	}

	var exercise catalog.Exercise
	if err := json.NewDecoder(resp.Body).Decode(&exercise); err != nil {
		return catalog.Exercise{}, &tracking.RemoteReadError{Op: "get exercise", Err: fmt.Errorf("decode exercise: %w", err)}
	}
	return exercise, nil
}
