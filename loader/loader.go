// Package loader fetches raw estimate documents from files, HTTP endpoints or
// the estimates collection and hands them to the estimate package.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"go.uber.org/zap"

	"estimateboard/estimate"
)

// maxDocumentSize caps how much of a response body is read.
const maxDocumentSize = 8 << 20

// Source produces the raw bytes of one estimate document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// Load fetches a document and normalizes it. Fetch failures are reported as
// *estimate.LoadError, the same as malformed documents.
func Load(ctx context.Context, src Source) (estimate.Document, estimate.Totals, error) {
	_, doc, err := Fetch(ctx, src)
	if err != nil {
		return estimate.Document{}, estimate.Totals{}, err
	}
	return doc, estimate.ComputeTotals(doc), nil
}

// Fetch returns the raw bytes of a document together with its normalized form,
// for callers that store the original text.
func Fetch(ctx context.Context, src Source) ([]byte, estimate.Document, error) {
	raw, err := src.Fetch(ctx)
	if err != nil {
		return nil, estimate.Document{}, &estimate.LoadError{
			Source: src.String(),
			Reason: "fetch",
			Err:    err,
		}
	}

	doc, _, err := estimate.Load(raw)
	if err != nil {
		var le *estimate.LoadError
		if errors.As(err, &le) && le.Source == "" {
			le.Source = src.String()
		}
		return nil, estimate.Document{}, err
	}
	return raw, doc, nil
}

// FileSource reads a document from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}

func (s FileSource) String() string { return "file " + s.Path }

// HTTPSource GETs a document, retrying transport failures and 5xx responses
// with exponential backoff until MaxElapsed passes.
type HTTPSource struct {
	URL        string
	Client     *http.Client
	MaxElapsed time.Duration
	Logger     *zap.Logger
}

// ErrDocumentTooLarge is returned for response bodies over maxDocumentSize.
var ErrDocumentTooLarge = errors.New("document too large")

// StatusError is returned for non-200 responses.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

func (s HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	if s.MaxElapsed > 0 {
		policy.MaxElapsedTime = s.MaxElapsed
	}

	var body []byte
	err := backoff.RetryNotify(
		func() error {
			b, err := s.get(ctx, client)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			logger.Warn("estimate fetch failed, retrying",
				zap.String("url", s.URL),
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s HTTPSource) get(ctx context.Context, client *http.Client) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		serr := &StatusError{StatusCode: resp.StatusCode}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, serr
		}
		return nil, backoff.Permanent(serr)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(b) > maxDocumentSize {
		return nil, backoff.Permanent(fmt.Errorf("%w: over %d bytes", ErrDocumentTooLarge, maxDocumentSize))
	}
	return b, nil
}

func (s HTTPSource) String() string { return "url " + s.URL }

// Collection and field names shared with the collections package.
const (
	CollectionEstimates = "estimates"
	FieldEstimateID     = "estimate_id"
	FieldTitle          = "title"
	FieldDocument       = "document"
)

// RecordSource reads the document stored on an estimates record, looked up by
// its estimate_id.
type RecordSource struct {
	App        core.App
	EstimateID string
}

func (s RecordSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	record, err := s.App.FindFirstRecordByData(CollectionEstimates, FieldEstimateID, s.EstimateID)
	if err != nil {
		return nil, fmt.Errorf("find estimate %s: %w", s.EstimateID, err)
	}
	return DocumentBytes(record), nil
}

func (s RecordSource) String() string { return "record " + s.EstimateID }

// DocumentBytes returns the raw JSON stored in a record's document field.
func DocumentBytes(record *core.Record) []byte {
	switch v := record.Get(FieldDocument).(type) {
	case types.JSONRaw:
		return []byte(v)
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return nil
	}
}
