package loader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estimateboard/estimate"
)

const sampleJSON = `{"estimate_id": "42", "sections": [{"section_id": 1, "section_name": "A", "items": [{"item_id": 1, "quantity": "2", "unit_cost": 1050}]}]}`

func TestLoad_FileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o600))

	doc, totals, err := Load(context.Background(), FileSource{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "42", doc.EstimateID)
	assert.Equal(t, 21.0, totals.GrandTotal)
}

func TestLoad_MissingFileIsLoadError(t *testing.T) {
	src := FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}

	_, _, err := Load(context.Background(), src)

	var le *estimate.LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, src.String(), le.Source)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_MalformedDocumentNamesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	_, _, err := Load(context.Background(), FileSource{Path: path})

	var le *estimate.LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "file "+path, le.Source)
}

func TestHTTPSource_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	doc, _, err := Load(context.Background(), HTTPSource{URL: srv.URL, MaxElapsed: 10 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, "42", doc.EstimateID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPSource_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, _, err := Load(context.Background(), HTTPSource{URL: srv.URL, MaxElapsed: 10 * time.Second})

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.True(t, estimate.IsLoadError(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPSource_GivesUpAfterMaxElapsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := HTTPSource{URL: srv.URL, MaxElapsed: 300 * time.Millisecond}.Fetch(context.Background())

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
}

func TestHTTPSource_OversizedBodyIsPermanent(t *testing.T) {
	var calls atomic.Int32
	body := bytes.Repeat([]byte(" "), maxDocumentSize+1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write(body)
	}))
	defer srv.Close()

	_, _, err := Load(context.Background(), HTTPSource{URL: srv.URL, MaxElapsed: 10 * time.Second})

	require.ErrorIs(t, err, ErrDocumentTooLarge)
	assert.True(t, estimate.IsLoadError(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPSource_BodyAtLimitIsRead(t *testing.T) {
	body := append([]byte(sampleJSON), bytes.Repeat([]byte(" "), maxDocumentSize-len(sampleJSON))...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	b, err := HTTPSource{URL: srv.URL}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, b, maxDocumentSize)
}

func TestHTTPSource_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := HTTPSource{URL: srv.URL}.Fetch(ctx)
	assert.Error(t, err)
}

func TestLoad_ShippedSeedFile(t *testing.T) {
	doc, totals, err := Load(context.Background(), FileSource{Path: filepath.Join("..", "data", "db.json")})
	require.NoError(t, err)

	assert.Equal(t, "1001", doc.EstimateID)
	require.Len(t, doc.Sections, 4)
	assert.Empty(t, doc.Sections[3].Items)
	assert.Len(t, totals.SectionTotals, 4)
	assert.Zero(t, totals.SectionTotals["4"])
}
