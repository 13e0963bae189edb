package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/couchcryptid/msg2-etl/internal/adapter/archive"
	httpadapter "github.com/couchcryptid/msg2-etl/internal/adapter/http"
	"github.com/couchcryptid/msg2-etl/internal/domain"
	"github.com/couchcryptid/msg2-etl/internal/domain/msg2test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, nil, slog.Default())
}

func sampleRecord() []byte {
	return msg2test.New(msg2test.Header{YearByte: 100, Month: 7, BoxRaw: 1, Group: 3}).
		SetStat(msg2test.Mean, 0, 4000).
		SetStat(msg2test.NumObs, 0, 12).
		Bytes()
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestDecodeReturnsRecords(t *testing.T) {
	srv := newTestServer(nil)
	raw := sampleRecord()
	body := append(append([]byte{}, raw...), raw...)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/decode", bytes.NewReader(body))

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []domain.DecodedRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, domain.GenerateID(raw), got[0].ID)
	assert.Equal(t, 1899, got[0].Header.Year)
	assert.Equal(t, 3, got[0].Header.Group)
	assert.True(t, got[0].Known)
	require.Len(t, got[0].Variables, 4)
	assert.Equal(t, "S", got[0].Variables[0].Label)
	assert.Equal(t, 12, got[0].Variables[0].NumObs)
}

func TestDecodeRejectsPartialRecord(t *testing.T) {
	srv := newTestServer(nil)
	body := append(sampleRecord(), 0x01, 0x02, 0x03)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/decode", bytes.NewReader(body))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "short record")
}

func TestDecodeRejectsEmptyBody(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/decode", http.NoBody)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecodeRejectsOversizedBody(t *testing.T) {
	srv := newTestServer(nil)
	body := bytes.Repeat(sampleRecord(), 1001)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/decode", bytes.NewReader(body))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRecordsRouteNotMountedWithoutArchive(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/records/msg2-0000000000000000", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordsLookup(t *testing.T) {
	store, err := archive.Open("archive", archive.Options{FS: vfs.NewMem(), Logger: slog.Default()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	decoded, err := domain.ParseRawEvent(domain.RawEvent{Value: sampleRecord()})
	require.NoError(t, err)
	require.NoError(t, store.LoadBatch(context.Background(), []domain.DecodedRecord{decoded}))

	srv := httpadapter.NewServer(":0", &mockReadiness{}, store, slog.Default())

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/records/"+decoded.ID, nil)

		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got domain.DecodedRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, decoded.ID, got.ID)
		assert.Equal(t, decoded.Header, got.Header)
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/records/msg2-ffffffffffffffff", nil)

		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
