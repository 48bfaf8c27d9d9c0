package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/services"
	"github.com/username/tradefolio/backend/src/storage"
	"github.com/xuri/excelize/v2"
)

func newUploadServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	analyticsSvc := services.NewAnalyticsService(store)
	uploadHandler := NewUploadHandler(services.NewImportService(store, analyticsSvc))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/import", uploadHandler.HandleImport)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func tigerXLSX(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []string{"date", "time", "symbol", "side", "quantity", "price", "commission"}
	for col, value := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, value))
	}
	for r, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func uploadWorkbook(t *testing.T, srv *httptest.Server, filename string, data []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := http.Post(srv.URL+"/api/import", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func TestImportEndpointReturnsReport(t *testing.T) {
	t.Parallel()

	srv := newUploadServer(t)
	data := tigerXLSX(t, [][]string{
		{"2024-03-05", "10:15:00", "AAPL", "BUY", "100", "170.00", "1.00"},
	})

	resp := uploadWorkbook(t, srv, "march.xlsx", data)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report models.ImportReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "tiger", report.Broker)
	assert.Equal(t, 1, report.Imported)
	assert.Empty(t, report.Errors)
}

func TestImportEndpointAllRowsInvalidCarriesRowDetail(t *testing.T) {
	t.Parallel()

	srv := newUploadServer(t)
	data := tigerXLSX(t, [][]string{
		{"not-a-date", "10:15:00", "MSFT", "BUY", "10", "400.00", "1.00"},
	})

	resp := uploadWorkbook(t, srv, "march.xlsx", data)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report models.ImportReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 0, report.Imported)
	assert.Equal(t, 0, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 2, report.Errors[0].Row)
	assert.Contains(t, report.Errors[0].Reason, "trade_date")
}

func TestImportEndpointRejectsUnrecognizedFile(t *testing.T) {
	t.Parallel()

	srv := newUploadServer(t)

	resp := uploadWorkbook(t, srv, "notes.xlsx", []byte("just text"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImportEndpointMissingFileField(t *testing.T) {
	t.Parallel()

	srv := newUploadServer(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("format", "tiger"))
	require.NoError(t, writer.Close())

	resp, err := http.Post(srv.URL+"/api/import", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
