package workorder

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func decodeErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return env.Error.Code
}

func TestWriteEstimateError_MissingRow(t *testing.T) {
	h := Handlers{Log: discardLogger()}
	rec := httptest.NewRecorder()

	h.writeEstimateError(rec, "set estimate", fmt.Errorf("load: %w", pgx.ErrNoRows))

	if rec.Code != 404 {
		t.Fatalf("expected 404 for a missing row, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec.Body.Bytes()); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestWriteEstimateError_TransactionFailureIsNot404(t *testing.T) {
	h := Handlers{Log: discardLogger()}
	rec := httptest.NewRecorder()

	h.writeEstimateError(rec, "set estimate", fmt.Errorf("insert audit row: connection reset"))

	if rec.Code != 500 {
		t.Fatalf("expected 500 for a non-missing-row failure, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec.Body.Bytes()); code != "INTERNAL" {
		t.Fatalf("expected INTERNAL, got %s", code)
	}
}
