package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondJSON(rec, map[string]string{"message": "ok"}, http.StatusCreated)

	if rec.Code != http.StatusCreated {
		t.Errorf("got status %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("got content type %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["message"] != "ok" {
		t.Errorf("got body %v", body)
	}
}

func TestRespondErrorWithCode(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondErrorWithCode(rec, "project not found", CodeProjectNotFound, http.StatusNotFound)

	if rec.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", rec.Code)
	}

	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error != "project not found" || body.Code != CodeProjectNotFound {
		t.Errorf("got body %+v", body)
	}
}

func TestRespondValidationErrors(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondValidationErrors(rec, []FieldError{{Field: "email", Message: "is required"}})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", rec.Code)
	}

	var body ValidationErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != CodeValidationFailed {
		t.Errorf("got code %q", body.Code)
	}
	if len(body.Fields) != 1 || body.Fields[0].Field != "email" {
		t.Errorf("got fields %v", body.Fields)
	}
}
