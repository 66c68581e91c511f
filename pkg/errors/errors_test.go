package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", detailsOK: true},
		{code: CodePathCollision, status: http.StatusUnprocessableEntity, publicMsg: "batch paths overlap", detailsOK: true},
		{code: CodePartialImport, status: http.StatusBadGateway, publicMsg: "import partially applied", retryable: true, detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing sku")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing sku" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "sku"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeDependency, cause, "store write")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if got := Newf(CodeNotFound, "product %s", "TSR-23").Message(); got != "product TSR-23" {
		t.Fatalf("unexpected formatted message %q", got)
	}
}

func TestSentinelMatchesByCodeAndMessage(t *testing.T) {
	sentinel := New(CodeValidation, "unknown product")
	err := fmt.Errorf("pricing: %w", New(CodeValidation, "unknown product"))
	if !stdErrors.Is(err, sentinel) {
		t.Fatalf("expected errors.Is to match sentinel by code and message")
	}
	if stdErrors.Is(err, New(CodeValidation, "invalid quantity")) {
		t.Fatalf("different message should not match")
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatalf("plain errors should map to internal")
	}
}

type fakeChunkErr struct{}

func (fakeChunkErr) Error() string { return "chunk 2 failed" }
func (fakeChunkErr) ChunkProgress() (int, int, int, int) {
	return 2, 2, 200, 5
}

func TestDumpIncludesChunkProgress(t *testing.T) {
	err := Wrap(CodePartialImport, fakeChunkErr{}, "import")
	d := Dump(err)
	if d.Code != CodePartialImport {
		t.Fatalf("unexpected code %s", d.Code)
	}
	if d.ChunkIndex == nil || *d.ChunkIndex != 2 {
		t.Fatalf("expected chunk index 2, got %v", d.ChunkIndex)
	}
	if d.SucceededPaths != 200 || d.TotalChunks != 5 {
		t.Fatalf("unexpected progress %+v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(d.Chain))
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("nil dump should be empty")
	}
}
