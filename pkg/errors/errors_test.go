package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
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
		{code: CodeMissingArguments, status: http.StatusBadRequest, publicMsg: "missing required arguments", detailsOK: true},
		{code: CodeMalformedPayload, status: http.StatusBadRequest, publicMsg: "malformed payload", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", detailsOK: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
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
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Error() != "CONFLICT: ctx: boom" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestAsAndIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeForbidden, "no entry"))
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if !IsCode(err, CodeForbidden) {
		t.Fatalf("expected IsCode to match forbidden")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatalf("expected IsCode not to match not found")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpExtractsPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "order_items_order_product_info_key", TableName: "order_items"}
	err := Wrap(CodeConflict, pgErr, "duplicate basket item")

	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", dump.Code)
	}
	if dump.Postgres == nil || dump.Postgres.Code != "23505" || dump.Postgres.Table != "order_items" {
		t.Fatalf("unexpected pg fields %+v", dump)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(dump.Chain))
	}
	fields := dump.Fields()
	if fields["pg_constraint"] != "order_items_order_product_info_key" || fields["error_code"] != CodeConflict {
		t.Fatalf("unexpected fields %+v", fields)
	}
}

func TestDumpWithoutPostgres(t *testing.T) {
	dump := Dump(stdErrors.New("plain"))
	if dump.Postgres != nil || dump.Code != "" {
		t.Fatalf("unexpected dump %+v", dump)
	}
	if _, ok := dump.Fields()["error_chain"]; ok {
		t.Fatalf("single-link chains are not logged")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	notFound := New(CodeNotFound, "")
	err := fmt.Errorf("load order: %w", Newf(CodeNotFound, "order %d not found", 7))

	if !stdErrors.Is(err, notFound) {
		t.Fatalf("expected code sentinel to match")
	}
	if stdErrors.Is(err, New(CodeConflict, "")) {
		t.Fatalf("different code must not match")
	}
	if stdErrors.Is(err, New(CodeNotFound, "something else")) {
		t.Fatalf("explicit message must match exactly")
	}
	if As(err).Message() != "order 7 not found" {
		t.Fatalf("unexpected message %q", As(err).Message())
	}
}

func TestInternalMessagesAreNotExposed(t *testing.T) {
	if MetadataFor(CodeInternal).ExposeMessage {
		t.Fatalf("internal errors must not expose their message")
	}
	if !MetadataFor(CodeNotFound).ExposeMessage {
		t.Fatalf("not found messages are meant for clients")
	}
}
