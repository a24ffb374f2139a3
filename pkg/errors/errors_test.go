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
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeSignature, status: http.StatusBadRequest, publicMsg: "signature verification failed"},
		{code: CodePaymentsDisabled, status: http.StatusBadRequest, publicMsg: "payments not initialized"},
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

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("dial tcp: refused")
	err := Wrap(CodeDependency, cause, "load user")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped error to unwrap to cause")
	}
	if err.Error() != "DEPENDENCY_ERROR: load user: dial tcp: refused" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
	if New(CodeNotFound, "missing").Error() != "NOT_FOUND: missing" {
		t.Fatalf("unexpected error string without cause")
	}
}

func TestAsAndCodeOf(t *testing.T) {
	inner := New(CodeSignature, "bad header")
	outer := fmt.Errorf("webhook: %w", inner)

	if got := As(outer); got != inner {
		t.Fatalf("expected As to find typed error")
	}
	if CodeOf(outer) != CodeSignature {
		t.Fatalf("expected signature code, got %s", CodeOf(outer))
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatal("untyped errors should report internal code")
	}
	if As(nil) != nil {
		t.Fatal("As(nil) should be nil")
	}
}

func TestDumpExtractsPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "purchases_dedup_key_key", TableName: "purchases"}
	err := Wrap(CodeConflict, pgErr, "insert purchase")

	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", dump.Code)
	}
	if dump.PGCode != "23505" || dump.PGConstraint != "purchases_dedup_key_key" {
		t.Fatalf("unexpected pg details %+v", dump)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected chain of 2, got %d", len(dump.Chain))
	}

	fields := dump.Fields()
	if fields["pg_table"] != "purchases" {
		t.Fatalf("expected pg_table in fields, got %v", fields)
	}
}

func TestDumpFieldsOmitsEmptyDatabaseDetails(t *testing.T) {
	fields := Dump(stdErrors.New("boom")).Fields()
	if _, ok := fields["pg_code"]; ok {
		t.Fatal("expected no pg fields for plain error")
	}
	if fields["error"] != "boom" {
		t.Fatalf("unexpected error field %v", fields["error"])
	}
}
