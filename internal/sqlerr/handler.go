package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/notify-dispatch/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode reports the Code of err, looking through wrapped *Error and
// *pgconn.PgError values. Anything else is Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}
	return Other
}

// ConvertPgError converts a raw pgconn.PgError into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// Classify wraps err in an *Error when it carries a Postgres error, and
// returns it unchanged otherwise.
func Classify(err error) error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return ConvertPgError(pgerr)
	}
	return err
}

// generateErrorCode builds "<DOMAIN>_<ACTION>" codes, e.g.
// notification_usage + CheckViolation => NOTIFICATION_USAGE_INVALID.
func generateErrorCode(tableName string, code Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}
	domain := strings.ToUpper(tableName)

	action := "ERROR"
	switch code {
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// humanizeText turns "usage_counter" into "Usage Counter".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// HandleError converts a database error into an application HTTP error.
//
//   - *errs.HTTPError is returned unchanged.
//   - Constraint violations become 400s with a generated code.
//   - No rows becomes 404.
//   - Everything else is a generic 500.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)
		code := generateErrorCode(sqlErr.TableName, sqlErr.Code)

		switch sqlErr.Code {
		case NotNullViolation:
			field := strings.ToLower(sqlErr.ColumnName)
			return errs.NewBadRequestError(
				fmt.Sprintf("The %s is required", humanizeText(sqlErr.ColumnName)),
				true, &code,
				[]errs.FieldError{{Field: field, Error: "is required"}},
			)
		case CheckViolation:
			return errs.NewBadRequestError("One or more values do not meet required conditions", true, &code, nil)
		case UniqueViolation:
			return errs.NewBadRequestError("A record with this identifier already exists", true, &code, nil)
		case ConnectionException:
			return errs.NewServiceUnavailableError("Usage store is unavailable")
		default:
			return errs.NewInternalServerError()
		}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
