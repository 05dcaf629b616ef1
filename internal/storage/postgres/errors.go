package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

// SQLSTATE codes the repositories care about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
	codeCheckViolation      = "23514"
	codeStringTooLong       = "22001"
)

// MapError converts a database/sql or lib/pq error into a catalog error.
// notFound is the message used when the row does not exist.
func MapError(op string, err error, notFound string, detail map[string]any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.NotFound(op, notFound, detail)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d := map[string]any{"constraint": pqErr.Constraint}
		if pqErr.Detail != "" {
			d["reason"] = pqErr.Detail
		}
		switch string(pqErr.Code) {
		case codeUniqueViolation:
			return &catalog.Error{Code: catalog.EConflict, Op: op, Msg: "record already exists", Err: err, Detail: d}
		case codeForeignKeyViolation:
			return &catalog.Error{Code: catalog.EInvalid, Op: op, Msg: "referenced record does not exist", Err: err, Detail: d}
		case codeInvalidText, codeCheckViolation, codeStringTooLong:
			return &catalog.Error{Code: catalog.EInvalid, Op: op, Msg: pqErr.Message, Err: err, Detail: d}
		}
	}

	return catalog.Internal(op, err)
}
