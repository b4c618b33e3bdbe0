// Package mapper is the anti-corruption layer between storage rows and the
// domain. Raw rows never reach calling code: every row is decoded through the
// domain rules first, and any inconsistency fails closed as a MappingError.
package mapper

import (
	"fmt"
	"strconv"

	"github.com/corehr/identity-service/internal/core/domain"
)

// Row is the loosely-typed shape a storage row arrives in. Decimal columns
// are serialized as strings by the storage collaborator.
type Row = map[string]any

// ToView decodes a row into the projection for the requested role. The view
// kind follows the requested role only, never whatever the row contains.
func ToView(row Row, requested domain.Role) (domain.UserView, error) {
	normalized, err := normalize(row)
	if err != nil {
		return nil, &domain.MappingError{Cause: err}
	}

	if requested.IsAdmin() {
		view, err := domain.DecodeFullView(normalized)
		if err != nil {
			return nil, &domain.MappingError{Cause: err}
		}
		return view, nil
	}

	view, err := domain.DecodeBaseView(normalized)
	if err != nil {
		return nil, &domain.MappingError{Cause: err}
	}
	return view, nil
}

// ToCredentialView decodes a row into the credential projection. Only the
// credential service may consume the result.
func ToCredentialView(row Row) (*domain.CredentialView, error) {
	normalized, err := normalize(row)
	if err != nil {
		return nil, &domain.MappingError{Cause: err}
	}
	view, err := domain.DecodeCredentialView(normalized)
	if err != nil {
		return nil, &domain.MappingError{Cause: err}
	}
	return view, nil
}

// ToViews maps rows in order to the projection for the requested role. A
// single malformed row fails the whole batch; no partial result is returned.
func ToViews(rows []Row, requested domain.Role) ([]domain.UserView, error) {
	views := make([]domain.UserView, 0, len(rows))
	for i, row := range rows {
		view, err := ToView(row, requested)
		if err != nil {
			return nil, &domain.MappingError{Cause: fmt.Errorf("row %d: %w", i, err)}
		}
		views = append(views, view)
	}
	return views, nil
}

// normalize parses string-serialized decimal columns into numbers. A parse
// failure is an error, never a silent null or zero.
func normalize(row Row) (Row, error) {
	raw, ok := row["salary"]
	if !ok || raw == nil {
		return row, nil
	}
	s, ok := raw.(string)
	if !ok {
		return row, nil
	}

	salary, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("salary %q is not numeric: %w", s, err)
	}

	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	out["salary"] = salary
	return out, nil
}
