package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Registry error taxonomy. Validation and conflict errors are surfaced to
// the operator; not-found becomes a "not found" result on public read
// paths; transient errors are swallowed by the analytics side channel.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("resource conflict")
	ErrNotFound   = errors.New("not found")
	ErrTransient  = errors.New("transient failure")
)

// Slug-specific sentinels, wrapped by the validation/conflict constructors
// so callers can distinguish the exact cause with errors.Is.
var (
	ErrInvalidSlugFormat = errors.New("invalid slug format")
	ErrReservedSlug      = errors.New("slug is reserved")
	ErrSlugTaken         = errors.New("slug already taken")
	ErrAlreadyParented   = errors.New("block already attached to a page")
)

func NewValidationError(field, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        fmt.Errorf("%w: %s", ErrValidation, reason),
		Field:      field,
	}
}

func NewInvalidSlugError(slug, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidSlugFormat,
		Details:    fmt.Sprintf("slug %q: %s", slug, reason),
		Field:      "slug",
	}
}

func NewReservedSlugError(slug string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrReservedSlug,
		Details:    fmt.Sprintf("slug %q is a reserved system route", slug),
		Field:      "slug",
	}
}

func NewConflictError(message string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("%w: %s", ErrConflict, message),
	}
}

func NewSlugTakenError(slug string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrSlugTaken,
		Details:    fmt.Sprintf("slug %q is held by a published block", slug),
		Field:      "slug",
	}
}

func NewAlreadyParentedError(blockID string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrAlreadyParented,
		Details:    fmt.Sprintf("block %s is already a child of a page", blockID),
	}
}

func NewNotFoundError(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

func NewTransientError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrTransient,
		Details:    fmt.Sprintf("transient failure during %s", operation),
		Cause:      cause,
	}
}

// NewDatabaseError maps a storage-level failure onto the taxonomy based on
// the underlying driver message.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	if cause != nil {
		errStr := cause.Error()
		switch {
		case strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "UNIQUE constraint"):
			return &ApiErr{
				StatusCode: http.StatusConflict,
				err:        fmt.Errorf("%w: %s already exists", ErrConflict, entity),
				Details:    details,
				Cause:      cause,
			}
		case strings.Contains(errStr, "foreign key constraint"):
			return &ApiErr{
				StatusCode: http.StatusBadRequest,
				err:        fmt.Errorf("%w: invalid reference in %s", ErrValidation, entity),
				Details:    "The referenced resource does not exist or cannot be linked",
				Cause:      cause,
			}
		case strings.Contains(errStr, "record not found"):
			return &ApiErr{
				StatusCode: http.StatusNotFound,
				err:        fmt.Errorf("%s %w", entity, ErrNotFound),
				Details:    details,
				Cause:      cause,
			}
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrInternal,
		Details:    details,
		Cause:      cause,
	}
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidSlugFormat) ||
		errors.Is(err, ErrReservedSlug)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSlugTaken) ||
		errors.Is(err, ErrAlreadyParented)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
