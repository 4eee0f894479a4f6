package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxonomyCheckers(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError("slug", "bad")))
	assert.True(t, IsValidation(NewInvalidSlugError("X", "uppercase")))
	assert.True(t, IsValidation(NewReservedSlugError("admin")))

	assert.True(t, IsConflict(NewConflictError("already there")))
	assert.True(t, IsConflict(NewSlugTakenError("promo")))
	assert.True(t, IsConflict(NewAlreadyParentedError("abc")))

	assert.True(t, IsNotFound(NewNotFoundError("block")))
	assert.True(t, IsTransient(NewTransientError("click append", errors.New("timeout"))))

	assert.False(t, IsValidation(NewNotFoundError("block")))
	assert.False(t, IsConflict(NewValidationError("slug", "bad")))
	assert.False(t, IsNotFound(NewSlugTakenError("promo")))
}

func TestCheckersSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create block: %w", NewSlugTakenError("promo"))

	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsNotFound(wrapped))
}

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewValidationError("f", "r").StatusCode)
	assert.Equal(t, http.StatusConflict, NewSlugTakenError("s").StatusCode)
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("block").StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, NewTransientError("op", nil).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, Unauthorized.StatusCode)
}

func TestNewDatabaseErrorMapsDriverMessages(t *testing.T) {
	dup := NewDatabaseError("create", "block", errors.New(`pq: duplicate key value violates unique constraint "idx_content_blocks_published_slug"`))
	assert.Equal(t, http.StatusConflict, dup.StatusCode)
	assert.True(t, IsConflict(dup))

	unique := NewDatabaseError("create", "block", errors.New("UNIQUE constraint failed: content_blocks.slug"))
	assert.Equal(t, http.StatusConflict, unique.StatusCode)

	fk := NewDatabaseError("create", "click", errors.New("insert or update violates foreign key constraint"))
	assert.Equal(t, http.StatusBadRequest, fk.StatusCode)

	missing := NewDatabaseError("find", "block", errors.New("record not found"))
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	assert.True(t, IsNotFound(missing))

	unknown := NewDatabaseError("find", "block", errors.New("connection reset by peer"))
	assert.Equal(t, http.StatusInternalServerError, unknown.StatusCode)
}

func TestGetFullErrorChainsCauses(t *testing.T) {
	inner := NewNotFoundError("block")
	outer := NewDatabaseError("find", "block", inner)

	full := outer.GetFullError()
	assert.Contains(t, full, "block not found")
	assert.Contains(t, full, "->")
}
