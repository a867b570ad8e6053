package aptnotice_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/aptnotice"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := aptnotice.Errorf(aptnotice.ENOTFOUND, "document %q not found", "notice-1")

	assert.Equal(t, aptnotice.ENOTFOUND, aptnotice.ErrorCode(err))
	assert.Equal(t, "document \"notice-1\" not found", aptnotice.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("ingest: %w", aptnotice.Errorf(aptnotice.EINVALID, "doc_id required"))

	assert.Equal(t, aptnotice.EINVALID, aptnotice.ErrorCode(err))
	assert.Equal(t, "doc_id required", aptnotice.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("disk full")

	assert.Equal(t, aptnotice.EINTERNAL, aptnotice.ErrorCode(err))
	assert.Equal(t, "Internal error.", aptnotice.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, aptnotice.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, aptnotice.ErrorMessage(nil))
}
