// SPDX-License-Identifier: GPL-3.0-or-later

package roctrace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusString(t *testing.T) {
	assert.Equal(t, "SUCCESS", StatusSuccess.String())
	assert.Equal(t, "ERROR_INVALID_DOMAIN_ID", StatusErrorInvalidDomainID.String())
	assert.Contains(t, Status(999).String(), "Status(999)")
}

func TestNewAPIError(t *testing.T) {
	err := newAPIError(StatusErrorInvalidArgument, "bad value %d", 42)
	assert.Equal(t, StatusErrorInvalidArgument, err.status)
	assert.Contains(t, err.Error(), "ERROR_INVALID_ARGUMENT")
	assert.Contains(t, err.Error(), "bad value 42")
}

func TestStatusOfNil(t *testing.T) {
	assert.Equal(t, StatusSuccess, statusOf(nil))
}

func TestStatusOfAPIError(t *testing.T) {
	err := newAPIError(StatusErrorNotImplemented, "op not implemented")
	assert.Equal(t, StatusErrorNotImplemented, statusOf(err))
	assert.Equal(t, "ERROR_NOT_IMPLEMENTED: op not implemented", ErrorString())
}

func TestStatusOfGenericError(t *testing.T) {
	assert.Equal(t, StatusError, statusOf(errors.New("boom")))
	assert.Equal(t, "boom", ErrorString())
}
