package apperror

import (
    "errors"
    "fmt"
    "net/http"
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
    assert.Equal(t, Kind(""), KindOf(nil))
    assert.Equal(t, KindValidation, KindOf(Validation("bad")))
    assert.Equal(t, KindConflict, KindOf(fmt.Errorf("wrapped: %w", Conflict("taken"))))
    assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestInternalKeepsCause(t *testing.T) {
    cause := errors.New("db down")
    err := Internal("load show", cause)
    assert.ErrorIs(t, err, cause)
    assert.True(t, Is(err, KindInternal))
    assert.Contains(t, err.Error(), "db down")
}

func TestWithFields(t *testing.T) {
    err := Conflict("seats already booked").With("seats", []int{1})
    assert.Equal(t, []int{1}, err.Fields["seats"])
    assert.Equal(t, "conflict: seats already booked", err.Error())
}

func TestHTTPStatus(t *testing.T) {
    assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindValidation))
    assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
    assert.Equal(t, http.StatusConflict, HTTPStatus(KindConflict))
    assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindAuthentication))
    assert.Equal(t, http.StatusForbidden, HTTPStatus(KindAuthorization))
    assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(KindRateLimited))
    assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindInternal))
}

func TestRateLimited(t *testing.T) {
    b := Body(RateLimited(7))
    assert.Equal(t, KindRateLimited, b["error"])
    assert.Equal(t, 7, b["retry_after"])
}

func TestBody(t *testing.T) {
    b := Body(Conflict("seats already booked").With("seats", []int{3}).With("error", "ignored"))
    assert.Equal(t, KindConflict, b["error"])
    assert.Equal(t, "seats already booked", b["detail"])
    assert.Equal(t, []int{3}, b["seats"])

    b = Body(Internal("load show", errors.New("password=hunter2")))
    assert.Equal(t, "internal server error", b["detail"])

    b = Body(errors.New("raw"))
    assert.Equal(t, KindInternal, b["error"])
}
