package diag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFatalErrorError(t *testing.T) {
	e := FatalError{Code: ErrNilContext, Message: "context is nil"}
	assert.Equal(t, "context is nil", e.Error())

	withDetail := FatalError{Code: ErrUnknownFileID, Message: "unknown file id", Detail: "id=7"}
	assert.Equal(t, "unknown file id: id=7", withDetail.Error())
}

func TestFatalErrorJSON(t *testing.T) {
	e := FatalError{Code: ErrInvalidCST, Message: "scan failed", Detail: "unexpected EOF"}
	j := e.JSON()
	assert.Contains(t, j, `"code":"ERR_INVALID_CST"`)
	assert.Contains(t, j, `"message":"scan failed"`)
	assert.Contains(t, j, `"detail":"unexpected EOF"`)
}

func TestWrap(t *testing.T) {
	inner := errors.New("boom")
	err := Wrap(ErrReentrantVM, "vm busy", inner)

	var fe FatalError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrReentrantVM, fe.Code)
	assert.Equal(t, "boom", fe.Detail)
	assert.Equal(t, "vm busy: boom", fe.Error())
}
