package tokens

import (
	"errors"
	"fmt"
)

// ErrNotFound not found error
var ErrNotFound = errors.New("not found")

// WrapRPCQueryError wrap rpc error
func WrapRPCQueryError(err error, method string, params ...interface{}) error {
	if err == nil {
		err = ErrNotFound
	}
	return fmt.Errorf("%w: call '%s %v' failed, err='%v'", ErrRPCQueryError, method, params, err)
}
