package wallet

import "errors"

var ErrInvalidUser = errors.New("wallet user id is required")
