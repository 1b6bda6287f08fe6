package service

import "errors"

// ErrInvalidStatus indicates a status value outside {active, cleaned,
// disputed}.
var ErrInvalidStatus = errors.New("invalid report status")
