package storage

import "errors"

// ErrTicketNotFound is returned by stores when no ticket has the given id.
var ErrTicketNotFound = errors.New("ticket not found")
