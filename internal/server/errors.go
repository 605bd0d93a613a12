package server

import (
	"net/http"

	"github.com/yatharthk2/EmailDemo-sub001/internal/capability"
	"github.com/yatharthk2/EmailDemo-sub001/internal/db"
	"github.com/yatharthk2/EmailDemo-sub001/internal/statement"
)

// HTTPStatus returns the appropriate HTTP status code for a domain error.
// A statement that cannot be parsed is the client's problem, a failing
// model call is the upstream's, everything else is ours.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *statement.ParseError:
		return http.StatusUnprocessableEntity
	case *capability.CapabilityError:
		return http.StatusBadGateway
	case *db.PersistenceError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
