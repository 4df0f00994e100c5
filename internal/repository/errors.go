package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
)

// errShiftNotFound is the sentinel callers translate into a 404; repositories
// surface the same sql.ErrNoRows sentinel the sqlx helpers produce.
var errShiftNotFound = sql.ErrNoRows

// asPQError unwraps err into a *pq.Error when the driver produced one.
func asPQError(err error, target **pq.Error) bool {
	return errors.As(err, target)
}

// appErrDuplicateSlot builds the conflict error for an already-defined
// (site, shift code) pair.
func appErrDuplicateSlot(siteID, shiftCode string) error {
	return appErrors.Clone(appErrors.ErrDuplicateSlot, fmt.Sprintf("shift %s is already defined for site %s", shiftCode, siteID))
}
