package output

import (
	"errors"

	"github.com/jezek/xgb"
)

// isProtocolError reports whether err is a single X protocol error. These are
// expected under races with other desktop programs and are only logged; any
// other error from the connection is treated as connection-fatal and triggers
// fault recovery.
func isProtocolError(err error) bool {
	var xerr xgb.Error
	return errors.As(err, &xerr)
}
