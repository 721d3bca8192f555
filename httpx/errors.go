package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmorenog/bancalocal/log"
	"github.com/dmorenog/bancalocal/store"
)

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	w.WriteHeader(http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}

// WriteStoreError maps the store error taxonomy to an HTTP status. The
// gateway reports typed errors; this is the single place that decides how
// they surface.
func WriteStoreError(w http.ResponseWriter, code string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		LogNotFound(w, code, err)
	case errors.Is(err, store.ErrNoSuchCollection):
		LogStatusMsg(w, http.StatusNotFound, log.DebugLevel, code, "%s", err)
	case errors.Is(err, store.ErrDuplicateKey):
		LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, "%s", err)
	case errors.Is(err, store.ErrValidationFailed):
		LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, code, "%s", err)
	case errors.Is(err, store.ErrSchemaConflict), errors.Is(err, store.ErrStorageUnavailable):
		LogInternalError(w, code, err)
	default:
		LogInternalError(w, code, err)
	}
}
