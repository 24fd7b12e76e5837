package api

import (
	"net/http"
	"strconv"

	"github.com/vocdoni/ballotbox/errors"
)

// electionEventsHandler pages through the committed event journal. The
// afterSeq query parameter skips events up to and including that sequence
// number, limit caps the page size. Both default to returning everything.
func (a *API) electionEventsHandler(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		errors.ErrInternalStorageError.Withf("no event journal configured").Write(w)
		return
	}
	var afterSeq uint64
	if raw := r.URL.Query().Get("afterSeq"); raw != "" {
		var err error
		if afterSeq, err = strconv.ParseUint(raw, 10, 64); err != nil {
			errors.ErrMalformedURLParam.Withf("afterSeq must be a number: %v", err).Write(w)
			return
		}
	}
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			errors.ErrMalformedURLParam.Withf("limit must be a non negative number").Write(w)
			return
		}
	}
	events, err := a.store.Events(afterSeq, limit)
	if err != nil {
		errors.ErrInternalStorageError.WithErr(err).Write(w)
		return
	}
	lastSeq, err := a.store.LastEventSeq()
	if err != nil {
		errors.ErrInternalStorageError.WithErr(err).Write(w)
		return
	}
	HTTPWriteJSON(w, &EventsResponse{Events: events, LastSeq: lastSeq})
}
