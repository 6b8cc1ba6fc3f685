package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/greenbops/greenbops/internal/api/response"
)

// streamSnapshots bridges a snapshot subscription onto a server-sent
// event stream. The subscription callback runs on the store's watch
// goroutine, so snapshots are handed over on a buffered channel; when
// the client is slow intermediate snapshots are dropped, the next one
// supersedes them anyway.
func streamSnapshots(w http.ResponseWriter, r *http.Request, subscribe func(send func(any)) (func(), error)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalError(w, r, "streaming not supported")
		return
	}

	snapshots := make(chan any, 1)
	send := func(snapshot any) {
		for {
			select {
			case snapshots <- snapshot:
				return
			default:
				select {
				case <-snapshots:
				default:
				}
			}
		}
	}

	stop, err := subscribe(send)
	if err != nil {
		response.InternalError(w, r, "failed to subscribe")
		return
	}
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot := <-snapshots:
			payload, err := json.Marshal(snapshot)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
