package report

import (
	"encoding/json"
	"io"
	"net/http"
)

// NDJSONWriter writes events as newline-delimited JSON, flushing after each
// one when the underlying writer supports it.
type NDJSONWriter struct {
	enc     *json.Encoder
	flusher http.Flusher
}

// NewNDJSONWriter wraps w.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	nw := &NDJSONWriter{enc: json.NewEncoder(w)}
	if f, ok := w.(http.Flusher); ok {
		nw.flusher = f
	}
	return nw
}

// Emit encodes one event. It has the signature Run expects for emit.
func (nw *NDJSONWriter) Emit(ev Event) error {
	if err := nw.enc.Encode(ev); err != nil {
		return err
	}
	if nw.flusher != nil {
		nw.flusher.Flush()
	}
	return nil
}
