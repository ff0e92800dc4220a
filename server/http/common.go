package lpgrdfhttp

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cayleygraph/lpgrdf/clog"
)

const (
	hdrContentType     = "Content-Type"
	hdrContentEncoding = "Content-Encoding"
	contentTypeJSON    = "application/json"
	contentTypeJSONLD  = "application/ld+json"
)

func jsonResponse(w http.ResponseWriter, code int, err interface{}) {
	w.Header().Set(hdrContentType, contentTypeJSON)
	w.WriteHeader(code)
	w.Write([]byte(`{"error": `))
	var s string
	switch err := err.(type) {
	case string:
		s = err
	case error:
		s = err.Error()
	default:
		s = fmt.Sprint(err)
	}
	data, _ := json.Marshal(s)
	w.Write(data)
	w.Write([]byte("}\n"))
}

func writeResults(w http.ResponseWriter, ctype string, r interface{}) {
	w.Header().Set(hdrContentType, ctype)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]interface{}{
		"result": r,
	}); err != nil {
		clog.Errorf("cannot write response: %v", err)
	}
}

// readerFrom unwraps gzip encoded request bodies.
func readerFrom(r *http.Request) (io.ReadCloser, error) {
	if strings.EqualFold(strings.TrimSpace(r.Header.Get(hdrContentEncoding)), "gzip") {
		return gzip.NewReader(r.Body)
	}
	return r.Body, nil
}

// HandlerWrapper decorates the API handler.
type HandlerWrapper func(http.Handler) http.Handler

// CORS adds CORS related headers to responses.
func CORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if origin := req.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers",
				"Accept, Content-Type, Content-Length, Accept-Encoding, Content-Encoding, Authorization")
		}
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, req)
	})
}

// statusWriter captures the status code written to a response.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
	w.code = code
}

func getAddress(req *http.Request) string {
	addr := req.Header.Get("X-Real-IP")
	if addr == "" {
		addr = req.Header.Get("X-Forwarded-For")
		if addr == "" {
			addr = req.RemoteAddr
		}
	}
	return addr
}

// LogRequest logs every request and the status it completed with.
func LogRequest(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		if clog.V(1) {
			clog.Infof("started %s %s for %s", req.Method, req.URL.Path, getAddress(req))
		}
		handler.ServeHTTP(sw, req)
		mRequests.WithLabelValues(req.Method, fmt.Sprint(sw.code)).Inc()
		mRequestSeconds.Observe(time.Since(start).Seconds())
		if clog.V(1) {
			clog.Infof("completed %v %s %s in %v", sw.code, http.StatusText(sw.code), req.URL.Path, time.Since(start))
		}
	})
}

// ListenAndServe serves h on addr until ctx is canceled, then shuts the
// server down gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != http.ErrServerClosed {
		return err
	}
	return nil
}
