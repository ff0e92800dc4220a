// Copyright 2017 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lpgrdfhttp serves an engine over HTTP.
package lpgrdfhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cayleygraph/lpgrdf"
	"github.com/cayleygraph/lpgrdf/clog"
	"github.com/cayleygraph/lpgrdf/exporter"
	"github.com/cayleygraph/lpgrdf/graph/lpg"
	"github.com/cayleygraph/lpgrdf/inference"
	"github.com/cayleygraph/lpgrdf/loader"
	"github.com/cayleygraph/lpgrdf/schema"
)

const (
	prefix       = "/api/v1"
	defaultLimit = 100
)

var (
	mRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lpgrdf_http_requests_count",
		Help: "Number of HTTP requests by method and status code.",
	}, []string{"method", "code"})
	mRequestSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "lpgrdf_http_request_seconds",
		Help: "Time to serve an HTTP request.",
	})
)

// CommitFunc is called after every successful change to the engine.
type CommitFunc func(ctx context.Context, e *lpgrdf.Engine) error

// API serves the engine content and accepts imports.
type API struct {
	e       *lpgrdf.Engine
	x       *exporter.Exporter
	ro      bool
	batch   int
	timeout time.Duration
	limit   int
	commit  CommitFunc
	handler http.Handler
}

// NewAPI creates an API for the engine. Wrappers are applied in order.
func NewAPI(e *lpgrdf.Engine, wrappers ...HandlerWrapper) *API {
	r := httprouter.New()
	api := &API{e: e, x: exporter.New(e), limit: defaultLimit}
	api.RegisterOn(r)
	var handler http.Handler = r
	for _, wrapper := range wrappers {
		handler = wrapper(handler)
	}
	api.handler = handler
	return api
}

// SetReadOnly rejects requests that change the engine.
func (api *API) SetReadOnly(ro bool) {
	api.ro = ro
}
func (api *API) SetBatchSize(n int) {
	api.batch = n
}
func (api *API) SetQueryTimeout(dt time.Duration) {
	api.timeout = dt
}
func (api *API) SetQueryLimit(n int) {
	api.limit = n
}

// SetCommit sets a function that persists the engine after changes.
func (api *API) SetCommit(fn CommitFunc) {
	api.commit = fn
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.handler.ServeHTTP(w, r)
}

func toHandle(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		handler(w, r)
	}
}

// RegisterOn adds the API routes to a router.
func (api *API) RegisterOn(r *httprouter.Router) {
	r.GET(prefix+"/nodes", toHandle(api.ServeNodes))
	r.GET(prefix+"/nodes/:id/linked", api.ServeLinked)
	r.GET(prefix+"/node", toHandle(api.ServeNodeByURI))
	r.GET(prefix+"/node/:id", api.ServeNode)
	r.GET(prefix+"/relationships", toHandle(api.ServeRelationships))
	r.GET(prefix+"/describe", toHandle(api.ServeDescribe))
	r.GET(prefix+"/schemas", toHandle(api.ServeSchemas))
	r.GET(prefix+"/schemas/:name/mappings", api.ServeMappings)
	r.GET(prefix+"/stats", toHandle(api.ServeStats))
	r.GET(prefix+"/formats", toHandle(api.ServeFormats))

	r.POST(prefix+"/import", toHandle(api.ServeImport))
	r.POST(prefix+"/hierarchy", toHandle(api.ServeHierarchy))
	r.POST(prefix+"/clear", toHandle(api.ServeClear))

	r.GET("/health", toHandle(HandleHealth))
	r.Handler(http.MethodGet, "/metrics", promhttp.Handler())
}

// HandleHealth answers health checks.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// errorCode maps engine errors to HTTP status codes.
func errorCode(err error) int {
	switch {
	case errors.Is(err, lpg.ErrNodeNotFound),
		errors.Is(err, lpg.ErrRelationshipNotFound),
		errors.Is(err, inference.ErrUnresolvableLabel),
		errors.Is(err, schema.ErrUnknownSchema):
		return http.StatusNotFound
	case errors.Is(err, lpgrdf.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (api *API) queryContext(r *http.Request) (ctx context.Context, cancel func()) {
	ctx = r.Context()
	if api.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, api.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	return ctx, cancel
}

func boolParam(r *http.Request, name string, def bool) (bool, error) {
	s := r.FormValue(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s parameter: %q", name, s)
	}
	return v, nil
}

func (api *API) queryLimit(r *http.Request) (int, error) {
	s := r.FormValue("limit")
	if s == "" {
		return api.limit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit: %q", s)
	}
	return n, nil
}

type listResponse struct {
	Count int         `json:"count"`
	Items interface{} `json:"items"`
}

func limitNodes(nodes []lpg.Node, n int) []lpg.Node {
	if n > 0 && len(nodes) > n {
		return nodes[:n]
	}
	return nodes
}

func limitRels(rels []lpg.Relationship, n int) []lpg.Relationship {
	if n > 0 && len(rels) > n {
		return rels[:n]
	}
	return rels
}

// ServeNodes lists nodes with a label, or all nodes if no label is given.
// Members of sub-labels are included unless inferred=false. A depth limits
// how many subclass levels are followed.
func (api *API) ServeNodes(w http.ResponseWriter, r *http.Request) {
	limit, err := api.queryLimit(r)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	inferred, err := boolParam(r, "inferred", true)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	label := r.FormValue("label")
	var nodes []lpg.Node
	switch {
	case label == "":
		nodes = api.e.Nodes()
	case r.FormValue("depth") != "":
		depth, perr := strconv.Atoi(r.FormValue("depth"))
		if perr != nil || depth < 0 {
			jsonResponse(w, http.StatusBadRequest, fmt.Errorf("invalid depth: %q", r.FormValue("depth")))
			return
		}
		nodes, err = api.e.NodesWithLabelDepth(label, depth)
	default:
		nodes, err = api.e.NodesWithLabel(label, inferred)
	}
	if err != nil {
		jsonResponse(w, errorCode(err), err)
		return
	}
	writeResults(w, contentTypeJSON, listResponse{Count: len(nodes), Items: limitNodes(nodes, limit)})
}

// ServeRelationships lists relationships of a type, or all of them.
func (api *API) ServeRelationships(w http.ResponseWriter, r *http.Request) {
	limit, err := api.queryLimit(r)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	inferred, err := boolParam(r, "inferred", true)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	var rels []lpg.Relationship
	if typ := r.FormValue("type"); typ != "" {
		rels, err = api.e.RelationshipsOfType(typ, inferred)
	} else {
		rels = api.e.Relationships()
	}
	if err != nil {
		jsonResponse(w, errorCode(err), err)
		return
	}
	writeResults(w, contentTypeJSON, listResponse{Count: len(rels), Items: limitRels(rels, limit)})
}

func nodeID(p httprouter.Params) (lpg.NodeID, error) {
	s := p.ByName("id")
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid node id: %q", s)
	}
	return lpg.NodeID(id), nil
}

// ServeLinked lists the nodes linked to a node.
func (api *API) ServeLinked(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id, err := nodeID(p)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	dir, err := lpg.ParseDirection(r.FormValue("dir"))
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	inferred, err := boolParam(r, "inferred", true)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	limit, err := api.queryLimit(r)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	nodes, err := api.e.LinkedNodes(id, r.FormValue("type"), dir, inferred)
	if err != nil {
		jsonResponse(w, errorCode(err), err)
		return
	}
	writeResults(w, contentTypeJSON, listResponse{Count: len(nodes), Items: limitNodes(nodes, limit)})
}

func (api *API) ServeNode(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id, err := nodeID(p)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	n, err := api.e.NodeByID(id)
	if err != nil {
		jsonResponse(w, errorCode(err), err)
		return
	}
	writeResults(w, contentTypeJSON, n)
}

func (api *API) ServeNodeByURI(w http.ResponseWriter, r *http.Request) {
	uri := r.FormValue("uri")
	if uri == "" {
		jsonResponse(w, http.StatusBadRequest, "uri is not specified")
		return
	}
	n, ok := api.e.NodeByURI(uri)
	if !ok {
		jsonResponse(w, http.StatusNotFound, lpg.ErrNodeNotFound)
		return
	}
	writeResults(w, contentTypeJSON, n)
}

// ServeDescribe describes a resource (uri) or a node (id) as JSON-LD.
func (api *API) ServeDescribe(w http.ResponseWriter, r *http.Request) {
	var (
		doc map[string]interface{}
		err error
	)
	if uri := r.FormValue("uri"); uri != "" {
		doc, err = api.x.ResourceDocument(uri)
	} else if s := r.FormValue("id"); s != "" {
		id, perr := strconv.ParseUint(s, 10, 64)
		if perr != nil {
			jsonResponse(w, http.StatusBadRequest, fmt.Errorf("invalid node id: %q", s))
			return
		}
		doc, err = api.x.NodeDocument(lpg.NodeID(id))
	} else {
		jsonResponse(w, http.StatusBadRequest, "uri or id must be specified")
		return
	}
	if err != nil {
		jsonResponse(w, errorCode(err), err)
		return
	}
	w.Header().Set(hdrContentType, contentTypeJSONLD)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(doc)
}

func (api *API) ServeSchemas(w http.ResponseWriter, r *http.Request) {
	writeResults(w, contentTypeJSON, api.e.Schemas().ListSchemas(r.FormValue("filter")))
}

func (api *API) ServeMappings(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	name := p.ByName("name")
	id, ok := api.e.Schemas().SchemaByName(name)
	if !ok {
		jsonResponse(w, http.StatusNotFound, fmt.Errorf("%w: %q", schema.ErrUnknownSchema, name))
		return
	}
	maps, err := api.e.Schemas().ListMappings(id, r.FormValue("filter"))
	if err != nil {
		jsonResponse(w, errorCode(err), err)
		return
	}
	writeResults(w, contentTypeJSON, maps)
}

func (api *API) ServeStats(w http.ResponseWriter, r *http.Request) {
	writeResults(w, contentTypeJSON, api.e.Stats())
}

func (api *API) ServeFormats(w http.ResponseWriter, r *http.Request) {
	type Format struct {
		ID    string   `json:"id"`
		Read  bool     `json:"read,omitempty"`
		Write bool     `json:"write,omitempty"`
		Ext   []string `json:"ext,omitempty"`
		Mime  []string `json:"mime,omitempty"`
	}
	formats := quad.Formats()
	out := make([]Format, 0, len(formats))
	for _, f := range formats {
		out = append(out, Format{
			ID:  f.Name,
			Ext: f.Ext, Mime: f.Mime,
			Read: f.Reader != nil, Write: f.Writer != nil,
		})
	}
	writeResults(w, contentTypeJSON, out)
}

// importFormat picks the format from the format parameter, then the
// Content-Type of the request.
func importFormat(r *http.Request) string {
	if name := r.FormValue("format"); name != "" {
		return name
	}
	if f := quad.FormatByMime(r.Header.Get(hdrContentType)); f != nil {
		return f.Name
	}
	return ""
}

func (api *API) writable(w http.ResponseWriter) bool {
	if api.ro {
		jsonResponse(w, http.StatusForbidden, errors.New("database is read-only"))
		return false
	}
	return true
}

func (api *API) committed(ctx context.Context, w http.ResponseWriter) bool {
	if api.commit == nil {
		return true
	}
	if err := api.commit(ctx, api.e); err != nil {
		clog.Errorf("cannot persist changes: %v", err)
		jsonResponse(w, http.StatusInternalServerError, err)
		return false
	}
	return true
}

type importResponse struct {
	Result string             `json:"result"`
	Count  int                `json:"count"`
	Stats  lpgrdf.ImportStats `json:"stats"`
}

func (api *API) serveLoad(w http.ResponseWriter, r *http.Request, hierarchy bool) {
	defer r.Body.Close()
	if !api.writable(w) {
		return
	}
	ctx, cancel := api.queryContext(r)
	defer cancel()
	opts := loader.Options{
		Format:    importFormat(r),
		Batch:     api.batch,
		Hierarchy: hierarchy,
		NoWait:    true,
	}
	if name := r.FormValue("schema"); name != "" && !hierarchy {
		id, ok := api.e.Schemas().SchemaByName(name)
		if !ok {
			jsonResponse(w, http.StatusNotFound, fmt.Errorf("%w: %q", schema.ErrUnknownSchema, name))
			return
		}
		opts.Schema = id
	}
	rd, err := readerFrom(r)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	defer rd.Close()
	st, err := loader.Load(ctx, api.e, rd, opts)
	if err != nil {
		code := errorCode(err)
		if code == http.StatusInternalServerError {
			code = http.StatusBadRequest
		}
		jsonResponse(w, code, err)
		return
	}
	if !api.committed(ctx, w) {
		return
	}
	resp := importResponse{Count: st.Triples, Stats: st}
	if hierarchy {
		resp.Count = st.Edges
		resp.Result = fmt.Sprintf("Successfully added %d hierarchy edges.", st.Edges)
	} else {
		resp.Result = fmt.Sprintf("Successfully imported %d triples.", st.Triples)
	}
	w.Header().Set(hdrContentType, contentTypeJSON)
	json.NewEncoder(w).Encode(resp)
}

// ServeImport imports triples from the request body.
func (api *API) ServeImport(w http.ResponseWriter, r *http.Request) {
	api.serveLoad(w, r, false)
}

// ServeHierarchy feeds subclass and subproperty statements from the request
// body to the hierarchy index.
func (api *API) ServeHierarchy(w http.ResponseWriter, r *http.Request) {
	api.serveLoad(w, r, true)
}

func (api *API) ServeClear(w http.ResponseWriter, r *http.Request) {
	if !api.writable(w) {
		return
	}
	api.e.Clear()
	if !api.committed(r.Context(), w) {
		return
	}
	w.Header().Set(hdrContentType, contentTypeJSON)
	fmt.Fprint(w, `{"result": "Successfully cleared the database."}`+"\n")
}
