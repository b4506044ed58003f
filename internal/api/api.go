// Package api exposes the driver as a JSON REST API for the orchestration
// platform.
//
// Routes:
//
//	GET    /v1/domains
//	POST   /v1/entries                  {"name","zone","address","type"}
//	PUT    /v1/entries/{zone}/{name}    {"address"}
//	DELETE /v1/entries/{zone}/{name}
//	GET    /v1/entries?zone=&name=
//	GET    /v1/entries?address=
package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"gitlab.bluewillows.net/root/dyndns/pkg/dnsupdate"
	"gitlab.bluewillows.net/root/dyndns/pkg/dyndns"
	"gitlab.bluewillows.net/root/dyndns/pkg/resolver"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// EntryRequest is the body of POST /v1/entries. Type defaults to A.
type EntryRequest struct {
	Name    string `json:"name"`
	Zone    string `json:"zone"`
	Address string `json:"address"`
	Type    string `json:"type,omitempty"`
}

// AddressRequest is the body of PUT /v1/entries/{zone}/{name}.
type AddressRequest struct {
	Address string `json:"address"`
}

// DomainsResponse lists the managed zones.
type DomainsResponse struct {
	Domains []string `json:"domains"`
}

// EntryResponse acknowledges a mutation.
type EntryResponse struct {
	Status string `json:"status"`
	Name   string `json:"name"`
	Zone   string `json:"zone"`
}

// AddressesResponse is the result of a lookup by name.
type AddressesResponse struct {
	Name      string   `json:"name"`
	Addresses []string `json:"addresses"`
}

// NamesResponse is the result of a lookup by address.
type NamesResponse struct {
	Address string   `json:"address"`
	Names   []string `json:"names"`
}

// ErrorResponse is returned for every failed request. Partial is set when
// the forward change was applied but the reverse one was not.
type ErrorResponse struct {
	Error   string `json:"error"`
	Partial bool   `json:"partial,omitempty"`
}

// Server serves the REST API over a Driver.
type Server struct {
	driver dyndns.Driver
	token  string
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires "Authorization: Bearer <token>" on every request.
// An empty token leaves the API open.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an API server over driver.
func New(driver dyndns.Driver, opts ...Option) *Server {
	s := &Server{
		driver: driver,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed and authenticated handler. Paths are absolute,
// so it can be mounted at "/v1/" on another mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/domains", s.handleDomains)
	mux.HandleFunc("POST /v1/entries", s.handleCreate)
	mux.HandleFunc("GET /v1/entries", s.handleLookup)
	mux.HandleFunc("PUT /v1/entries/{zone}/{name}", s.handleModify)
	mux.HandleFunc("DELETE /v1/entries/{zone}/{name}", s.handleDelete)

	return s.authenticate(mux)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	if s.token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="dyndns"`)
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleDomains(w http.ResponseWriter, _ *http.Request) {
	zones, err := s.driver.GetDomains()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if zones == nil {
		zones = []string{}
	}
	writeJSON(w, http.StatusOK, DomainsResponse{Domains: zones})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if !decode(w, r, &req) {
		return
	}

	t := dnsupdate.TypeA
	if req.Type != "" {
		parsed, err := dnsupdate.ParseRecordType(req.Type)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		t = parsed
	}

	if err := s.driver.CreateEntry(r.Context(), req.Name, req.Address, t, req.Zone); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, EntryResponse{Status: "created", Name: req.Name, Zone: req.Zone})
}

func (s *Server) handleModify(w http.ResponseWriter, r *http.Request) {
	zone, name := r.PathValue("zone"), r.PathValue("name")

	var req AddressRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.driver.ModifyAddress(r.Context(), name, req.Address, zone); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EntryResponse{Status: "updated", Name: name, Zone: zone})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	zone, name := r.PathValue("zone"), r.PathValue("name")

	if err := s.driver.DeleteEntry(r.Context(), name, zone); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EntryResponse{Status: "deleted", Name: name, Zone: zone})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	zone, name, address := q.Get("zone"), q.Get("name"), q.Get("address")

	switch {
	case address != "":
		names, err := s.driver.GetEntriesByAddress(r.Context(), address, zone)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, NamesResponse{Address: address, Names: nonNil(names)})

	case name != "":
		addrs, err := s.driver.GetEntriesByName(r.Context(), name, zone)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, AddressesResponse{Name: resolver.Qualify(name, zone), Addresses: nonNil(addrs)})

	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "name or address query parameter is required"})
	}
}

// writeError maps a driver error to a status code.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("api request failed", slog.Int("status", status), slog.String("error", err.Error()))
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Partial: dyndns.IsPartial(err)})
}

// StatusFor returns the HTTP status for a driver error.
func StatusFor(err error) int {
	var resErr *resolver.ResolutionError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dyndns.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, dyndns.ErrZoneNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, dyndns.ErrInvalidRequest),
		errors.Is(err, dnsupdate.ErrInvalidAddress),
		errors.Is(err, dnsupdate.ErrUnsupportedAddressFamily):
		return http.StatusBadRequest
	case dyndns.IsPartial(err):
		return http.StatusBadGateway
	case dnsupdate.IsNetworkError(err):
		return http.StatusGatewayTimeout
	case dnsupdate.IsTransportError(err),
		errors.As(err, &resErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid JSON: %v", err)})
		return false
	}
	return true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
