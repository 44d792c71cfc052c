// Package hmetest provides an in-memory stand-in for the Hide My Email web service.
package hmetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// Alias is an alias known to the fake service.
type Alias struct {
	Label           string `json:"label"`
	Address         string `json:"hme"`
	IsActive        bool   `json:"isActive"`
	CreateTimestamp int64  `json:"createTimestamp"`
	Note            string `json:"note"`
}

// Request records what the service received.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   string
}

// Service implements the generate, reserve and list endpoints. The zero value accepts any
// cookie; set Cookie to require a specific one.
type Service struct {
	Cookie string

	// GenerateError makes every generate call fail with this errorMessage.
	GenerateError string
	// ReserveErrors maps an address to the errorMessage its reservation fails with.
	ReserveErrors map[string]string
	// ListError makes the list call fail with this reason.
	ListError string
	// RawList replaces the list response body when set.
	RawList string

	mu        sync.Mutex
	next      int
	generated map[string]bool
	aliases   []Alias
	requests  []Request
}

// NewService returns an empty service.
func NewService() *Service {
	return &Service{
		ReserveErrors: map[string]string{},
		generated:     map[string]bool{},
	}
}

// AddAlias seeds an already reserved alias.
func (s *Service) AddAlias(a Alias) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases = append(s.aliases, a)
}

// Aliases returns the reserved aliases in reservation order.
func (s *Service) Aliases() []Alias {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Alias(nil), s.aliases...)
}

// Requests returns every request received so far.
func (s *Service) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// ServeHTTP dispatches to the endpoint handlers.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.record(r, body)

	if s.Cookie != "" && r.Header.Get("Cookie") != s.Cookie {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"error":   1,
			"reason":  "Missing X-APPLE-WEBAUTH-TOKEN cookie",
		})
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/hme/generate":
		s.generate(w)
	case r.Method == http.MethodPost && r.URL.Path == "/v1/hme/reserve":
		s.reserve(w, body)
	case r.Method == http.MethodGet && r.URL.Path == "/v2/hme/list":
		s.list(w)
	default:
		http.NotFound(w, r)
	}
}

func (s *Service) record(r *http.Request, body []byte) {
	query := map[string]string{}
	for k := range r.URL.Query() {
		query[k] = r.URL.Query().Get(k)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  query,
		Header: r.Header.Clone(),
		Body:   string(body),
	})
}

func (s *Service) generate(w http.ResponseWriter) {
	if s.GenerateError != "" {
		writeFailure(w, s.GenerateError)
		return
	}

	s.mu.Lock()
	s.next++
	address := fmt.Sprintf("alias%03d@privaterelay.appleid.com", s.next)
	s.generated[address] = true
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"timestamp": time.Now().Unix(),
		"result":    map[string]any{"hme": address},
	})
}

func (s *Service) reserve(w http.ResponseWriter, body []byte) {
	req := gjson.ParseBytes(body)
	address := req.Get("hme").String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if msg, ok := s.ReserveErrors[address]; ok {
		writeFailure(w, msg)
		return
	}
	if !s.generated[address] {
		writeFailure(w, "address was not generated")
		return
	}
	delete(s.generated, address)

	alias := Alias{
		Label:           req.Get("label").String(),
		Address:         address,
		IsActive:        true,
		CreateTimestamp: time.Now().UnixMilli(),
		Note:            req.Get("note").String(),
	}
	s.aliases = append(s.aliases, alias)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  map[string]any{"hme": alias},
	})
}

func (s *Service) list(w http.ResponseWriter) {
	if s.ListError != "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   1,
			"reason":  s.ListError,
		})
		return
	}
	if s.RawList != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(s.RawList))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result": map[string]any{
			"forwardToEmails":   []string{"me@example.com"},
			"selectedForwardTo": "me@example.com",
			"hmeEmails":         s.Aliases(),
		},
	})
}

func writeFailure(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": false,
		"error": map[string]any{
			"errorCode":    "-41015",
			"errorMessage": msg,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
