// Package hme drives the Hide My Email alias lifecycle: generating and reserving aliases
// in bounded concurrent batches, and listing existing aliases with client-side filters.
package hme

import (
	"context"
	"time"
)

// MaxConcurrency is the number of aliases processed concurrently in one chunk.
const MaxConcurrency = 10

// API is the set of remote calls the workflows depend on. Each call makes exactly one
// attempt. A returned error wraps ErrTransport or ErrProtocol.
type API interface {
	GenerateAlias(ctx context.Context) (*Envelope, error)
	ReserveAlias(ctx context.Context, address string) (*Envelope, error)
	ListAliases(ctx context.Context) (*Envelope, error)
}

// ListingEntry is one alias as reported by the list call.
type ListingEntry struct {
	Label       string    `json:"label"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"createdAt"`
	IsActive    bool      `json:"isActive"`
	Note        string    `json:"note,omitempty"`
	ForwardTo   string    `json:"forwardTo,omitempty"`
	AnonymousID string    `json:"anonymousId,omitempty"`
}

// SkippedEntry describes a listing element that could not be decoded.
type SkippedEntry struct {
	Index  int
	Reason string
}

// Stage names the step of the generate-then-reserve sequence a notice refers to.
type Stage string

const (
	StageGenerate Stage = "generate"
	StageReserve  Stage = "reserve"
)

// Reporter receives progress notices while a batch runs. Implementations must be safe
// for concurrent use; notices from one chunk arrive in no particular order.
type Reporter interface {
	Generated(address string)
	Reserved(address string)
	Failed(stage Stage, address string, reason string)
}

type nopReporter struct{}

func (nopReporter) Generated(string)             {}
func (nopReporter) Reserved(string)              {}
func (nopReporter) Failed(Stage, string, string) {}
