package hme

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"
)

// Filter selects listing entries. LabelPattern is a regular expression matched anywhere
// in the label; an empty pattern matches every label.
type Filter struct {
	Active       bool
	LabelPattern string
}

// Lister fetches and filters the account's aliases.
type Lister struct {
	api API
}

// NewLister returns a Lister backed by api.
func NewLister(api API) *Lister {
	return &Lister{api: api}
}

// List returns the entries matching f in service order. When the listing cannot be
// obtained the returned error wraps ErrListFailed and its message is the reason.
func (l *Lister) List(ctx context.Context, f Filter) ([]ListingEntry, error) {
	re, err := compilePattern(f.LabelPattern)
	if err != nil {
		return nil, err
	}

	env, err := l.api.ListAliases(ctx)
	if err != nil {
		return nil, ErrListFailed.MsgErr(err.Error(), err)
	}
	if !env.IsSuccess() {
		return nil, ErrListFailed.Msg(env.ErrorMessage())
	}

	entries, skipped := env.ListingEntries()
	for _, s := range skipped {
		log.Warn().Int("index", s.Index).Str("reason", s.Reason).Msg("skipping malformed listing entry")
	}
	return filterEntries(entries, f.Active, re), nil
}

// FilterEntries applies f to entries without calling the service.
func FilterEntries(entries []ListingEntry, f Filter) ([]ListingEntry, error) {
	re, err := compilePattern(f.LabelPattern)
	if err != nil {
		return nil, err
	}
	return filterEntries(entries, f.Active, re), nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern %q: %w", pattern, err)
	}
	return re, nil
}

func filterEntries(entries []ListingEntry, active bool, re *regexp.Regexp) []ListingEntry {
	out := make([]ListingEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsActive != active {
			continue
		}
		if re != nil && !re.MatchString(e.Label) {
			continue
		}
		out = append(out, e)
	}
	return out
}
