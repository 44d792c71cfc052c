package hme

import (
	"time"

	"github.com/tidwall/gjson"
)

// UnknownReason is reported when no recognized error shape is present.
const UnknownReason = "Unknown"

// Envelope is the decoded top-level document returned by every call. The service is not
// consistent about field types, so fields are inspected shape by shape rather than
// unmarshalled into a fixed struct. All accessors are safe on a nil *Envelope.
type Envelope struct {
	doc gjson.Result
}

// ParseEnvelope decodes a response body. The body must be a JSON object.
func ParseEnvelope(body []byte) (*Envelope, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrProtocol.Msg("response is not valid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, ErrProtocol.Msg("response is not a JSON object")
	}
	return &Envelope{doc: doc}, nil
}

func (e *Envelope) get(path string) gjson.Result {
	if e == nil {
		return gjson.Result{}
	}
	return e.doc.Get(path)
}

// Raw returns the original JSON text.
func (e *Envelope) Raw() string {
	if e == nil {
		return ""
	}
	return e.doc.Raw
}

// IsSuccess reports whether "success" holds an explicit truthy value: true, a non-zero
// number or a non-empty string.
func (e *Envelope) IsSuccess() bool {
	v := e.get("success")
	switch v.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	default:
		return false
	}
}

// ErrorMessage returns a display-ready failure reason. Shapes are tried in order:
// a numeric "error" with a sibling "reason", then an "error" object carrying
// "errorMessage". Anything else yields UnknownReason.
func (e *Envelope) ErrorMessage() string {
	errVal := e.get("error")

	if errVal.Type == gjson.Number {
		if reason := e.get("reason"); reason.Exists() && reason.String() != "" {
			return reason.String()
		}
	}

	if errVal.IsObject() {
		if msg := errVal.Get("errorMessage"); msg.Exists() && msg.String() != "" {
			return msg.String()
		}
	}

	return UnknownReason
}

// GeneratedAddress returns result.hme when it is a non-empty string.
func (e *Envelope) GeneratedAddress() (string, bool) {
	result := e.get("result")
	if !result.IsObject() {
		return "", false
	}
	hme := result.Get("hme")
	if hme.Type != gjson.String || hme.Str == "" {
		return "", false
	}
	return hme.Str, true
}

// ListingEntries decodes result.hmeEmails. Elements lacking a required field are left
// out and described in the second return value instead of failing the whole listing.
func (e *Envelope) ListingEntries() ([]ListingEntry, []SkippedEntry) {
	result := e.get("result")
	if !result.IsObject() {
		return nil, nil
	}
	list := result.Get("hmeEmails")
	if !list.IsArray() {
		return nil, nil
	}

	var entries []ListingEntry
	var skipped []SkippedEntry
	for i, el := range list.Array() {
		entry, reason := decodeListingEntry(el)
		if reason != "" {
			skipped = append(skipped, SkippedEntry{Index: i, Reason: reason})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped
}

func decodeListingEntry(el gjson.Result) (ListingEntry, string) {
	if !el.IsObject() {
		return ListingEntry{}, "element is not an object"
	}

	active := el.Get("isActive")
	if active.Type != gjson.True && active.Type != gjson.False {
		return ListingEntry{}, "isActive missing or not a boolean"
	}
	label := el.Get("label")
	if label.Type != gjson.String {
		return ListingEntry{}, "label missing or not a string"
	}
	address := el.Get("hme")
	if address.Type != gjson.String {
		return ListingEntry{}, "hme missing or not a string"
	}
	created := el.Get("createTimestamp")
	if created.Type != gjson.Number {
		return ListingEntry{}, "createTimestamp missing or not a number"
	}

	return ListingEntry{
		Label:       label.Str,
		Address:     address.Str,
		CreatedAt:   time.UnixMilli(created.Int()),
		IsActive:    active.Bool(),
		Note:        el.Get("note").String(),
		ForwardTo:   el.Get("forwardToEmail").String(),
		AnonymousID: el.Get("anonymousId").String(),
	}, ""
}
