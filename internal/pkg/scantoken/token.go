// Package scantoken encodes and validates the short-lived tokens rendered as
// QR codes on the employee app and scanned at the attendance kiosk.
//
// A token is the base64 encoding of the JSON object {"id": <employee id>,
// "ts": <issue time in epoch milliseconds>}.
package scantoken

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrMalformed = errors.New("scan token is malformed")
	ErrExpired   = errors.New("scan token is outside its validity window")
)

const (
	DefaultPastTolerance   = 120 * time.Second
	DefaultFutureTolerance = 5 * time.Second
)

type Payload struct {
	EmployeeID string
	IssuedAt   time.Time
}

type wirePayload struct {
	ID json.RawMessage `json:"id"`
	TS *int64          `json:"ts"`
}

// Encode builds the token for employeeID issued at issuedAt.
func Encode(employeeID string, issuedAt time.Time) string {
	raw, _ := json.Marshal(struct {
		ID string `json:"id"`
		TS int64  `json:"ts"`
	}{ID: employeeID, TS: issuedAt.UnixMilli()})
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode parses a token. Numeric ids are accepted and returned in their
// decimal form.
func Decode(token string) (Payload, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Payload{}, ErrMalformed
	}

	raw, err := decodeBase64(token)
	if err != nil {
		return Payload{}, ErrMalformed
	}

	var wp wirePayload
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&wp); err != nil {
		return Payload{}, ErrMalformed
	}
	if wp.TS == nil || len(wp.ID) == 0 {
		return Payload{}, ErrMalformed
	}

	id, err := decodeID(wp.ID)
	if err != nil || id == "" {
		return Payload{}, ErrMalformed
	}

	return Payload{EmployeeID: id, IssuedAt: time.UnixMilli(*wp.TS)}, nil
}

func decodeBase64(token string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		raw, err := enc.DecodeString(token)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func decodeID(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	if _, err := n.Int64(); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Window is the accepted range of now - issuedAt.
type Window struct {
	Past   time.Duration
	Future time.Duration
}

func DefaultWindow() Window {
	return Window{Past: DefaultPastTolerance, Future: DefaultFutureTolerance}
}

// Check reports ErrExpired unless -Future <= now-issuedAt <= Past.
func (w Window) Check(p Payload, now time.Time) error {
	age := now.Sub(p.IssuedAt)
	if age > w.Past || age < -w.Future {
		return ErrExpired
	}
	return nil
}
