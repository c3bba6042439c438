package scantoken

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_RoundTrip(t *testing.T) {
	issued := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	token := Encode("0193a1b2-0000-7000-8000-000000000001", issued)

	p, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "0193a1b2-0000-7000-8000-000000000001", p.EmployeeID)
	assert.True(t, p.IssuedAt.Equal(issued))
}

func TestDecode_NumericID(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte(`{"id":42,"ts":1700000000000}`))

	p, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "42", p.EmployeeID)
	assert.Equal(t, int64(1700000000000), p.IssuedAt.UnixMilli())
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "%%%not-base64%%%"},
		{"not json", base64.StdEncoding.EncodeToString([]byte("hello"))},
		{"missing ts", base64.StdEncoding.EncodeToString([]byte(`{"id":"e1"}`))},
		{"missing id", base64.StdEncoding.EncodeToString([]byte(`{"ts":1700000000000}`))},
		{"empty id", base64.StdEncoding.EncodeToString([]byte(`{"id":"","ts":1700000000000}`))},
		{"object id", base64.StdEncoding.EncodeToString([]byte(`{"id":{"x":1},"ts":1700000000000}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.token)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestWindow_Check(t *testing.T) {
	issued := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	p := Payload{EmployeeID: "e1", IssuedAt: issued}
	w := DefaultWindow()

	tests := []struct {
		name    string
		now     time.Time
		wantErr bool
	}{
		{"same instant", issued, false},
		{"at past boundary", issued.Add(120 * time.Second), false},
		{"scanned after 130s", issued.Add(130 * time.Second), true},
		{"issued 5s in the future", issued.Add(-5 * time.Second), false},
		{"issued 6s in the future", issued.Add(-6 * time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.Check(p, tt.now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrExpired)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
