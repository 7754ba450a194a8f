package persistence

import (
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_CanonicalShape(t *testing.T) {
	state, err := Decode([]byte(`{"p1":2,"p2":5}`))
	require.NoError(t, err)
	assert.Equal(t, domain.CartState{"p1": 2, "p2": 5}, state)
}

func TestDecode_LegacyShapeIsMigrated(t *testing.T) {
	state, err := Decode([]byte(`{"p1":{"quantity":3},"p2":1}`))
	require.NoError(t, err)
	assert.Equal(t, domain.CartState{"p1": 3, "p2": 1}, state)
}

func TestDecode_DropsNonPositiveAndEmptyIDs(t *testing.T) {
	state, err := Decode([]byte(`{"p1":0,"p2":-4,"":7,"p3":{"quantity":0},"p4":1}`))
	require.NoError(t, err)
	assert.Equal(t, domain.CartState{"p4": 1}, state)
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"truncated":        `{"p1":2,"p2`,
		"array":            `[1,2,3]`,
		"null":             `null`,
		"empty":            ``,
		"string quantity":  `{"p1":"3"}`,
		"fractional":       `{"p1":2.5}`,
		"legacy no field":  `{"p1":{"qty":3}}`,
		"legacy bad value": `{"p1":{"quantity":"x"}}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(payload))
			assert.ErrorIs(t, err, ErrMalformedCart)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	states := []domain.CartState{
		{},
		{"p1": 1},
		{"p1": 4, "p2": 99, "65d0c1e2f3": 12},
	}
	for _, s := range states {
		data, err := Encode(s)
		require.NoError(t, err)

		loaded, err := Decode(data)
		require.NoError(t, err)
		assert.True(t, s.Equal(loaded), "round trip changed %v into %v", s, loaded)
	}
}

func TestEncode_NilStateIsEmptyObject(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}
