package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voshodshop/cartengine/internal/domain"
	"github.com/voshodshop/cartengine/internal/storefront"
	apperrors "github.com/voshodshop/cartengine/pkg/errors"
)

func TestParseNormalizedAddress(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		index     string
		matchedBy string
	}{
		{name: "index field", raw: `{"index":"101000","region":"Москва"}`, index: "101000", matchedBy: "index"},
		{name: "numeric index", raw: `{"index":101000}`, index: "101000", matchedBy: "index"},
		{name: "postal code", raw: `{"postal_code":"101000"}`, index: "101000", matchedBy: "postal_code"},
		{name: "index preferred over postal code", raw: `{"index":"190000","postal_code":"101000"}`, index: "190000", matchedBy: "index"},
		{name: "malformed index falls through", raw: `{"index":"1010","postal_code":"101000"}`, index: "101000", matchedBy: "postal_code"},
		{name: "free-text string", raw: `"101000, г Москва, ул Тверская, д 7"`, index: "101000", matchedBy: "free_text"},
		{name: "free-text field", raw: `{"address":"г Москва, 101000, ул Тверская"}`, index: "101000", matchedBy: "free_text"},
		{name: "first standalone token", raw: `"кв 1234567, 190000, 101000"`, index: "190000", matchedBy: "free_text"},
		{name: "nested data", raw: `{"data":{"postal_code":"630099","city":"Новосибирск"}}`, index: "630099", matchedBy: "data"},
		{name: "no index", raw: `{"region":"Москва","street":"Тверская"}`},
		{name: "null", raw: `null`},
		{name: "empty", raw: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, matchedBy, err := ParseNormalizedAddress(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.index, addr.Index)
			assert.Equal(t, tt.matchedBy, matchedBy)
		})
	}
}

func TestParseNormalizedAddressFields(t *testing.T) {
	raw := `{"region":"Москва","street":"ул Тверская","data":{"house":"7","room":12}}`

	addr, _, err := ParseNormalizedAddress(json.RawMessage(raw))
	require.NoError(t, err)

	assert.Equal(t, "Москва", addr.Region)
	assert.Equal(t, "ул Тверская", addr.Street)
	assert.Equal(t, "7", addr.House)
	assert.Equal(t, "12", addr.Room)
}

func TestParseNormalizedAddressMalformed(t *testing.T) {
	_, _, err := ParseNormalizedAddress(json.RawMessage(`{"index":`))

	var perr *apperrors.ErrParse
	assert.ErrorAs(t, err, &perr)
}

func TestNormalizeSetsPostalIndex(t *testing.T) {
	f := newFixture(t)
	f.address.resp = decode[storefront.NormalizeAddressResponse](t, `{"status":"success","normalized_address":{"postal_code":"101000"}}`)

	addr, err := f.svcs.Address.Normalize(context.Background(), "  Москва, Тверская 7 ")
	require.NoError(t, err)

	assert.Equal(t, "101000", addr.Index)
	assert.Equal(t, "101000", f.session.Shipping().PostalIndex)
	assert.Equal(t, []string{"Москва, Тверская 7"}, f.address.sent)
}

func TestNormalizeWithoutIndexKeepsPreviousIndex(t *testing.T) {
	f := newFixture(t)
	f.session.SetPostalIndex("190000")
	f.address.resp = decode[storefront.NormalizeAddressResponse](t, `{"status":"success","normalized_address":{"region":"Москва"}}`)

	addr, err := f.svcs.Address.Normalize(context.Background(), "Москва")
	require.NoError(t, err)

	assert.Empty(t, addr.Index)
	assert.Equal(t, "Москва", addr.Region)
	assert.Equal(t, "190000", f.session.Shipping().PostalIndex)
}

func TestNormalizeErrors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svcs.Address.Normalize(context.Background(), "   ")

		var verr *apperrors.ErrValidation
		require.ErrorAs(t, err, &verr)
		assert.Empty(t, f.address.sent)
	})

	t.Run("transport", func(t *testing.T) {
		f := newFixture(t)
		f.address.err = &apperrors.ErrTransport{Op: "POST /api/normalize-address/", StatusCode: 502}

		_, err := f.svcs.Address.Normalize(context.Background(), "Москва")

		var terr *apperrors.ErrTransport
		require.ErrorAs(t, err, &terr)
		assert.Empty(t, f.session.Shipping().PostalIndex)
	})
}

func TestFormatAddress(t *testing.T) {
	tests := []struct {
		name string
		addr domain.NormalizedAddress
		want string
	}{
		{
			name: "full",
			addr: domain.NormalizedAddress{
				Index:    "630099",
				Region:   "Новосибирская обл",
				Place:    "Новосибирск",
				Street:   "ул Ленина",
				House:    "1",
				Building: "2",
				Corpus:   "3",
				Room:     "45",
			},
			want: "630099, Новосибирская обл, Новосибирск, ул Ленина, 1, стр. 2, корп. 3, кв. 45",
		},
		{
			name: "city equal to region",
			addr: domain.NormalizedAddress{Index: "101000", Region: "Москва", Place: "москва", Street: "ул Тверская", House: "7"},
			want: "101000, Москва, ул Тверская, 7",
		},
		{
			name: "sparse",
			addr: domain.NormalizedAddress{Place: "Тула", Location: "мкр Северный", Room: " "},
			want: "Тула, мкр Северный",
		},
		{
			name: "empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAddress(tt.addr))
		})
	}
}
