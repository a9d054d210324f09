package service

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/domain"
	"github.com/voshodshop/cartengine/internal/repository"
	"github.com/voshodshop/cartengine/internal/session"
	apperrors "github.com/voshodshop/cartengine/pkg/errors"
)

var (
	postalIndexPattern = regexp.MustCompile(`^\d{6}$`)
	freeTextIndex      = regexp.MustCompile(`(?:^|\D)(\d{6})(?:\D|$)`)
)

// indexExtractor looks for a postal index in one place of a normalization payload
type indexExtractor struct {
	name    string
	extract func(payload interface{}) (string, bool)
}

// indexExtractors are tried in order; the first match wins
var indexExtractors = []indexExtractor{
	{name: "index", extract: fieldIndex("index")},
	{name: "postal_code", extract: fieldIndex("postal_code")},
	{name: "free_text", extract: freeTextIndexOf},
	{name: "data", extract: nestedIndex("data")},
}

// free-text fields searched when the payload is an object
var freeTextFields = []string{"address", "value", "original-address", "result"}

type AddressService struct {
	repos   *repository.Repositories
	session *session.Session
	logger  *zap.Logger
}

// NewAddressService creates a new address normalizer
func NewAddressService(repos *repository.Repositories, sess *session.Session, logger *zap.Logger) *AddressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AddressService{
		repos:   repos,
		session: sess,
		logger:  logger,
	}
}

// Normalize sends rawAddress to the normalization service. A result without an index is not an
// error; a found index is also stored as the session's postal index.
func (s *AddressService) Normalize(ctx context.Context, rawAddress string) (*domain.NormalizedAddress, error) {
	rawAddress = strings.TrimSpace(rawAddress)
	if rawAddress == "" {
		return nil, &apperrors.ErrValidation{
			Message: "address is required",
			Fields:  map[string]string{"address": "required"},
		}
	}

	resp, err := s.repos.Address.Normalize(ctx, rawAddress)
	if err != nil {
		s.logger.Warn("Address normalization failed", zap.Error(err))
		return nil, err
	}

	addr, matchedBy, err := ParseNormalizedAddress(resp.NormalizedAddress)
	if err != nil {
		s.logger.Warn("Address normalization returned malformed payload", zap.Error(err))
		return nil, err
	}

	if addr.Index != "" {
		s.session.SetPostalIndex(addr.Index)
		s.logger.Debug("Postal index extracted",
			zap.String("index", addr.Index),
			zap.String("matched_by", matchedBy),
		)
	} else {
		s.logger.Info("Normalized address has no postal index")
	}

	return addr, nil
}

// ParseNormalizedAddress decodes a normalized_address payload of any supported shape.
// matchedBy names the extractor that found the index, empty when none did.
func ParseNormalizedAddress(raw json.RawMessage) (addr *domain.NormalizedAddress, matchedBy string, err error) {
	addr = &domain.NormalizedAddress{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return addr, "", nil
	}

	var payload interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, "", &apperrors.ErrParse{Op: "normalize address", Err: err}
	}

	if obj, ok := payload.(map[string]interface{}); ok {
		fillAddress(addr, obj)
		if nested, ok := obj["data"].(map[string]interface{}); ok {
			fillAddress(addr, nested)
		}
	}

	for _, ex := range indexExtractors {
		if index, ok := ex.extract(payload); ok {
			addr.Index = index
			return addr, ex.name, nil
		}
	}
	return addr, "", nil
}

// fillAddress copies address parts from obj without overwriting parts already set
func fillAddress(addr *domain.NormalizedAddress, obj map[string]interface{}) {
	set := func(dst *string, key string) {
		if *dst != "" {
			return
		}
		*dst = stringField(obj, key)
	}
	set(&addr.Region, "region")
	set(&addr.Place, "place")
	set(&addr.Location, "location")
	set(&addr.Street, "street")
	set(&addr.House, "house")
	set(&addr.Building, "building")
	set(&addr.Corpus, "corpus")
	set(&addr.Room, "room")
}

func fieldIndex(key string) func(interface{}) (string, bool) {
	return func(payload interface{}) (string, bool) {
		obj, ok := payload.(map[string]interface{})
		if !ok {
			return "", false
		}
		v := stringField(obj, key)
		if postalIndexPattern.MatchString(v) {
			return v, true
		}
		return "", false
	}
}

func freeTextIndexOf(payload interface{}) (string, bool) {
	switch v := payload.(type) {
	case string:
		return firstIndexToken(v)
	case map[string]interface{}:
		for _, key := range freeTextFields {
			if index, ok := firstIndexToken(stringField(v, key)); ok {
				return index, true
			}
		}
	}
	return "", false
}

func nestedIndex(key string) func(interface{}) (string, bool) {
	return func(payload interface{}) (string, bool) {
		obj, ok := payload.(map[string]interface{})
		if !ok {
			return "", false
		}
		nested, ok := obj[key].(map[string]interface{})
		if !ok {
			return "", false
		}
		// one level only: the nested object is searched with the flat extractors
		for _, ex := range []func(interface{}) (string, bool){fieldIndex("index"), fieldIndex("postal_code"), freeTextIndexOf} {
			if index, ok := ex(nested); ok {
				return index, true
			}
		}
		return "", false
	}
}

func firstIndexToken(text string) (string, bool) {
	m := freeTextIndex.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func stringField(obj map[string]interface{}, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

const (
	labelBuilding = "стр."
	labelCorpus   = "корп."
	labelRoom     = "кв."
)

// FormatAddress renders a one-line address, skipping empty parts and the city when it
// repeats the region.
func FormatAddress(a domain.NormalizedAddress) string {
	parts := make([]string, 0, 9)
	add := func(label, v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if label != "" {
			v = label + " " + v
		}
		parts = append(parts, v)
	}

	add("", a.Index)
	add("", a.Region)
	if !strings.EqualFold(strings.TrimSpace(a.Place), strings.TrimSpace(a.Region)) {
		add("", a.Place)
	}
	add("", a.Location)
	add("", a.Street)
	add("", a.House)
	add(labelBuilding, a.Building)
	add(labelCorpus, a.Corpus)
	add(labelRoom, a.Room)

	return strings.Join(parts, ", ")
}
