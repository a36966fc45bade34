package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/text/width"

	"github.com/goayasushi/zaiko-be/internal/platform/httpx"
)

// Kind selects how a field's raw value is coerced.
type Kind int

const (
	KindString Kind = iota
	KindEmail
	KindURL
	KindChoice
	KindDecimal
	KindInteger
	KindReference
)

// CheckFunc runs once a field's own rules pass. A non-empty message is a
// violation on that field; an error aborts validation.
type CheckFunc func(ctx context.Context, value any) (string, error)

// FieldRule describes one writable field.
type FieldRule struct {
	Name     string
	Kind     Kind
	Required bool
	Nullable bool

	// AllowBlank accepts "" for string kinds; BlankAsNull stores it as NULL.
	AllowBlank  bool
	BlankAsNull bool
	MaxLength   int

	Choices []string

	MaxDigits     int
	DecimalPlaces int

	// Min and Max bound numeric kinds, inclusive.
	Min *int64
	Max *int64
	// EmptyAsZero coerces "" to 0 for integers.
	EmptyAsZero bool

	// Default applies on create when the key is absent.
	Default any
	Check   CheckFunc
}

// Limit returns a pointer for FieldRule bounds.
func Limit(n int64) *int64 {
	return &n
}

// Payload is a decoded request body keyed by field name.
type Payload map[string]any

// Values holds coerced field values: string, decimal.Decimal, int64 or nil.
type Values map[string]any

var (
	formats        = validator.New()
	urlSchemes     = []string{"http", "https", "ftp", "ftps"}
	zeroFractionRe = regexp.MustCompile(`\.0*\s*$`)
)

// Mode selects how Validate treats keys missing from the payload.
type Mode int

const (
	// ModeCreate fills absent optional fields with their defaults.
	ModeCreate Mode = iota
	// ModeReplace requires every required field and leaves absent optional
	// fields as stored.
	ModeReplace
	// ModePatch only considers keys present in the payload.
	ModePatch
)

// UpdateMode maps the partial flag of an update onto a Mode.
func UpdateMode(partial bool) Mode {
	if partial {
		return ModePatch
	}
	return ModeReplace
}

// Validate applies rules to payload and returns every violation at once.
func Validate(ctx context.Context, rules []FieldRule, payload Payload, mode Mode) (Values, error) {
	values := make(Values, len(rules))
	fieldErrs := httpx.FieldErrors{}
	for _, rule := range rules {
		raw, present := payload[rule.Name]
		if !present {
			switch {
			case mode == ModePatch:
			case rule.Required:
				fieldErrs.Add(rule.Name, MsgRequired)
			case mode == ModeCreate && (rule.Default != nil || rule.Nullable):
				values[rule.Name] = rule.Default
			}
			continue
		}
		value, msgs := rule.coerce(raw)
		if len(msgs) > 0 {
			fieldErrs[rule.Name] = append(fieldErrs[rule.Name], msgs...)
			continue
		}
		if rule.Check != nil && value != nil {
			msg, err := rule.Check(ctx, value)
			if err != nil {
				return nil, fmt.Errorf("validate %s: %w", rule.Name, err)
			}
			if msg != "" {
				fieldErrs.Add(rule.Name, msg)
				continue
			}
		}
		values[rule.Name] = value
	}
	if err := fieldErrs.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func (r FieldRule) coerce(raw any) (any, []string) {
	if s, ok := raw.(string); ok && s == "" && r.Kind == KindReference {
		raw = nil
	}
	if raw == nil {
		if r.Nullable {
			return nil, nil
		}
		return nil, []string{MsgNull}
	}
	switch r.Kind {
	case KindChoice:
		return r.coerceChoice(raw)
	case KindDecimal:
		return r.coerceDecimal(raw)
	case KindInteger:
		return r.coerceInteger(raw)
	case KindReference:
		return r.coerceReference(raw)
	default:
		return r.coerceString(raw)
	}
}

func (r FieldRule) coerceString(raw any) (any, []string) {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	default:
		return nil, []string{MsgInvalidString}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		if !r.AllowBlank {
			return nil, []string{MsgBlank}
		}
		if r.BlankAsNull {
			return nil, nil
		}
		return "", nil
	}
	var msgs []string
	if r.MaxLength > 0 && utf8.RuneCountInString(s) > r.MaxLength {
		msgs = append(msgs, MsgMaxLength(r.MaxLength))
	}
	switch r.Kind {
	case KindEmail:
		if formats.Var(s, "email") != nil {
			msgs = append(msgs, MsgInvalidEmail)
		}
	case KindURL:
		if !validURL(s) {
			msgs = append(msgs, MsgInvalidURL)
		}
	}
	if len(msgs) > 0 {
		return nil, msgs
	}
	return s, nil
}

func validURL(s string) bool {
	if formats.Var(s, "url") != nil {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return slices.Contains(urlSchemes, strings.ToLower(u.Scheme))
}

func (r FieldRule) coerceChoice(raw any) (any, []string) {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	default:
		s = fmt.Sprint(v)
	}
	if !slices.Contains(r.Choices, s) {
		return nil, []string{MsgInvalidChoice(s)}
	}
	return s, nil
}

func (r FieldRule) coerceDecimal(raw any) (any, []string) {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	default:
		return nil, []string{MsgInvalidNumber}
	}
	s = strings.TrimSpace(width.Narrow.String(s))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, []string{MsgInvalidNumber}
	}
	if msg := r.precision(d); msg != "" {
		return nil, []string{msg}
	}
	places := int32(r.DecimalPlaces)
	if r.Min != nil && d.LessThan(decimal.NewFromInt(*r.Min)) {
		return nil, []string{MsgMinValue(decimal.NewFromInt(*r.Min).StringFixed(places))}
	}
	if r.Max != nil && d.GreaterThan(decimal.NewFromInt(*r.Max)) {
		return nil, []string{MsgMaxValue(decimal.NewFromInt(*r.Max).StringFixed(places))}
	}
	return d.Round(places), nil
}

// precision counts digits the way a numeric(p,s) column sees the literal,
// trailing zeros included.
func (r FieldRule) precision(d decimal.Decimal) string {
	digits := len(new(big.Int).Abs(d.Coefficient()).String())
	exp := int(d.Exponent())
	var total, whole, places int
	switch {
	case exp >= 0:
		total = digits + exp
		whole = total
	case digits > -exp:
		total = digits
		whole = digits + exp
		places = -exp
	default:
		total = -exp
		places = total
	}
	if r.MaxDigits > 0 && total > r.MaxDigits {
		return MsgMaxDigits(r.MaxDigits)
	}
	if places > r.DecimalPlaces {
		return MsgMaxDecimalPlaces(r.DecimalPlaces)
	}
	if r.MaxDigits > 0 && whole > r.MaxDigits-r.DecimalPlaces {
		return MsgMaxWholeDigits(r.MaxDigits - r.DecimalPlaces)
	}
	return ""
}

func (r FieldRule) coerceInteger(raw any) (any, []string) {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case json.Number:
		n, err := v.Int64()
		if err == nil || (errors.Is(err, strconv.ErrRange) && !strings.ContainsAny(v.String(), ".eE")) {
			return r.bound(n)
		}
		// 10.0 is an integer, 10.5 is not.
		f, err := v.Float64()
		if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) >= 1e16 {
			return nil, []string{MsgInvalidInteger}
		}
		return r.bound(int64(f))
	default:
		return nil, []string{MsgInvalidInteger}
	}
	s = strings.TrimSpace(width.Narrow.String(s))
	if s == "" {
		if r.EmptyAsZero {
			return int64(0), nil
		}
		return nil, []string{MsgInvalidInteger}
	}
	s = zeroFractionRe.ReplaceAllString(s, "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return r.bound(n)
		}
		return nil, []string{MsgInvalidInteger}
	}
	return r.bound(n)
}

func (r FieldRule) bound(n int64) (any, []string) {
	if r.Min != nil && n < *r.Min {
		return nil, []string{MsgMinValue(strconv.FormatInt(*r.Min, 10))}
	}
	if r.Max != nil && n > *r.Max {
		return nil, []string{MsgMaxValue(strconv.FormatInt(*r.Max, 10))}
	}
	return n, nil
}

func (r FieldRule) coerceReference(raw any) (any, []string) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
			return int64(f), nil
		}
		return nil, []string{MsgIncorrectPKType("float")}
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, []string{MsgIncorrectPKType("str")}
		}
		return n, nil
	case bool:
		return nil, []string{MsgIncorrectPKType("bool")}
	case []any:
		return nil, []string{MsgIncorrectPKType("list")}
	case map[string]any:
		return nil, []string{MsgIncorrectPKType("dict")}
	default:
		return nil, []string{MsgIncorrectPKType(fmt.Sprintf("%T", v))}
	}
}

// Has reports whether name was accepted.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// String returns the string value of name, or "".
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// NullableString returns nil for NULL values.
func (v Values) NullableString(name string) *string {
	s, ok := v[name].(string)
	if !ok {
		return nil
	}
	return &s
}

// Decimal returns the decimal value of name, or zero.
func (v Values) Decimal(name string) decimal.Decimal {
	d, _ := v[name].(decimal.Decimal)
	return d
}

// Int returns the integer value of name, or zero.
func (v Values) Int(name string) int64 {
	n, _ := v[name].(int64)
	return n
}
