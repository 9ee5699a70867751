package theme

import (
	"errors"
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidHex is returned by HexToHSL for strings that are not #rrggbb.
var ErrInvalidHex = errors.New("theme: invalid hex colour")

// Scheme selects which table a context key is looked up in.
type Scheme string

const (
	SchemeDefault Scheme = "default"
	SchemeAPT     Scheme = "apt"
	SchemeEmotion Scheme = "emotion"
)

// Schemes lists every scheme in display order.
var Schemes = []Scheme{SchemeDefault, SchemeAPT, SchemeEmotion}

// HSL is a base colour. Hue is in degrees, saturation and lightness in percent.
type HSL struct {
	Hue        float64
	Saturation float64
	Lightness  float64
}

func (c HSL) String() string {
	return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", c.Hue, c.Saturation, c.Lightness)
}

// Brand is the product red every scheme falls back to.
var Brand = HSL{Hue: 0, Saturation: 70, Lightness: 55}

// Table maps a context key to a #rrggbb colour.
type Table map[string]string

type Resolver struct {
	apt     Table
	emotion Table
}

// NewResolver builds a resolver over the given tables. Nil tables fall back
// to the built-in ones.
func NewResolver(apt, emotion Table) *Resolver {
	if apt == nil {
		apt = APTColors
	}
	if emotion == nil {
		emotion = EmotionColors
	}
	return &Resolver{apt: apt, emotion: emotion}
}

// WithOverrides returns a resolver whose tables are the receiver's tables
// with the given entries layered on top.
func (r *Resolver) WithOverrides(apt, emotion Table) *Resolver {
	return &Resolver{apt: merge(r.apt, apt), emotion: merge(r.emotion, emotion)}
}

// Resolve returns the base colour for scheme and key. It never fails: an
// unknown scheme, a missing key or a malformed table entry all yield Brand.
func (r *Resolver) Resolve(scheme Scheme, key string) HSL {
	var (
		table Table
		k     string
	)
	switch scheme {
	case SchemeAPT:
		table, k = r.apt, strings.ToUpper(strings.TrimSpace(key))
	case SchemeEmotion:
		table, k = r.emotion, strings.ToLower(strings.TrimSpace(key))
	default:
		return Brand
	}

	hex, ok := table[k]
	if !ok {
		return Brand
	}
	c, err := HexToHSL(hex)
	if err != nil {
		return Brand
	}
	return c
}

// Keys returns the lookup keys of a scheme's table, sorted.
func (r *Resolver) Keys(scheme Scheme) []string {
	switch scheme {
	case SchemeAPT:
		return sortedKeys(r.apt)
	case SchemeEmotion:
		return sortedKeys(r.emotion)
	}
	return nil
}

var defaultResolver = NewResolver(nil, nil)

// Resolve looks the key up in the built-in tables.
func Resolve(scheme Scheme, key string) HSL {
	return defaultResolver.Resolve(scheme, key)
}

// HexToHSL converts #rrggbb (or #rgb) to HSL with hue in [0, 360) and
// saturation/lightness in percent.
func HexToHSL(hex string) (HSL, error) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return HSL{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	h, s, l := c.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return HSL{Hue: h, Saturation: s * 100, Lightness: l * 100}, nil
}

// Color converts an HSL base colour with an arbitrary hue (negative or past
// 360 is wrapped) to a go-colorful colour.
func (c HSL) Color() colorful.Color {
	h := math.Mod(c.Hue, 360)
	if h < 0 {
		h += 360
	}
	return colorful.Hsl(h, clamp(c.Saturation/100), clamp(c.Lightness/100)).Clamped()
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
