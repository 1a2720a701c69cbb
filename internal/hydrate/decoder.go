// Package hydrate decodes record attribute maps into typed structs.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies the record being decoded in error messages and hooks.
type Context struct {
	Table string
	ID    string
}

func (c Context) String() string {
	if c.ID == "" {
		return c.Table
	}
	return c.Table + "/" + c.ID
}

// PreHook lets callers rewrite the attributes before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or check the decoded struct.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts attribute maps into T by way of encoding/json, so struct
// tags drive the field mapping.
type Decoder[T any] struct {
	pre       []PreHook
	post      []PostHook[T]
	useNumber bool
	strict    bool
}

// WithPreHook applies hook prior to decoding. Hooks run in the order given.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.pre = append(d.pre, hook)
		}
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.post = append(d.post, hook)
		}
	}
}

// WithUseNumber keeps numbers as json.Number when decoding into any.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) { d.useNumber = true }
}

// WithDisallowUnknownFields rejects attributes without a matching field.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) { d.strict = true }
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts attrs into T applying configured hooks. attrs is never
// modified.
func (d *Decoder[T]) Decode(ctx Context, attrs map[string]any) (T, error) {
	var out T
	if attrs == nil {
		return out, fmt.Errorf("hydrate: attributes are nil for %s", ctx)
	}
	prepared, err := d.prepare(ctx, attrs)
	if err != nil {
		return out, err
	}
	if err := d.unmarshal(prepared, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("hydrate: decode %s: %w", ctx, err)
	}
	for _, hook := range d.post {
		if err := hook(ctx, &out); err != nil {
			var zero T
			return zero, fmt.Errorf("hydrate: post-hook for %s failed: %w", ctx, err)
		}
	}
	return out, nil
}

// prepare copies attrs and threads the copy through the pre hooks. A hook
// returning nil keeps the previous map.
func (d *Decoder[T]) prepare(ctx Context, attrs map[string]any) (map[string]any, error) {
	current := make(map[string]any, len(attrs))
	for key, value := range attrs {
		current[key] = value
	}
	for _, hook := range d.pre {
		next, err := hook(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("hydrate: pre-hook for %s failed: %w", ctx, err)
		}
		if next != nil {
			current = next
		}
	}
	return current, nil
}

func (d *Decoder[T]) unmarshal(attrs map[string]any, dst *T) error {
	raw, err := json.Marshal(attrs)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if d.useNumber {
		dec.UseNumber()
	}
	if d.strict {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(dst)
}
