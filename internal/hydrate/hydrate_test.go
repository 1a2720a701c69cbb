package hydrate

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type user struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email,omitempty"`
	Tags  []string `json:"tags"`
}

func TestDecoderDecodes(t *testing.T) {
	cases := []struct {
		name      string
		input     map[string]any
		opts      []DecoderOption[user]
		expect    user
		expectErr string
	}{
		{
			name:   "plain",
			input:  map[string]any{"id": 1, "name": "ada", "tags": []any{"a", "b"}},
			expect: user{ID: 1, Name: "ada", Tags: []string{"a", "b"}},
		},
		{
			name:   "unknown keys ignored",
			input:  map[string]any{"id": 2, "name": "grace", "extra": true},
			expect: user{ID: 2, Name: "grace"},
		},
		{
			name:      "unknown keys rejected",
			input:     map[string]any{"id": 2, "extra": true},
			opts:      []DecoderOption[user]{WithDisallowUnknownFields[user]()},
			expectErr: "unknown field",
		},
		{
			name:      "type mismatch",
			input:     map[string]any{"id": "seven"},
			expectErr: "hydrate: decode users/7",
		},
		{
			name:      "nil input",
			input:     nil,
			expectErr: "attributes are nil",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := NewDecoder(tc.opts...).Decode(Context{Table: "users", ID: "7"}, tc.input)
			if tc.expectErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.expectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !reflect.DeepEqual(tc.expect, result) {
				t.Fatalf("decoded mismatch:\nwant: %#v\n got: %#v", tc.expect, result)
			}
		})
	}
}

func TestDecoderHooks(t *testing.T) {
	input := map[string]any{"name": " ada "}
	decoder := NewDecoder(
		WithPreHook[user](func(ctx Context, attrs map[string]any) (map[string]any, error) {
			attrs["id"] = 9
			return attrs, nil
		}),
		WithPostHook(func(_ Context, u *user) error {
			u.Name = strings.TrimSpace(u.Name)
			return nil
		}),
	)

	got, err := decoder.Decode(Context{Table: "users"}, input)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != 9 || got.Name != "ada" {
		t.Fatalf("unexpected result: %#v", got)
	}
	if _, ok := input["id"]; ok {
		t.Fatalf("pre-hook must not modify the caller's map")
	}

	boom := errors.New("boom")
	_, err = NewDecoder(WithPostHook(func(Context, *user) error { return boom })).Decode(Context{Table: "users"}, input)
	if !errors.Is(err, boom) {
		t.Fatalf("expected post-hook error, got %v", err)
	}
}

func TestDecoderUseNumber(t *testing.T) {
	got, err := NewDecoder(WithUseNumber[map[string]any]()).Decode(Context{Table: "metrics"}, map[string]any{"n": 12})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := got["n"].(json.Number); !ok {
		t.Fatalf("expected json.Number, got %T", got["n"])
	}
}
