package activity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEventNormalize(t *testing.T) {
	attrs := map[string]any{"name": "ada"}
	evt := Event{
		Verb:       " records.created ",
		Table:      " users ",
		RecordID:   " 42 ",
		Channel:    " audit ",
		Actor:      Actor{ActorID: " actor ", TenantID: " tenant "},
		Attributes: attrs,
		Changes:    map[string]Change{},
	}

	got := evt.Normalize()
	if got.Verb != VerbCreated || got.Table != "users" || got.RecordID != "42" || got.Channel != "audit" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.Actor != (Actor{ActorID: "actor", TenantID: "tenant"}) {
		t.Fatalf("unexpected actor: %+v", got.Actor)
	}
	if got.OccurredAt.IsZero() || got.OccurredAt.Location() != time.UTC {
		t.Fatalf("expected OccurredAt stamped in UTC, got %v", got.OccurredAt)
	}
	if got.Changes != nil {
		t.Fatalf("empty changes should normalize to nil")
	}
	got.Attributes["name"] = "grace"
	if attrs["name"] != "ada" {
		t.Fatalf("normalize must copy attributes")
	}
}

func TestRecordEventConstructors(t *testing.T) {
	created := RecordCreated("users", 3, map[string]any{"name": "ada"})
	if created.Verb != VerbCreated || created.RecordID != "3" || created.Attributes["name"] != "ada" {
		t.Fatalf("unexpected created event: %+v", created)
	}

	updated := RecordUpdated("users", "abc", nil, map[string]Change{"name": {From: "ada", To: "grace"}})
	if updated.Verb != VerbUpdated || updated.RecordID != "abc" || updated.Changes["name"].To != "grace" {
		t.Fatalf("unexpected updated event: %+v", updated)
	}

	deleted := RecordDeleted("users", nil)
	if deleted.Complete() {
		t.Fatalf("event without a record id is incomplete")
	}
	if !RecordDeleted("users", int64(9)).Complete() {
		t.Fatalf("delete with id should be complete")
	}
}

func TestHooksNotifySkipsIncompleteEvents(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), Event{Verb: VerbCreated, Table: "users"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events()) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events()))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, _ Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	//nolint:staticcheck // nil context falls back to Background
	err := hooks.Notify(nil, RecordUpdated("users", 1, nil, nil))
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !strings.Contains(err.Error(), "hook 2: boom1") || !strings.Contains(err.Error(), "hook 4: boom2") {
		t.Fatalf("errors should name the failing hook: %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events()) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events()))
	}
}

func TestHooksCompact(t *testing.T) {
	if got := (Hooks{nil, nil}).Compact(); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := (Hooks{nil, &CaptureHook{}}).Compact(); len(got) != 1 {
		t.Fatalf("expected one hook, got %d", len(got))
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}
	event := RecordCreated("users", 1, nil)

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events()) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}
	if NewEmitter(Hooks{nil}, Config{Enabled: true}).Enabled() {
		t.Fatalf("emitter without hooks must be disabled")
	}
	var none *Emitter
	if none.Enabled() || none.Emit(context.Background(), event) != nil {
		t.Fatalf("nil emitter should be a disabled no-op")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true})
	if err := enabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if got := capture.Events()[0].Channel; got != DefaultChannel {
		t.Fatalf("expected default channel applied, got %q", got)
	}
}

func TestEmitterAppliesActorFromContext(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "audit"})
	ctx := WithActor(context.Background(), Actor{ActorID: "a1", UserID: "u1", TenantID: "t1"})

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	event := RecordDeleted("users", 7)
	event.Actor.UserID = "explicit"
	event.OccurredAt = at
	if err := emitter.Emit(ctx, event); err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := capture.Events()[0]
	if got.Actor != (Actor{ActorID: "a1", UserID: "explicit", TenantID: "t1"}) {
		t.Fatalf("expected actor merged, got %+v", got.Actor)
	}
	if got.Channel != "audit" || !got.OccurredAt.Equal(at) {
		t.Fatalf("unexpected channel or timestamp: %+v", got)
	}
}

func TestCaptureHookReset(t *testing.T) {
	capture := &CaptureHook{}
	_ = capture.Notify(context.Background(), RecordCreated("users", 1, nil))
	if got := capture.Verbs(); len(got) != 1 || got[0] != VerbCreated {
		t.Fatalf("unexpected verbs %v", got)
	}
	capture.Reset()
	if len(capture.Events()) != 0 {
		t.Fatalf("reset should drop events")
	}
}
