package validation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	records "github.com/goliatone/go-records"
	"github.com/goliatone/go-records/pkg/memory"
	"github.com/goliatone/go-records/pkg/validation"
)

type user struct {
	ID    int64  `json:"id"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func newUsers(t *testing.T, validators ...records.Validator) *records.Model {
	t.Helper()
	model, err := records.New(records.Config{
		TableName:  "users",
		Init:       func() records.Record { return records.Record{"name": "", "email": ""} },
		Connector:  memory.NewConnector(nil),
		Validators: validators,
	})
	require.NoError(t, err)
	return model
}

func TestStructValidator(t *testing.T) {
	ctx := context.Background()
	model := newUsers(t, validation.Struct[user](nil))

	ok, err := model.Build(records.Record{"name": "ada", "email": "ada@example.com"}).IsValid(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	invalid := model.Build(records.Record{"name": "ada", "email": "not-an-email"})
	ok, err = invalid.IsValid(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, invalid.Validate(ctx), records.ErrValidation)
}

func TestStructValidatorDecodeFailure(t *testing.T) {
	model := newUsers(t, validation.Struct[user](nil))

	_, err := model.Build(records.Record{"name": 42}).IsValid(context.Background())
	assert.ErrorContains(t, err, "hydrate")
}

func TestVarValidator(t *testing.T) {
	ctx := context.Background()
	model := newUsers(t,
		validation.Var(nil, "name", "required,min=2"),
		validation.Var(nil, "email", "omitempty,email"),
	)

	ok, err := model.Build(records.Record{"name": "ad"}).IsValid(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = model.Build(records.Record{"name": "a"}).IsValid(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
