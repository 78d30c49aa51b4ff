package logging_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/credentialengine/obpublisher/pkg/logging"
)

func TestContextFields(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithOrganization(ctx, "ce-org")
	ctx = logging.WithCredential(ctx, "https://example.com/badges/1")
	ctx = logging.WithCTID(ctx, "ce-cred")

	logging.FromContext(ctx).Info().Msg("tagged")

	tl.AssertField(t, "org_ctid", "ce-org")
	tl.AssertField(t, "credential_id", "https://example.com/badges/1")
	tl.AssertField(t, "ctid", "ce-cred")
}

func TestRequestID(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithRequestID(ctx, "req-1")

	assert.Equal(t, "req-1", logging.RequestID(ctx))
	assert.Equal(t, "", logging.RequestID(context.Background()))

	logging.Ctx(ctx).Info().Msg("with id")
	tl.AssertField(t, "request_id", "req-1")
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is part of the contract
	assert.Equal(t, logging.Default(), logging.FromContext(nil))
}

func TestWithDefaultLogger(t *testing.T) {
	outer := logging.NewTestLogger(t)
	inner := logging.NewTestLogger(t)

	ctx := logging.WithDefaultLogger(context.Background(), inner.Logger)
	logging.Ctx(ctx).Info().Msg("fallback")
	inner.AssertContains(t, "fallback")

	ctx = logging.WithLogger(context.Background(), outer.Logger)
	ctx = logging.WithDefaultLogger(ctx, inner.Logger)
	logging.Ctx(ctx).Info().Msg("kept")
	outer.AssertContains(t, "kept")
	inner.AssertNotContains(t, "kept")
}
