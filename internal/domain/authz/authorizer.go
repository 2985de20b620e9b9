package authz

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/uniedit/orgauth/internal/domain/auth"
)

const tracerName = "github.com/uniedit/orgauth/internal/domain/authz"

// Decision results recorded for every authorization pass.
const (
	ResultAllowed         = "allowed"
	ResultUnauthenticated = "unauthenticated"
	ResultForbidden       = "forbidden"
	ResultNotFound        = "not_found"
	ResultError           = "error"
)

// TokenVerifier resolves a bearer token to an identity.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// DecisionRecorder receives one result per authorization pass.
type DecisionRecorder interface {
	RecordAuthzDecision(result string)
}

type noopRecorder struct{}

func (noopRecorder) RecordAuthzDecision(string) {}

// Authorizer is the single entry point request handlers use: verify the
// token, then evaluate the guards.
type Authorizer struct {
	verifier  TokenVerifier
	evaluator *Evaluator
	recorder  DecisionRecorder
	tracer    trace.Tracer
	logger    *zap.Logger
}

// NewAuthorizer creates a new authorizer. recorder may be nil.
func NewAuthorizer(verifier TokenVerifier, evaluator *Evaluator, recorder DecisionRecorder, logger *zap.Logger) *Authorizer {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authorizer{
		verifier:  verifier,
		evaluator: evaluator,
		recorder:  recorder,
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
	}
}

// Authorize returns the caller's identity if the token is valid and every
// guard passes. Failures wrap ErrUnauthenticated, ErrForbidden or, when the
// not-found policy exposes it, ErrResourceNotFound.
func (a *Authorizer) Authorize(ctx context.Context, token string, guards ...Guard) (*auth.Identity, error) {
	ctx, span := a.tracer.Start(ctx, "authz.Authorize",
		trace.WithAttributes(attribute.Int("authz.guards", len(guards))),
	)
	defer span.End()

	id, err := a.verifier.Verify(token)
	if err != nil {
		a.finish(span, ResultUnauthenticated, err)
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	if err := a.evaluate(ctx, span, id, guards); err != nil {
		return nil, err
	}
	return id, nil
}

func (a *Authorizer) evaluate(ctx context.Context, span trace.Span, id *auth.Identity, guards []Guard) error {
	err := a.evaluator.Evaluate(ctx, id, guards...)
	result := classify(err)
	a.finish(span, result, err)

	switch result {
	case ResultAllowed:
	case ResultError:
		a.logger.Error("authorization failed", zap.Error(err))
	default:
		fields := []zap.Field{zap.String("result", result), zap.Error(err)}
		if id != nil {
			fields = append(fields, zap.String("user_id", id.UserID.String()))
		}
		a.logger.Debug("authorization denied", fields...)
	}
	return err
}

func (a *Authorizer) finish(span trace.Span, result string, err error) {
	a.recorder.RecordAuthzDecision(result)
	span.SetAttributes(attribute.String("authz.result", result))
	if err != nil && result == ResultError {
		span.RecordError(err)
		span.SetStatus(codes.Error, "authorization error")
	}
}

func classify(err error) string {
	switch {
	case err == nil:
		return ResultAllowed
	case errors.Is(err, ErrUnauthenticated):
		return ResultUnauthenticated
	case errors.Is(err, ErrForbidden):
		return ResultForbidden
	case errors.Is(err, ErrResourceNotFound):
		return ResultNotFound
	default:
		return ResultError
	}
}
