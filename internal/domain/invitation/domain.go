package invitation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/uniedit/orgauth/internal/domain/org"
	"github.com/uniedit/orgauth/internal/utils/pagination"
)

const tracerName = "github.com/uniedit/orgauth/internal/domain/invitation"

// Domain implements the invitation lifecycle.
type Domain struct {
	invites  Repository
	members  MembershipStore
	orgs     OrganizationLookup
	tx       org.Transactor
	tokens   *TokenMinter
	notifier Notifier
	limiter  RateLimiter
	recorder Recorder
	validate *validator.Validate
	cfg      *Config
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configures optional collaborators.
type Option func(*Domain)

// WithNotifier sets the notifier used after issuance.
func WithNotifier(n Notifier) Option {
	return func(d *Domain) { d.notifier = n }
}

// WithRateLimiter limits issuance per organization and issuer.
func WithRateLimiter(l RateLimiter) Option {
	return func(d *Domain) { d.limiter = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Domain) { d.recorder = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Domain) { d.now = now }
}

// NewDomain creates a new invitation domain.
func NewDomain(
	invites Repository,
	members MembershipStore,
	orgs OrganizationLookup,
	tx org.Transactor,
	tokens *TokenMinter,
	cfg *Config,
	logger *zap.Logger,
	opts ...Option,
) *Domain {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	_ = cfg.Validate()
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Domain{
		invites:  invites,
		members:  members,
		orgs:     orgs,
		tx:       tx,
		tokens:   tokens,
		recorder: nopRecorder{},
		validate: validator.New(),
		cfg:      cfg,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type nopRecorder struct{}

func (nopRecorder) RecordInvitationsIssued(int)       {}
func (nopRecorder) RecordInvitationTransition(string) {}

// Config returns the effective configuration.
func (d *Domain) Config() *Config {
	return d.cfg
}

// ===== Issuance =====

// CreateInvites issues one invitation per distinct email. A pending
// invitation for the same (org, email) is superseded, never duplicated.
// The issuer must already be allowed to invite; this only checks that
// the issuer may grant role.
func (d *Domain) CreateInvites(ctx context.Context, orgID uuid.UUID, emails []string, role org.Role, issuedBy uuid.UUID) ([]*Issued, error) {
	ctx, span := d.tracer.Start(ctx, "invitation.CreateInvites",
		trace.WithAttributes(attribute.String("org_id", orgID.String())),
	)
	defer span.End()

	if !role.IsValid() {
		return nil, org.ErrInvalidRole
	}

	recipients, err := d.normalizeEmails(emails)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("invitation.recipients", len(recipients)))

	organization, err := d.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	issuer, err := d.members.Get(ctx, issuedBy, orgID)
	if err != nil {
		if errors.Is(err, org.ErrMemberNotFound) {
			return nil, org.ErrInsufficientPermission
		}
		return nil, err
	}
	if !issuer.Role.CanAssign(role) {
		return nil, org.ErrCannotAssignRole
	}

	if err := d.checkRate(ctx, orgID, issuedBy, len(recipients)); err != nil {
		return nil, err
	}

	now := d.now()
	issued := make([]*Issued, 0, len(recipients))
	var superseded int64

	err = d.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		for _, email := range recipients {
			n, err := d.invites.SupersedePending(txCtx, orgID, email, now)
			if err != nil {
				return fmt.Errorf("supersede pending: %w", err)
			}
			superseded += n

			nonce, err := d.tokens.NewNonce()
			if err != nil {
				return err
			}
			inv := NewInvitation(orgID, email, role, issuedBy, nonce, now)
			token := d.tokens.Token(inv.ID(), nonce)
			inv.SetTokenDigest(d.tokens.Digest(token))

			if err := d.invites.Create(txCtx, inv); err != nil {
				return err
			}
			issued = append(issued, &Issued{
				Invitation: inv,
				Token:      token,
				AcceptURL:  d.cfg.AcceptURL(token),
			})
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "issue invitations")
		return nil, err
	}

	d.recorder.RecordInvitationsIssued(len(issued))
	for i := int64(0); i < superseded; i++ {
		d.recorder.RecordInvitationTransition(StatusSuperseded.String())
	}

	d.logger.Info("invitations issued",
		zap.String("org_id", orgID.String()),
		zap.String("issued_by", issuedBy.String()),
		zap.Int("count", len(issued)),
		zap.Int64("superseded", superseded),
	)

	d.notify(ctx, organization, issued)
	return issued, nil
}

func (d *Domain) normalizeEmails(emails []string) ([]string, error) {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = normalizeEmail(e)
		if e == "" {
			continue
		}
		if err := d.validate.Var(e, "email"); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidEmail, e)
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}

	if len(out) == 0 {
		return nil, ErrNoRecipients
	}
	if len(out) > d.cfg.MaxBatch {
		return nil, ErrBatchTooLarge
	}
	return out, nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (d *Domain) checkRate(ctx context.Context, orgID, issuedBy uuid.UUID, n int) error {
	if d.limiter == nil {
		return nil
	}
	key := orgID.String() + ":" + issuedBy.String()
	ok, err := d.limiter.Allow(ctx, key, n)
	if err != nil {
		d.logger.Warn("invitation rate limiter unavailable", zap.Error(err))
		return nil
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}

func (d *Domain) notify(ctx context.Context, organization *org.Organization, issued []*Issued) {
	if d.notifier == nil || len(issued) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(d.cfg.NotifyConcurrency)
	for _, it := range issued {
		n := &Notification{
			InvitationID: it.Invitation.ID(),
			OrgID:        organization.ID,
			OrgName:      organization.Name,
			Email:        it.Invitation.Email(),
			Role:         it.Invitation.Role(),
			Token:        it.Token,
			AcceptURL:    it.AcceptURL,
			ExpiresAt:    it.Invitation.ExpiresAt(d.cfg.TTL),
		}
		g.Go(func() error {
			if err := d.notifier.NotifyInvitation(ctx, n); err != nil {
				d.logger.Warn("failed to deliver invitation",
					zap.String("invitation_id", n.InvitationID.String()),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ===== Listing =====

// ListPendingForOrg lists the organization's pending invitations, oldest
// first. Expired invitations are reclassified on the way.
func (d *Domain) ListPendingForOrg(ctx context.Context, orgID uuid.UUID, cursor string, pageSize int) (*pagination.Page[*Invitation], error) {
	items, next, err := d.listPending(ctx, ForOrg(orgID), cursor, pageSize)
	if err != nil {
		return nil, err
	}
	return &pagination.Page[*Invitation]{Items: items, NextCursor: next}, nil
}

// ListPendingForUser lists pending invitations addressed to email across
// all organizations, with the token the recipient needs to respond.
func (d *Domain) ListPendingForUser(ctx context.Context, email, cursor string, pageSize int) (*pagination.Page[*UserInvite], error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}

	items, next, err := d.listPending(ctx, ForEmail(email), cursor, pageSize)
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string)
	out := make([]*UserInvite, 0, len(items))
	for _, inv := range items {
		name, ok := names[inv.OrgID()]
		if !ok {
			o, err := d.orgs.GetByID(ctx, inv.OrgID())
			if err != nil && !errors.Is(err, org.ErrOrganizationNotFound) {
				return nil, err
			}
			if o != nil {
				name = o.Name
			}
			names[inv.OrgID()] = name
		}

		token := d.tokens.Token(inv.ID(), inv.Nonce())
		out = append(out, &UserInvite{
			Invitation: inv,
			OrgName:    name,
			Token:      token,
			AcceptURL:  d.cfg.AcceptURL(token),
		})
	}

	return &pagination.Page[*UserInvite]{Items: out, NextCursor: next}, nil
}

func (d *Domain) listPending(ctx context.Context, f Filter, cursor string, pageSize int) ([]*Invitation, string, error) {
	scope := pagination.HashScope(f.scope()...)
	after, err := pagination.DecodeCursor(cursor, scope)
	if err != nil {
		return nil, "", ErrInvalidCursor
	}
	size := pagination.ClampPageSize(pageSize, d.cfg.DefaultPageSize, d.cfg.MaxPageSize)
	cutoff := d.now().Add(-d.cfg.TTL)

	if n, err := d.invites.ExpireStale(ctx, f, cutoff); err != nil {
		d.logger.Warn("failed to expire stale invitations", zap.Error(err))
	} else if n > 0 {
		for i := int64(0); i < n; i++ {
			d.recorder.RecordInvitationTransition(StatusExpired.String())
		}
		d.logger.Debug("expired stale invitations", zap.Int64("count", n))
	}

	items, err := d.invites.ListPending(ctx, f, cutoff, after, size+1)
	if err != nil {
		return nil, "", err
	}

	var next string
	if len(items) > size {
		items = items[:size]
		last := items[len(items)-1]
		next = pagination.EncodeCursor(pagination.Position{At: last.SentAt(), ID: last.ID()}, scope)
	}
	return items, next, nil
}

// ===== Resolution =====

// Accept consumes the token, marks the invitation accepted and grants the
// invited role to actorID, all in one transaction. An existing higher role
// is kept.
func (d *Domain) Accept(ctx context.Context, token string, actorID uuid.UUID, actorEmail string) (*org.Membership, error) {
	ctx, span := d.tracer.Start(ctx, "invitation.Accept")
	defer span.End()

	inv, err := d.lookup(ctx, token, actorEmail)
	if err != nil {
		return nil, d.spanErr(span, err)
	}
	span.SetAttributes(attribute.String("invitation_id", inv.ID().String()))

	now := d.now().UTC()
	var membership *org.Membership
	err = d.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		ok, err := d.invites.Transition(txCtx, inv.ID(), StatusPending, StatusAccepted, now, &actorID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyResolved
		}

		role := inv.Role()
		existing, err := d.members.Get(txCtx, actorID, inv.OrgID())
		switch {
		case err == nil:
			if org.AtLeast(existing.Role, role) {
				role = existing.Role
			}
		case !errors.Is(err, org.ErrMemberNotFound):
			return err
		}

		membership = org.NewMembership(actorID, inv.OrgID(), role, now)
		if existing != nil {
			membership.JoinedAt = existing.JoinedAt
		}
		return d.members.Upsert(txCtx, membership)
	})
	if err != nil {
		return nil, d.spanErr(span, err)
	}

	inv.Resolve(StatusAccepted, now, &actorID)
	d.recorder.RecordInvitationTransition(StatusAccepted.String())
	d.logger.Info("invitation accepted",
		zap.String("invitation_id", inv.ID().String()),
		zap.String("org_id", inv.OrgID().String()),
		zap.String("user_id", actorID.String()),
		zap.String("role", membership.Role.String()),
	)
	return membership, nil
}

// Reject consumes the token and marks the invitation rejected.
func (d *Domain) Reject(ctx context.Context, token string, actorID uuid.UUID, actorEmail string) error {
	ctx, span := d.tracer.Start(ctx, "invitation.Reject")
	defer span.End()

	inv, err := d.lookup(ctx, token, actorEmail)
	if err != nil {
		return d.spanErr(span, err)
	}
	span.SetAttributes(attribute.String("invitation_id", inv.ID().String()))

	ok, err := d.invites.Transition(ctx, inv.ID(), StatusPending, StatusRejected, d.now(), &actorID)
	if err != nil {
		return d.spanErr(span, err)
	}
	if !ok {
		return d.spanErr(span, ErrAlreadyResolved)
	}

	d.recorder.RecordInvitationTransition(StatusRejected.String())
	d.logger.Info("invitation rejected",
		zap.String("invitation_id", inv.ID().String()),
		zap.String("user_id", actorID.String()),
	)
	return nil
}

// Revoke cancels a pending invitation of the organization.
func (d *Domain) Revoke(ctx context.Context, orgID, invitationID, actorID uuid.UUID) error {
	inv, err := d.invites.GetByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.OrgID() != orgID {
		return ErrInvitationNotFound
	}
	if inv.Status().IsTerminal() {
		return ErrInvitationNotPending
	}

	ok, err := d.invites.Transition(ctx, inv.ID(), StatusPending, StatusRevoked, d.now(), &actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvitationNotPending
	}

	d.recorder.RecordInvitationTransition(StatusRevoked.String())
	d.logger.Info("invitation revoked",
		zap.String("invitation_id", inv.ID().String()),
		zap.String("org_id", orgID.String()),
		zap.String("revoked_by", actorID.String()),
	)
	return nil
}

// lookup finds the pending invitation a token belongs to. Every way a
// token can fail maps to ErrInvalidOrExpiredToken, except an invitation
// that was already accepted or rejected.
func (d *Domain) lookup(ctx context.Context, token, actorEmail string) (*Invitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	inv, err := d.invites.GetByTokenDigest(ctx, d.tokens.Digest(token))
	if err != nil {
		if errors.Is(err, ErrInvitationNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, err
	}
	if !d.tokens.Matches(inv, token) {
		return nil, ErrInvalidOrExpiredToken
	}

	switch inv.Status() {
	case StatusPending:
	case StatusAccepted, StatusRejected:
		return nil, ErrAlreadyResolved
	default:
		return nil, ErrInvalidOrExpiredToken
	}

	now := d.now()
	if inv.IsExpired(now, d.cfg.TTL) {
		if ok, err := d.invites.Transition(ctx, inv.ID(), StatusPending, StatusExpired, now, nil); err != nil {
			d.logger.Warn("failed to mark invitation expired",
				zap.String("invitation_id", inv.ID().String()),
				zap.Error(err),
			)
		} else if ok {
			d.recorder.RecordInvitationTransition(StatusExpired.String())
		}
		return nil, ErrInvalidOrExpiredToken
	}

	if d.cfg.RequireEmailMatch && normalizeEmail(actorEmail) != inv.Email() {
		return nil, ErrInvalidOrExpiredToken
	}
	return inv, nil
}

func (d *Domain) spanErr(span trace.Span, err error) error {
	span.RecordError(err)
	if !errors.Is(err, ErrInvalidOrExpiredToken) && !errors.Is(err, ErrAlreadyResolved) {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
