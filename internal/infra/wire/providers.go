// Package wire assembles the dependency graph of the server.
package wire

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	httpgin "github.com/uniedit/orgauth/internal/adapter/inbound/gin"
	"github.com/uniedit/orgauth/internal/adapter/outbound/mailer"
	"github.com/uniedit/orgauth/internal/adapter/outbound/memory"
	redisadapter "github.com/uniedit/orgauth/internal/adapter/outbound/redis"
	"github.com/uniedit/orgauth/internal/domain/auth"
	"github.com/uniedit/orgauth/internal/domain/authz"
	"github.com/uniedit/orgauth/internal/domain/invitation"
	"github.com/uniedit/orgauth/internal/domain/org"
	"github.com/uniedit/orgauth/internal/infra/persistence"
	"github.com/uniedit/orgauth/internal/shared/cache"
	"github.com/uniedit/orgauth/internal/shared/config"
	"github.com/uniedit/orgauth/internal/shared/database"
	"github.com/uniedit/orgauth/internal/shared/logger"
	"github.com/uniedit/orgauth/internal/utils/metrics"
	"github.com/uniedit/orgauth/internal/utils/middleware"
)

// Dependencies holds everything the HTTP layer needs.
type Dependencies struct {
	Config    *config.Config
	Logger    *logger.Logger
	ZapLogger *zap.Logger
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Redis     *goredis.Client

	OrgHandler        *httpgin.OrgAdapter
	InvitationHandler *httpgin.InvitationAdapter
	AccountHandler    *httpgin.AccountAdapter
}

// Stores groups the persistence ports of one storage backend.
type Stores struct {
	Orgs        org.OrganizationRepository
	Members     org.MembershipRepository
	Teams       org.TeamRepository
	Apps        org.AppRepository
	Resources   org.ResourceResolver
	Invitations invitation.Repository
	Tx          org.Transactor
}

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideZapLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideStores,
)

// ProvideLogger creates the HTTP logger.
func ProvideLogger(cfg *config.Config) *logger.Logger {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideZapLogger creates the domain logger.
func ProvideZapLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, nil, err
	}
	return zapLog, func() { _ = zapLog.Sync() }, nil
}

// ProvideRegistry creates the registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates the application metrics.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(cfg.Tracing.ServiceName, reg)
}

// ProvideDatabase opens the SQL database. It returns nil for the memory driver.
func ProvideDatabase(cfg *config.Config, zapLog *zap.Logger) (*gorm.DB, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		zapLog.Warn("using in-memory store, data is lost on restart")
		return nil, func() {}, nil
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = database.Close(db) }

	if cfg.Database.AutoMigrate {
		if err := persistence.AutoMigrate(db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	return db, cleanup, nil
}

// ProvideRedisClient connects to redis. Redis is optional: it returns nil
// when unconfigured or unreachable.
func ProvideRedisClient(cfg *config.Config, zapLog *zap.Logger) (*goredis.Client, func()) {
	if !cfg.Redis.Enabled() {
		return nil, func() {}
	}
	client, err := cache.NewRedisClient(context.Background(), &cfg.Redis)
	if err != nil {
		zapLog.Warn("Redis connection failed, continuing without cache and rate limits", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}

// ProvideStores selects the storage backend.
func ProvideStores(db *gorm.DB) *Stores {
	if db == nil {
		s := memory.NewStore()
		return &Stores{
			Orgs:        s,
			Members:     s,
			Teams:       s.Teams(),
			Apps:        s.Apps(),
			Resources:   s,
			Invitations: s.Invitations(),
			Tx:          s,
		}
	}

	resources := persistence.NewResourceRepository(db)
	return &Stores{
		Orgs:        persistence.NewOrganizationRepository(db),
		Members:     persistence.NewMembershipRepository(db),
		Teams:       resources.Teams(),
		Apps:        resources.Apps(),
		Resources:   resources,
		Invitations: persistence.NewInvitationRepository(db),
		Tx:          persistence.NewTransactor(db),
	}
}

// ===== Domain Providers =====

// DomainSet provides the domains and their collaborators.
var DomainSet = wire.NewSet(
	ProvideMembershipRepository,
	ProvideVerifier,
	ProvideAuthorizer,
	ProvideOrgDomain,
	ProvideNotifier,
	ProvideInvitationDomain,
)

// ProvideMembershipRepository puts the redis role cache in front of the
// membership store when redis is available.
func ProvideMembershipRepository(cfg *config.Config, stores *Stores, client *goredis.Client, m *metrics.Metrics, zapLog *zap.Logger) org.MembershipRepository {
	if client == nil {
		return stores.Members
	}
	return redisadapter.NewRoleCache(stores.Members, client, cfg.Authz.RoleCacheTTL, zapLog).WithRecorder(m)
}

func authConfig(cfg *config.Config) *auth.Config {
	tokens := make([]auth.ServiceToken, 0, len(cfg.Auth.ServiceTokens))
	for _, t := range cfg.Auth.ServiceTokens {
		tokens = append(tokens, auth.ServiceToken{
			Token:  t.Token,
			UserID: t.UserID,
			Email:  t.Email,
			Name:   t.Name,
		})
	}
	return &auth.Config{
		Secret:            cfg.Auth.JWTSecret,
		Issuer:            cfg.Auth.Issuer,
		AccessTokenExpiry: cfg.Auth.AccessTokenExpiry,
		ServiceTokens:     tokens,
	}
}

// ProvideVerifier creates the session token verifier.
func ProvideVerifier(cfg *config.Config) (*auth.Verifier, error) {
	return auth.NewVerifier(authConfig(cfg))
}

// ProvideAuthorizer creates the authorizer used by every guarded route.
func ProvideAuthorizer(
	cfg *config.Config,
	verifier *auth.Verifier,
	members org.MembershipRepository,
	stores *Stores,
	m *metrics.Metrics,
	zapLog *zap.Logger,
) *authz.Authorizer {
	evaluator := authz.NewEvaluator(members, stores.Resources, &authz.Config{
		NotFoundPolicy: authz.NotFoundPolicy(cfg.Authz.NotFoundPolicy),
	}, zapLog)
	return authz.NewAuthorizer(verifier, evaluator, m, zapLog)
}

// ProvideOrgDomain creates the org domain.
func ProvideOrgDomain(stores *Stores, members org.MembershipRepository, zapLog *zap.Logger) *org.Domain {
	return org.NewDomain(stores.Orgs, members, stores.Teams, stores.Apps, stores.Resources, stores.Tx, zapLog)
}

// ProvideNotifier sends invitations over SMTP, or only logs them when no
// SMTP host is configured.
func ProvideNotifier(cfg *config.Config, zapLog *zap.Logger) invitation.Notifier {
	if cfg.SMTP.Host == "" {
		return mailer.NewLogNotifier(zapLog)
	}
	return mailer.NewSMTPNotifier(&mailer.SMTPConfig{
		Host:            cfg.SMTP.Host,
		Port:            cfg.SMTP.Port,
		User:            cfg.SMTP.User,
		Password:        cfg.SMTP.Password,
		FromAddress:     cfg.SMTP.FromAddress,
		FromName:        cfg.SMTP.FromName,
		BreakerFailures: cfg.SMTP.BreakerFailures,
		BreakerTimeout:  cfg.SMTP.BreakerTimeout,
	}, zapLog)
}

// ProvideInvitationDomain creates the invitation domain.
func ProvideInvitationDomain(
	cfg *config.Config,
	stores *Stores,
	members org.MembershipRepository,
	notifier invitation.Notifier,
	client *goredis.Client,
	m *metrics.Metrics,
	zapLog *zap.Logger,
) (*invitation.Domain, error) {
	ic := cfg.Invitation
	tokens, err := invitation.NewTokenMinter(cfg.InvitationSecret(), ic.TokenLength)
	if err != nil {
		return nil, fmt.Errorf("create token minter: %w", err)
	}

	opts := []invitation.Option{
		invitation.WithNotifier(notifier),
		invitation.WithRecorder(m),
	}
	if client != nil {
		opts = append(opts, invitation.WithRateLimiter(
			redisadapter.NewRateLimiter(client, "invite", ic.IssueRateLimit, ic.IssueRateWindow),
		))
	}

	return invitation.NewDomain(stores.Invitations, members, stores.Orgs, stores.Tx, tokens, &invitation.Config{
		TTL:               ic.TTL,
		NonceLength:       ic.TokenLength,
		MaxBatch:          ic.MaxBatch,
		DefaultPageSize:   ic.DefaultPageSize,
		MaxPageSize:       ic.MaxPageSize,
		BaseURL:           ic.BaseURL,
		RequireEmailMatch: ic.RequireEmailMatch,
		NotifyConcurrency: ic.NotifyConcurrency,
	}, zapLog, opts...), nil
}

// ===== HTTP Providers =====

// HandlerSet provides the HTTP adapters.
var HandlerSet = wire.NewSet(
	wire.Bind(new(middleware.Authorizer), new(*authz.Authorizer)),
	wire.Bind(new(httpgin.OrgService), new(*org.Domain)),
	wire.Bind(new(httpgin.InvitationService), new(*invitation.Domain)),
	httpgin.NewGuards,
	httpgin.NewOrgAdapter,
	ProvideInvitationHandler,
	ProvideTokenIssuer,
	httpgin.NewAccountAdapter,
)

// ProvideInvitationHandler creates the invitation adapter with a per-caller
// limit on accept and reject.
func ProvideInvitationHandler(cfg *config.Config, service httpgin.InvitationService, guards *httpgin.Guards, client *goredis.Client) *httpgin.InvitationAdapter {
	ic := cfg.Invitation
	var limiter middleware.Limiter
	if client != nil {
		limiter = redisadapter.NewRateLimiter(client, "respond", ic.AcceptRateLimit, ic.AcceptRateWindow)
	}
	return httpgin.NewInvitationAdapter(service, guards, limiter, middleware.RateLimitConfig{
		Limit:  ic.AcceptRateLimit,
		Window: ic.AcceptRateWindow,
	})
}

// ProvideTokenIssuer returns a signer when dev login is enabled, nil otherwise.
func ProvideTokenIssuer(cfg *config.Config) (httpgin.TokenIssuer, error) {
	if !cfg.Auth.DevLogin {
		return nil, nil
	}
	signer, err := auth.NewSigner(authConfig(cfg))
	if err != nil {
		return nil, err
	}
	return signer, nil
}

// AppSet is the full graph.
var AppSet = wire.NewSet(
	InfraSet,
	DomainSet,
	HandlerSet,
)
