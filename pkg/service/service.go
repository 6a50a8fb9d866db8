// Package service assembles the secretkey HTTP service from configuration:
// the credential sources, the authenticator chain, the reload machinery and
// the HTTP routes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/rhuss/secretkey/pkg/auth"
	"github.com/rhuss/secretkey/pkg/auth/jwt"
	"github.com/rhuss/secretkey/pkg/auth/noop"
	"github.com/rhuss/secretkey/pkg/auth/secretkey"
	"github.com/rhuss/secretkey/pkg/config"
	"github.com/rhuss/secretkey/pkg/observability"
	"github.com/rhuss/secretkey/pkg/source"
	"github.com/rhuss/secretkey/pkg/source/kubernetes"
	"github.com/rhuss/secretkey/pkg/transport"
)

// Option configures New.
type Option func(*options)

type options struct {
	kube client.Reader
}

// WithKubernetesReader supplies the client used by the "kubernetes"
// source instead of one built from the ambient kubeconfig.
func WithKubernetesReader(r client.Reader) Option {
	return func(o *options) { o.kube = r }
}

// Service is the assembled authentication service.
type Service struct {
	cfg      *config.Config
	authn    auth.Authenticator
	secrets  *secretkey.Authenticator
	reloader *secretkey.Reloader
	handler  http.Handler
}

// New builds the service. The credential store is built before New
// returns, so a configuration error such as a duplicate secret fails here.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{cfg: cfg}

	var chain []auth.Authenticator
	switch cfg.Auth.Type {
	case "none":
		s.authn = &noop.Authenticator{}
	case "secretkey", "chain":
		secrets, reloader, err := NewSecretKey(ctx, cfg.Auth, o.kube)
		if err != nil {
			return nil, err
		}
		s.secrets, s.reloader = secrets, reloader
		chain = append(chain, secrets)
		if cfg.Auth.Type == "chain" {
			chain = append(chain, NewJWT(cfg.Auth.JWT))
		}
	case "jwt":
		chain = append(chain, NewJWT(cfg.Auth.JWT))
	default:
		return nil, fmt.Errorf("unknown auth type %q", cfg.Auth.Type)
	}

	if s.authn == nil {
		s.authn = &auth.AuthChain{
			Authenticators:  chain,
			DefaultDecision: Decision(cfg.Auth.DefaultDecision),
		}
	}

	s.handler = s.routes()
	slog.Info("authentication configured", "type", cfg.Auth.Type, "default_decision", cfg.Auth.DefaultDecision)
	return s, nil
}

// NewSecretKey builds the secret-key authenticator and its reloader from
// the auth configuration. kube may be nil.
func NewSecretKey(ctx context.Context, cfg config.AuthConfig, kube client.Reader) (*secretkey.Authenticator, *secretkey.Reloader, error) {
	src, err := Source(cfg.SecretKey, kube)
	if err != nil {
		return nil, nil, err
	}

	build := func(ctx context.Context) (*secretkey.Store, error) {
		return secretkey.Build(ctx, src, cfg.SecretKey.ConfigurationKey)
	}

	store, err := build(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := []secretkey.Option{
		secretkey.WithScheme(cfg.SecretKey.Scheme),
		secretkey.WithClaims(secretkey.StaticClaims(Claims(cfg.SecretKey.Claims))),
	}
	if cfg.Type == "chain" {
		opts = append(opts, secretkey.WithAbstainOnUnrecognized())
	}

	authn := secretkey.New(store, opts...)
	slog.Info("credential store built",
		"scheme", authn.Scheme(),
		"entries", store.Len(),
		"sources", cfg.SecretKey.Sources,
	)
	return authn, secretkey.NewReloader(authn, build), nil
}

// NewJWT builds the JWT authenticator.
func NewJWT(cfg config.JWTConfig) *jwt.Authenticator {
	return jwt.New(jwt.Config{
		Issuer:      cfg.Issuer,
		Audience:    cfg.Audience,
		JWKSURL:     cfg.JWKSURL,
		UserClaim:   cfg.UserClaim,
		ScopesClaim: cfg.ScopesClaim,
		ClaimMap:    cfg.ClaimMap,
		CacheTTL:    cfg.CacheTTL,

		MinRefreshInterval: cfg.MinRefreshInterval,
	})
}

// Source layers the configured entry sources in order. A kubernetes
// source without kube builds a client from the ambient configuration.
func Source(cfg config.SecretKeyConfig, kube client.Reader) (source.Source, error) {
	var sources []source.Source
	for _, name := range cfg.Sources {
		switch name {
		case "env":
			sources = append(sources, source.Env())
		case "file":
			sources = append(sources, source.File(cfg.SecretsFile))
		case "kubernetes":
			if kube == nil {
				c, err := kubernetes.NewClient()
				if err != nil {
					return nil, err
				}
				kube = c
			}
			sources = append(sources, kubernetes.New(kube, cfg.Kubernetes.Namespace, cfg.Kubernetes.Name))
		default:
			return nil, fmt.Errorf("unknown secret source %q", name)
		}
	}
	return source.Layered(sources...), nil
}

// Claims converts configured claims into a StaticClaims table.
func Claims(in map[string][]config.ClaimConfig) map[string][]auth.Claim {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string][]auth.Claim, len(in))
	for id, claims := range in {
		for _, c := range claims {
			out[id] = append(out[id], auth.Claim{Type: c.Type, Value: c.Value})
		}
	}
	return out
}

// Decision maps "yes" to auth.Yes and anything else to auth.No.
func Decision(s string) auth.AuthDecision {
	if s == "yes" {
		return auth.Yes
	}
	return auth.No
}

// Handler returns the HTTP handler with metrics and auth middleware applied.
func (s *Service) Handler() http.Handler { return s.handler }

// Authenticator returns the top-level authenticator.
func (s *Service) Authenticator() auth.Authenticator { return s.authn }

// Secrets returns the secret-key authenticator, or nil when the
// secret-key scheme is not configured.
func (s *Service) Secrets() *secretkey.Authenticator { return s.secrets }

// ErrNoReload is returned by Reload when there is no credential store.
var ErrNoReload = errors.New("no credential store configured")

// Reload rebuilds the credential store from its sources. On failure the
// previous store stays published.
func (s *Service) Reload(ctx context.Context) error {
	if s.reloader == nil {
		return ErrNoReload
	}
	return s.reloader.Reload(ctx)
}

// Start launches background work: the secrets file watcher when
// auth.secret_key.watch is set. It returns once the work is running and
// stops it when ctx is canceled.
func (s *Service) Start(ctx context.Context) error {
	sk := s.cfg.Auth.SecretKey
	if s.reloader == nil || !sk.Watch {
		return nil
	}
	return s.reloader.Watch(ctx, sk.SecretsFile, sk.WatchDebounce)
}

func (s *Service) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /whoami", handleWhoAmI)

	if m := s.cfg.Observability.Metrics; m.Enabled {
		mux.Handle("GET "+m.Path, promhttp.Handler())
	}

	var handler http.Handler = mux
	handler = auth.Middleware(s.authn, s.cfg.Auth.Realm, s.cfg.Auth.Bypass)(handler)
	return observability.MetricsMiddleware(handler)
}

// handleReady reports 503 while a secret-key-only deployment has no
// secrets, since every request would be rejected.
func (s *Service) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Auth.Type == "secretkey" && s.secrets.Store().Len() == 0 {
		transport.WriteError(w, http.StatusServiceUnavailable, transport.ErrorTypeUnavailable, "no secrets configured")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		transport.WriteError(w, http.StatusUnauthorized, transport.ErrorTypeUnauthorized, "authentication required")
		return
	}
	transport.WriteJSON(w, http.StatusOK, id)
}
