// Package kerberos acquires a Kerberos identity from a keytab and scopes
// network work under it. Requests made inside the scope are signed with
// SPNEGO Negotiate tokens.
package kerberos

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync/atomic"

	"github.com/jcmturner/gokrb5/v8/client"
	"github.com/jcmturner/gokrb5/v8/config"
	"github.com/jcmturner/gokrb5/v8/keytab"
	"github.com/jcmturner/gokrb5/v8/spnego"

	"github.com/hivekrb/hivekrb/core"
	"github.com/hivekrb/hivekrb/logging"
	"github.com/hivekrb/hivekrb/models"
)

const (
	// DefaultConfigPath is used when neither Config.KrbConfigPath nor $KRB5_CONFIG is set.
	DefaultConfigPath = "/etc/krb5.conf"
	envConfigPath     = "KRB5_CONFIG"

	hostPlaceholder = "_HOST"
)

var ErrScopeEntered = errors.New("kerberos: identity context already entered")

// Config holds Kerberos login parameters.
type Config struct {
	Principal     string // e.g. "app@EXAMPLE.COM"
	KeytabPath    string // Path to .keytab file
	KrbConfigPath string // Path to krb5.conf, optional
	// DisableFAST turns off PA-FX-FAST, needed against Active Directory KDCs.
	DisableFAST bool
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.Principal == "" {
		return &core.ArgumentError{Field: "principal", Message: "kerberos: Principal is required"}
	}
	if c.KeytabPath == "" {
		return &core.ArgumentError{Field: "keytab", Message: "kerberos: KeytabPath is required"}
	}
	return nil
}

// configPath resolves which krb5.conf to load.
func (c *Config) configPath() string {
	if c.KrbConfigPath != "" {
		return c.KrbConfigPath
	}
	if env := os.Getenv(envConfigPath); env != "" {
		// KRB5_CONFIG may hold a list, the first entry is the primary file
		first, _, _ := strings.Cut(env, ":")
		return first
	}
	return DefaultConfigPath
}

// splitPrincipal splits "user[/instance]@REALM" on the last "@".
// An empty realm is returned when the principal has none.
func splitPrincipal(principal string) (username, realm string) {
	if idx := strings.LastIndex(principal, "@"); idx >= 0 {
		return principal[:idx], principal[idx+1:]
	}
	return principal, ""
}

type options struct {
	log models.Logger
}

type Option func(*options)

func WithLogger(log models.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Acquire logs in to the KDC with the keytab and returns the resulting identity.
// The krb5 configuration is loaded into the identity, no process wide state is touched.
func Acquire(cfg Config, opts ...Option) (*Identity, error) {
	o := &options{log: logging.Nop()}
	for _, opt := range opts {
		opt(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	fail := func(err error) (*Identity, error) {
		return nil, &core.AuthenticationError{Principal: cfg.Principal, Err: err}
	}

	confPath := cfg.configPath()
	krb5Conf, err := config.Load(confPath)
	if err != nil {
		return fail(fmt.Errorf("kerberos: failed to load config %q: %w", confPath, err))
	}

	kt, err := keytab.Load(cfg.KeytabPath)
	if err != nil {
		return fail(fmt.Errorf("kerberos: failed to load keytab %q: %w", cfg.KeytabPath, err))
	}

	username, realm := splitPrincipal(cfg.Principal)
	if realm == "" {
		realm = krb5Conf.LibDefaults.DefaultRealm
	}
	if realm == "" {
		return fail(fmt.Errorf("kerberos: no realm in principal %q and no default_realm in %q", cfg.Principal, confPath))
	}

	o.log.Debugf("requesting TGT for %s@%s using %s", username, realm, confPath)

	cl := client.NewWithKeytab(username, realm, kt, krb5Conf, client.DisablePAFXFAST(cfg.DisableFAST))
	if err := cl.Login(); err != nil {
		return fail(fmt.Errorf("kerberos: login failed: %w", err))
	}

	o.log.Infof("obtained TGT for %s@%s", username, realm)

	return &Identity{
		principal: username + "@" + realm,
		cl:        cl,
		log:       o.log,
	}, nil
}

var (
	_ core.Identity     = (*Identity)(nil)
	_ core.ScopeChecker = (*Identity)(nil)
)

// Identity is a logged in Kerberos principal.
type Identity struct {
	principal string

	cl        *client.Client
	log       models.Logger
	active    atomic.Bool
	destroyed atomic.Bool
}

type identityKey struct{}

// FromContext returns the identity whose context ctx was created in.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok
}

func (id *Identity) Principal() string {
	return id.principal
}

// Impersonate runs fn inside the identity context. Nested entries are refused.
// The context is left when fn returns or panics.
func (id *Identity) Impersonate(ctx context.Context, fn func(ctx context.Context) error) error {
	if id.destroyed.Load() {
		return fmt.Errorf("kerberos: identity %s was destroyed", id.principal)
	}
	if !id.active.CompareAndSwap(false, true) {
		return ErrScopeEntered
	}
	defer func() {
		id.active.Store(false)
		id.log.Debugf("left identity context of %s", id.principal)
	}()

	id.log.Debugf("entered identity context of %s", id.principal)
	return fn(context.WithValue(ctx, identityKey{}, id))
}

// InScope reports whether ctx belongs to the currently entered context of this identity.
func (id *Identity) InScope(ctx context.Context) bool {
	if !id.active.Load() {
		return false
	}
	scoped, ok := FromContext(ctx)
	return ok && scoped == id
}

// SetSPNEGOHeader adds the Authorization: Negotiate header for spn to req.
// It refuses to sign outside of Impersonate.
func (id *Identity) SetSPNEGOHeader(req *http.Request, spn string) error {
	if !id.active.Load() {
		return core.ErrNoIdentityScope
	}
	if id.destroyed.Load() {
		return fmt.Errorf("kerberos: identity %s was destroyed", id.principal)
	}
	if err := spnego.SetSPNEGOHeader(id.cl, req, spn); err != nil {
		return fmt.Errorf("kerberos: failed to build SPNEGO token for %q: %w", spn, err)
	}
	return nil
}

// Destroy clears the ticket cache of the identity. Safe to call more than once.
func (id *Identity) Destroy() {
	if id.destroyed.CompareAndSwap(false, true) && id.cl != nil {
		id.cl.Destroy()
	}
}

// ServiceSPN maps a remote service principal such as "hive/_HOST@EXAMPLE.COM"
// to the SPN used for ticket requests. The realm is dropped and _HOST is
// replaced with the lower cased host.
func ServiceSPN(remotePrincipal, host string) string {
	spn, _ := splitPrincipal(remotePrincipal)
	return strings.ReplaceAll(spn, hostPlaceholder, strings.ToLower(host))
}
