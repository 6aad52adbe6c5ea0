// Package gate decides, for every navigation, whether a path is shown, held
// behind a loading state or redirected to login.
package gate

import (
	"strings"

	"github.com/jrsteele09/foodwaste-zero/session"
)

type Kind int

const (
	Show Kind = iota
	Loading
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Show:
		return "show"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the outcome of one evaluation. RedirectTo is only set for
// Redirect.
type Decision struct {
	Kind       Kind
	RedirectTo string
}

const (
	DefaultLoginPath    = "/login"
	DefaultRegisterPath = "/register"
)

// Decide applies the access rules in order, first match wins. An unconfirmed
// session never shows or redirects. Redirects go to DefaultLoginPath.
func Decide(status session.Status, isPublic bool) Decision {
	switch {
	case !status.Settled():
		return Decision{Kind: Loading}
	case status == session.Authenticated:
		return Decision{Kind: Show}
	case isPublic:
		return Decision{Kind: Show}
	default:
		return Decision{Kind: Redirect, RedirectTo: DefaultLoginPath}
	}
}

// Gate holds the fixed public-path configuration. Every other path is
// protected.
type Gate struct {
	loginPath string
	public    map[string]struct{}
}

// GateOption defines a function type to modify the Gate instance.
type GateOption func(*Gate)

// WithLoginPath sets where anonymous visitors are sent. The login path is
// always public.
func WithLoginPath(path string) GateOption {
	return func(g *Gate) {
		if path != "" {
			g.loginPath = normalize(path)
		}
	}
}

// WithPublicPaths replaces the default public set.
func WithPublicPaths(paths ...string) GateOption {
	return func(g *Gate) {
		g.public = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			g.public[normalize(p)] = struct{}{}
		}
	}
}

func New(options ...GateOption) *Gate {
	g := &Gate{loginPath: DefaultLoginPath}
	WithPublicPaths("/", "/index", DefaultLoginPath, DefaultRegisterPath)(g)
	for _, opt := range options {
		opt(g)
	}
	g.public[g.loginPath] = struct{}{}
	return g
}

func (g *Gate) LoginPath() string {
	return g.loginPath
}

// IsPublic matches exact paths; "/login/x" is not public because "/login" is.
func (g *Gate) IsPublic(path string) bool {
	_, ok := g.public[normalize(path)]
	return ok
}

// Evaluate decides for a requested path, which may carry a query or fragment.
func (g *Gate) Evaluate(status session.Status, path string) Decision {
	d := Decide(status, g.IsPublic(path))
	if d.Kind == Redirect {
		d.RedirectTo = g.loginPath
	}
	return d
}

// StatusSource is the part of session.Manager the gate listens to.
type StatusSource interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) (cancel func())
}

var _ StatusSource = (*session.Manager)(nil)

// Watch reports a decision for the current state and again after every
// session change, always for the path currentPath returns at that moment.
// Navigations are evaluated by the caller through Evaluate.
func (g *Gate) Watch(source StatusSource, currentPath func() string, onDecision func(Decision)) (cancel func()) {
	cancel = source.Subscribe(func(s session.Snapshot) {
		onDecision(g.Evaluate(s.Status, currentPath()))
	})
	onDecision(g.Evaluate(source.Snapshot().Status, currentPath()))
	return cancel
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
