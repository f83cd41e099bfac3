// Package routeguard decides, for every (path, session) pair, whether a page
// may render or where the visitor must be redirected instead. Classification
// is data-driven: routes are an ordered prefix table, so adding a role or a
// section means adding a rule, not editing control flow.
package routeguard

import (
	"net/url"
	"strings"

	"github.com/catattrans/umkm-api/internal/core/domain"
)

// Class is the static category a path belongs to.
type Class string

const (
	// ClassPublic routes render for anyone.
	ClassPublic Class = "public"
	// ClassAuthOnly routes (login, change-password) are for the
	// authentication flow itself.
	ClassAuthOnly Class = "auth-only"
	// ClassProtected routes require a session with an allowed role.
	ClassProtected Class = "protected"
	// ClassRoot is the bare "/" landing path.
	ClassRoot Class = "root"
)

// Rule maps a path prefix to its classification. AllowedRoles is only
// meaningful for ClassProtected.
type Rule struct {
	Prefix       string
	Class        Class
	AllowedRoles []string
}

// DefaultRules is the literal route contract of the application. First match
// wins; the table is total because every unmatched path is public.
var DefaultRules = []Rule{
	{Prefix: "/login", Class: ClassAuthOnly},
	{Prefix: "/change-password", Class: ClassAuthOnly},
	{Prefix: "/admin", Class: ClassProtected, AllowedRoles: []string{domain.RoleAdmin}},
	{Prefix: "/kasir", Class: ClassProtected, AllowedRoles: []string{domain.RoleKasir}},
	{Prefix: "/", Class: ClassRoot},
}

// Role home pages. A cashier's landing page is the transaction list.
const (
	AdminHome = "/admin/home"
	KasirHome = "/kasir/transaksi"
	LoginPath = "/login"

	changePasswordPath = "/change-password"
)

// Action is the outcome kind of a guard decision.
type Action int

const (
	// ActionWait means identity resolution has not completed yet; render
	// nothing and make no redirect, to avoid flickering a wrong page.
	ActionWait Action = iota
	// ActionRender means the requested page may be shown.
	ActionRender
	// ActionRedirect means the visitor must be sent to Decision.Location.
	ActionRedirect
)

// Decision is the guard's verdict for one (path, session) evaluation.
type Decision struct {
	Action   Action
	Location string
}

func render() Decision { return Decision{Action: ActionRender} }

func redirect(to string) Decision { return Decision{Action: ActionRedirect, Location: to} }

// Guard evaluates the route table against sessions. The zero value is not
// usable; construct with New.
type Guard struct {
	rules []Rule
}

// New builds a Guard over the given rule table, falling back to DefaultRules
// when none are supplied.
func New(rules []Rule) *Guard {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Guard{rules: rules}
}

// Classify returns the first matching rule for path. Total: the zero Rule
// (public) is returned when nothing matches.
func (g *Guard) Classify(path string) Rule {
	for _, r := range g.rules {
		if r.Prefix == "/" {
			if path == "/" || path == "" {
				return r
			}
			continue
		}
		if path == r.Prefix || strings.HasPrefix(path, r.Prefix+"/") {
			return r
		}
	}
	return Rule{Class: ClassPublic}
}

// Decide is a pure re-evaluation of (path, session): no history is kept and
// redirect decisions are ordinary control flow, not errors. A nil session
// means unauthenticated; resolved=false marks the initial loading phase
// during which no redirect may be issued.
func (g *Guard) Decide(path string, session *domain.Session, resolved bool) Decision {
	if !resolved {
		return Decision{Action: ActionWait}
	}
	if session != nil && !session.Valid() {
		session = nil
	}

	rule := g.Classify(path)

	if session == nil {
		switch rule.Class {
		case ClassProtected:
			return redirect(LoginPath + "?from=" + url.QueryEscape(path))
		case ClassAuthOnly:
			// The login and change-password pages are exactly where an
			// unauthenticated visitor belongs.
			return render()
		case ClassRoot:
			return redirect(LoginPath)
		default:
			return render()
		}
	}

	// A freshly provisioned account must change its password before reaching
	// any protected route, regardless of role.
	if !session.PasswordChanged && path != changePasswordPath {
		return redirect(changePasswordPath)
	}

	switch rule.Class {
	case ClassAuthOnly:
		if path == changePasswordPath {
			return render()
		}
		return redirect(roleHome(session.Role))
	case ClassRoot:
		return redirect(roleHome(session.Role))
	case ClassProtected:
		for _, role := range rule.AllowedRoles {
			if role == session.Role {
				return render()
			}
		}
		// Each role is confined to its own section; there is no admin
		// override of kasir-only routes.
		return redirect(roleHome(session.Role))
	default:
		return render()
	}
}

func roleHome(role string) string {
	if role == domain.RoleAdmin {
		return AdminHome
	}
	return KasirHome
}
