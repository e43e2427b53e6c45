// Package access decides which view a session may see for a front-end path.
package access

import (
	"strings"

	"restochain-backend/session"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Decision is the outcome of one navigation. Exactly one of View, Redirect
// or Pending is set.
type Decision struct {
	View     string            `json:"view,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
	Pending  bool              `json:"pending,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
}

type audience int

// guestOnly routes are for anonymous users; signedIn routes accept any role.
const (
	public audience = iota
	guestOnly
	signedIn
	roleOnly
)

type route struct {
	pattern  string
	view     string
	audience audience
	state    session.State
}

var routes = []route{
	{"/login", "login", guestOnly, ""},
	{"/register", "register", guestOnly, ""},
	{"/customer/review-branch/:branchId", "reviewBranch", public, ""},

	{"/dashboard", "", signedIn, ""},
	{"/customer/order-placement", "orderPlacement", signedIn, ""},

	{"/admin/manage-inventory", "manageInventory", roleOnly, session.Admin},
	{"/admin/branches", "branches", roleOnly, session.Admin},
	{"/admin/branches-list", "branchesList", roleOnly, session.Admin},
	{"/admin/add-branch", "addBranch", roleOnly, session.Admin},
	{"/admin/products-list", "productsList", roleOnly, session.Admin},
	{"/admin/add-product", "addProduct", roleOnly, session.Admin},
	{"/admin/employees", "adminEmployees", roleOnly, session.Admin},
	{"/admin/offers", "offers", roleOnly, session.Admin},

	{"/branch-manager/menu", "branchMenu", roleOnly, session.BranchManager},
	{"/branch-manager/staff", "branchStaff", roleOnly, session.BranchManager},
	{"/branch-manager/products", "branchProducts", roleOnly, session.BranchManager},
	{"/branch-manager/inventory", "branchInventory", roleOnly, session.BranchManager},
	{"/branch-manager/employees", "branchEmployees", roleOnly, session.BranchManager},
	{"/branch-manager/reviews", "branchReviews", roleOnly, session.BranchManager},
	{"/branch-manager/branch-orders", "branchOrders", roleOnly, session.BranchManager},

	{"/customer/orders", "customerOrders", roleOnly, session.Customer},
	{"/customer/products", "customerProducts", roleOnly, session.Customer},
}

var dashboards = map[session.State]string{
	session.Admin:         "adminDashboard",
	session.BranchManager: "branchManagerDashboard",
	session.Customer:      "customerDashboard",
}

// Resolve is a pure function of the session state and the path. It is
// evaluated on every navigation.
func Resolve(state session.State, path string) Decision {
	if state == session.Loading {
		return Decision{Pending: true}
	}
	authed := state.Authenticated()

	r, params, ok := match(normalize(path))
	if !ok {
		return home(authed)
	}

	switch r.audience {
	case public:
		return Decision{View: r.view, Params: params}
	case guestOnly:
		if authed {
			return Decision{Redirect: DashboardPath}
		}
		return Decision{View: r.view}
	case signedIn:
		if !authed {
			return Decision{Redirect: LoginPath}
		}
		if r.view == "" {
			return Decision{View: dashboards[state]}
		}
		return Decision{View: r.view, Params: params}
	default:
		if state != r.state {
			return Decision{Redirect: LoginPath}
		}
		return Decision{View: r.view, Params: params}
	}
}

// home is where "/" and unknown paths go.
func home(authed bool) Decision {
	if authed {
		return Decision{Redirect: DashboardPath}
	}
	return Decision{Redirect: LoginPath}
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func match(path string) (route, map[string]string, bool) {
	segs := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for _, r := range routes {
		pattern := strings.Split(strings.TrimPrefix(r.pattern, "/"), "/")
		if len(pattern) != len(segs) {
			continue
		}
		var params map[string]string
		ok := true
		for i, p := range pattern {
			if strings.HasPrefix(p, ":") {
				if segs[i] == "" {
					ok = false
					break
				}
				if params == nil {
					params = make(map[string]string)
				}
				params[p[1:]] = segs[i]
				continue
			}
			if p != segs[i] {
				ok = false
				break
			}
		}
		if ok {
			return r, params, true
		}
	}
	return route{}, nil, false
}
