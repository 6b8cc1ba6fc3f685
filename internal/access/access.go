// Package access decides what a session may see: which route to render
// or redirect to, and whether a plan-gated feature is available, teased,
// or locked. Decisions are pure functions over resolved session state.
package access

import "net/url"

// Session states the route guard distinguishes.
const (
	StateResolving = "resolving"
	StateGuest     = "guest"
	StateUser      = "user"
	StateAdmin     = "admin"
)

// Route decisions.
const (
	DecisionRender   = "render"
	DecisionWait     = "wait"
	DecisionRedirect = "redirect"
)

// RouteDecision is the outcome of the route guard for one navigation.
type RouteDecision struct {
	Decision string `json:"decision"`
	Target   string `json:"target,omitempty"`
}

// DecideRoute implements the navigation state machine. While the session
// is still resolving nothing renders and nothing redirects. Guests are
// sent to the auth page with the attempted path preserved so sign-in can
// return them. Admins never see the user dashboard and users never see
// the admin console.
func DecideRoute(state, path string) RouteDecision {
	if state == StateResolving {
		return RouteDecision{Decision: DecisionWait}
	}

	if !gated(path) {
		if state == StateAdmin && (path == "/" || path == "/dashboard") {
			return redirect("/admin")
		}
		return RouteDecision{Decision: DecisionRender}
	}

	switch state {
	case StateGuest:
		return redirect("/auth?from=" + url.QueryEscape(path))
	case StateAdmin:
		if path == "/" || path == "/dashboard" {
			return redirect("/admin")
		}
		return RouteDecision{Decision: DecisionRender}
	default:
		if path == "/admin" {
			return redirect("/dashboard")
		}
		return RouteDecision{Decision: DecisionRender}
	}
}

// gated reports whether a path requires an authenticated session. The
// landing and auth pages are the only public ones.
func gated(path string) bool {
	return path != "/" && path != "/auth"
}

func redirect(target string) RouteDecision {
	return RouteDecision{Decision: DecisionRedirect, Target: target}
}

// PlanLevel orders plans. Unknown plans rank below starter so a garbled
// subscription record never unlocks anything.
func PlanLevel(plan string) int {
	switch plan {
	case "starter":
		return 1
	case "professional":
		return 2
	case "enterprise":
		return 3
	}
	return 0
}

// Feature check outcomes.
const (
	FeatureAllowed = "allowed"
	FeatureTeaser  = "teaser"
	FeatureLocked  = "locked"
)

// FeatureDecision is the outcome of a plan gate.
type FeatureDecision struct {
	Outcome      string `json:"outcome"`
	RequiredPlan string `json:"requiredPlan,omitempty"`
}

// CheckFeature gates a feature on the session's plan. Admin sessions
// bypass every gate. When the plan falls short the feature is teased
// (degraded content plus an upsell naming the required plan) if the
// caller allows it, otherwise locked outright.
func CheckFeature(plan, required string, isAdmin, allowTeaser bool) FeatureDecision {
	if isAdmin || PlanLevel(plan) >= PlanLevel(required) {
		return FeatureDecision{Outcome: FeatureAllowed}
	}
	if allowTeaser {
		return FeatureDecision{Outcome: FeatureTeaser, RequiredPlan: required}
	}
	return FeatureDecision{Outcome: FeatureLocked, RequiredPlan: required}
}
