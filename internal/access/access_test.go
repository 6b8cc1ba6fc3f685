package access

import "testing"

func TestDecideRoute(t *testing.T) {
	tests := []struct {
		name   string
		state  string
		path   string
		want   string
		target string
	}{
		{"resolving waits", StateResolving, "/dashboard", DecisionWait, ""},
		{"resolving waits on admin", StateResolving, "/admin", DecisionWait, ""},
		{"guest sees landing", StateGuest, "/", DecisionRender, ""},
		{"guest sees auth", StateGuest, "/auth", DecisionRender, ""},
		{"guest redirected with from", StateGuest, "/devices", DecisionRedirect, "/auth?from=%2Fdevices"},
		{"guest redirected from admin", StateGuest, "/admin", DecisionRedirect, "/auth?from=%2Fadmin"},
		{"user sees dashboard", StateUser, "/dashboard", DecisionRender, ""},
		{"user sees devices", StateUser, "/devices", DecisionRender, ""},
		{"user bounced off admin", StateUser, "/admin", DecisionRedirect, "/dashboard"},
		{"admin sees admin", StateAdmin, "/admin", DecisionRender, ""},
		{"admin bounced off dashboard", StateAdmin, "/dashboard", DecisionRedirect, "/admin"},
		{"admin bounced off landing", StateAdmin, "/", DecisionRedirect, "/admin"},
		{"admin sees devices", StateAdmin, "/devices", DecisionRender, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideRoute(tt.state, tt.path)
			if got.Decision != tt.want {
				t.Errorf("decision = %s, want %s", got.Decision, tt.want)
			}
			if got.Target != tt.target {
				t.Errorf("target = %s, want %s", got.Target, tt.target)
			}
		})
	}
}

func TestPlanLevel(t *testing.T) {
	if PlanLevel("starter") >= PlanLevel("professional") {
		t.Error("expected starter below professional")
	}
	if PlanLevel("professional") >= PlanLevel("enterprise") {
		t.Error("expected professional below enterprise")
	}
	if PlanLevel("unknown") != 0 {
		t.Errorf("expected unknown plan to rank 0, got %d", PlanLevel("unknown"))
	}
}

func TestCheckFeature(t *testing.T) {
	tests := []struct {
		name        string
		plan        string
		required    string
		isAdmin     bool
		allowTeaser bool
		want        string
	}{
		{"plan meets requirement", "professional", "professional", false, false, FeatureAllowed},
		{"higher plan allowed", "enterprise", "professional", false, false, FeatureAllowed},
		{"lower plan locked", "starter", "professional", false, false, FeatureLocked},
		{"lower plan teased", "starter", "professional", false, true, FeatureTeaser},
		{"admin bypasses gate", "starter", "enterprise", true, false, FeatureAllowed},
		{"unknown plan locked", "garbled", "starter", false, false, FeatureLocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckFeature(tt.plan, tt.required, tt.isAdmin, tt.allowTeaser)
			if got.Outcome != tt.want {
				t.Errorf("outcome = %s, want %s", got.Outcome, tt.want)
			}
			if got.Outcome != FeatureAllowed && got.RequiredPlan != tt.required {
				t.Errorf("requiredPlan = %s, want %s", got.RequiredPlan, tt.required)
			}
		})
	}
}
