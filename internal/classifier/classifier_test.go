package classifier

import (
	"regexp"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want Role
	}{
		{"app/models/patient_spec.rb", RoleTest},
		{"src/components/Button.test.tsx", RoleTest},
		{"src/components/Button.stories.tsx", RoleTest},
		{"config/database.yml", RoleConfig},
		{"myapp/settings_prod.py", RoleConfig},
		{"app/initializers/cors.rb", RoleConfig},
		{"src/index.ts", RoleEntryPoint},
		{"cmd/main.ts", RoleEntryPoint},
		{"app/app.rb", RoleEntryPoint},
		{"manage.py", RoleEntryPoint},
		{"app/models/concerns/trackable.rb", RoleSharedUtility},
		{"lib/shared/formatters.rb", RoleSharedUtility},
		{"app/models/patient.rb", RoleDomain},
		{"app/controllers/patients_controller.rb", RoleDomain},
	}

	for _, c := range cases {
		if got := Classify(c.path, nil); got != c.want {
			t.Errorf("Classify(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestClassifyOverride(t *testing.T) {
	overrides := []Override{
		{Pattern: regexp.MustCompile(`/jobs/`), Role: RoleDomain},
	}
	if got := Classify("app/jobs/send_email.rb", overrides); got != RoleDomain {
		t.Errorf("override should win, got %q", got)
	}
}

func TestIsDomainRelevant(t *testing.T) {
	if !IsDomainRelevant(RoleDomain) || !IsDomainRelevant(RoleSharedUtility) {
		t.Error("domain and shared_utility must be domain-relevant")
	}
	if IsDomainRelevant(RoleTest) || IsDomainRelevant(RoleConfig) || IsDomainRelevant(RoleEntryPoint) {
		t.Error("test/config/entry_point must not be domain-relevant")
	}
}

func TestIsEmittingRole(t *testing.T) {
	if IsEmittingRole(RoleTest) || IsEmittingRole(RoleConfig) || IsEmittingRole(RoleEntryPoint) {
		t.Error("test/config/entry_point must not be emitting roles")
	}
	if !IsEmittingRole(RoleDomain) || !IsEmittingRole(RoleSharedUtility) {
		t.Error("domain/shared_utility must be emitting roles")
	}
}
