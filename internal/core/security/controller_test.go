package security

import (
	"testing"
)

func TestSecurityController_CheckCommand(t *testing.T) {
	policy := &SecurityPolicy{
		CommandLevel:    ConfirmDangerous,
		RestrictedPaths: []string{"/etc"},
		ReadOnlyPaths:   []string{"~/.ssh"},
	}
	controller := NewSecurityController(policy)

	tests := []struct {
		name         string
		line         string
		allowed      bool
		requiresAuth bool
	}{
		{"safe command allowed", "ls -la", true, false},
		{"dangerous command requires auth", "rm -rf /tmp/test", true, true},
		{"restricted path rejected", "cat /etc/passwd", false, false},
		{"quoted restricted path rejected", `ls "/etc"`, false, false},
		{"write to readonly requires auth", "cp id_rsa ~/.ssh/id_rsa", true, true},
		{"read from readonly allowed", "cat ~/.ssh/config", true, false},
		{"unbalanced quotes still checked", `cat "/etc/hosts`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := controller.CheckCommand(tt.line)
			if result.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v (reason %q)", result.Allowed, tt.allowed, result.Reason)
			}
			if result.RequiresAuth != tt.requiresAuth {
				t.Errorf("RequiresAuth = %v, want %v", result.RequiresAuth, tt.requiresAuth)
			}
			if !result.Allowed && result.Reason == "" {
				t.Error("a refusal must carry a reason")
			}
		})
	}
}

func TestSecurityController_NilPolicy(t *testing.T) {
	controller := NewSecurityController(nil)

	if controller.Policy().CommandLevel != ConfirmVerdict {
		t.Errorf("CommandLevel = %q, want %q", controller.Policy().CommandLevel, ConfirmVerdict)
	}
	if result := controller.CheckCommand("cat /etc/passwd"); !result.Allowed {
		t.Error("default policy must not restrict any path")
	}
}
