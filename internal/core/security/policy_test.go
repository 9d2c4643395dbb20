package security

import "testing"

func TestParseConfirmLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    ConfirmLevel
		wantErr bool
	}{
		{"", ConfirmVerdict, false},
		{"verdict", ConfirmVerdict, false},
		{" Dangerous ", ConfirmDangerous, false},
		{"always", ConfirmAlways, false},
		{"never", "", true},
	}

	for _, tt := range tests {
		got, err := ParseConfirmLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseConfirmLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseConfirmLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.CommandLevel != ConfirmVerdict {
		t.Errorf("CommandLevel = %q, want %q", p.CommandLevel, ConfirmVerdict)
	}
	if len(p.RestrictedPaths) != 0 || len(p.ReadOnlyPaths) != 0 {
		t.Error("default policy should not list any paths")
	}
}
