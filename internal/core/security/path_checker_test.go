package security

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestPathAccessChecker_IsRestricted(t *testing.T) {
	policy := &SecurityPolicy{
		RestrictedPaths: []string{"/etc", "/usr/bin"},
	}
	checker := NewPathAccessChecker(policy)

	tests := []struct {
		name       string
		path       string
		restricted bool
	}{
		{"etc is restricted", "/etc/passwd", true},
		{"usr/bin is restricted", "/usr/bin/ls", true},
		{"home is not restricted", "/home/user/file.txt", false},
		{"subdir of restricted", "/etc/config/file", true},
		{"exact match restricted path", "/etc", true},
		{"sibling with same prefix", "/etcetera/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.IsRestricted(tt.path)
			if result != tt.restricted {
				t.Errorf("IsRestricted(%s) = %v, want %v", tt.path, result, tt.restricted)
			}
		})
	}
}

func TestPathAccessChecker_IsReadOnly(t *testing.T) {
	policy := &SecurityPolicy{
		ReadOnlyPaths: []string{"~/.ssh"},
	}
	checker := NewPathAccessChecker(policy)

	tests := []struct {
		name     string
		path     string
		write    bool
		readonly bool
	}{
		{"read ssh key", "~/.ssh/id_rsa", false, false},
		{"write ssh key", "~/.ssh/id_rsa.pub", true, true},
		{"write elsewhere", "/tmp/file", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.IsReadOnly(tt.path, tt.write)
			if result != tt.readonly {
				t.Errorf("IsReadOnly(%s, %v) = %v, want %v", tt.path, tt.write, result, tt.readonly)
			}
		})
	}
}

func TestPathAccessChecker_SymlinkIntoRestricted(t *testing.T) {
	dir := t.TempDir()
	secret := filepath.Join(dir, "secret")
	if err := os.Mkdir(secret, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "innocent")
	if err := os.Symlink(secret, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	checker := NewPathAccessChecker(&SecurityPolicy{RestrictedPaths: []string{secret}})

	if !checker.IsRestricted(filepath.Join(link, "new-file")) {
		t.Error("expected path through symlink to be restricted")
	}
}

func TestPathAccessChecker_ExtractPaths(t *testing.T) {
	checker := NewPathAccessChecker(DefaultPolicy())

	argv := []string{"tar", "-czf", "out.tgz", "--directory=/var/log", "~/notes", "./build", "plain"}
	got := checker.ExtractPaths(argv)
	want := []string{"/var/log", "~/notes", "./build"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractPaths() = %v, want %v", got, want)
	}
}
