package security

import (
	"path/filepath"
	"strings"
)

// DangerousCommandChecker detects destructive commands.
type DangerousCommandChecker struct {
	dangerousCommands []string
	dangerousPatterns []dangerPattern
}

type dangerPattern struct {
	pattern string
	reason  string
}

// NewDangerousCommandChecker creates a new danger checker.
func NewDangerousCommandChecker() *DangerousCommandChecker {
	return &DangerousCommandChecker{
		dangerousCommands: []string{
			"rm", "rmdir", "dd", "mkfs", "format",
			"chmod", "chown", "userdel", "groupdel",
			"fdisk", "shutdown", "reboot", "kill", "killall",
		},
		dangerousPatterns: []dangerPattern{
			{"rm -rf /", "recursive delete from the filesystem root"},
			{"> /etc/", "redirecting to system path /etc/"},
			{"> /usr/", "redirecting to system path /usr/"},
			{"> /dev/sd", "writing to a raw disk"},
			{"chmod 777 /", "opening permissions on a system path"},
			{":(){", "fork bomb"},
		},
	}
}

// Check reports whether the command is dangerous and why.
func (dc *DangerousCommandChecker) Check(argv []string, line string) (bool, string) {
	if program := programName(argv); program != "" {
		for _, dangerous := range dc.dangerousCommands {
			if program == dangerous || strings.HasPrefix(program, dangerous+".") {
				return true, "command " + program + " is in the dangerous list"
			}
		}
	}

	for _, dp := range dc.dangerousPatterns {
		if strings.Contains(line, dp.pattern) {
			return true, dp.reason
		}
	}

	return false, ""
}

// programName is the executable a command runs, looking through sudo.
func programName(argv []string) string {
	for i, arg := range argv {
		name := filepath.Base(arg)
		if name == "sudo" || name == "doas" {
			continue
		}
		if i > 0 && strings.HasPrefix(arg, "-") {
			continue
		}
		return name
	}
	return ""
}
