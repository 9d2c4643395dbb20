package security

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// CheckResult represents the result of a security check.
type CheckResult struct {
	Allowed      bool
	RequiresAuth bool
	Warning      string
	Reason       string
}

// SecurityController runs the local checks over a proposed command line.
type SecurityController struct {
	policy        *SecurityPolicy
	dangerChecker *DangerousCommandChecker
	pathChecker   *PathAccessChecker
}

// NewSecurityController creates a new security controller. A nil policy
// means DefaultPolicy.
func NewSecurityController(policy *SecurityPolicy) *SecurityController {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &SecurityController{
		policy:        policy,
		dangerChecker: NewDangerousCommandChecker(),
		pathChecker:   NewPathAccessChecker(policy),
	}
}

// Policy returns the policy the controller enforces.
func (sc *SecurityController) Policy() *SecurityPolicy {
	return sc.policy
}

// CheckCommand inspects a command line. Access to a restricted path is
// refused; dangerous commands and writes to read-only paths require auth.
func (sc *SecurityController) CheckCommand(line string) *CheckResult {
	argv, err := shlex.Split(line)
	if err != nil {
		argv = strings.Fields(line)
	}

	paths := sc.pathChecker.ExtractPaths(argv)
	for _, p := range paths {
		if sc.pathChecker.IsRestricted(p) {
			return &CheckResult{
				Allowed: false,
				Reason:  fmt.Sprintf("Access denied: %s is restricted", p),
			}
		}
	}

	if dangerous, reason := sc.dangerChecker.Check(argv, line); dangerous {
		return &CheckResult{
			Allowed:      true,
			RequiresAuth: true,
			Warning:      "Dangerous command: " + line,
			Reason:       reason,
		}
	}

	write := isWriteOperation(argv, line)
	for _, p := range paths {
		if sc.pathChecker.IsReadOnly(p, write) {
			return &CheckResult{
				Allowed:      true,
				RequiresAuth: true,
				Warning:      fmt.Sprintf("Read-only protection: %s cannot be written", p),
				Reason:       "Path is in readonly list",
			}
		}
	}

	return &CheckResult{Allowed: true}
}

// isWriteOperation determines if a command is a write operation.
func isWriteOperation(argv []string, line string) bool {
	if strings.Contains(line, ">") {
		return true
	}

	writeCommands := map[string]bool{
		"rm":    true,
		"mv":    true,
		"cp":    true,
		"touch": true,
		"mkdir": true,
		"chmod": true,
		"chown": true,
		"tee":   true,
		"ln":    true,
	}

	return writeCommands[programName(argv)]
}
