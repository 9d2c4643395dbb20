package core

import "os/exec"

// Resolver reports whether a program name can be run.
type Resolver interface {
	Resolve(name string) bool
}

// PathResolver resolves names against $PATH. Names containing a path
// separator are checked directly.
type PathResolver struct{}

// Resolve implements Resolver.
func (PathResolver) Resolve(name string) bool {
	if name == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc func(name string) bool

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(name string) bool { return f(name) }
