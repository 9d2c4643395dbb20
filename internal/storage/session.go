package storage

import (
	"time"

	"github.com/google/uuid"
)

// Session is the mutable state of one interactive run. It is created at
// startup and handed to the REPL, which is its only writer.
type Session struct {
	ID        string
	StartedAt time.Time

	// LastOutput is the most recent shell output or raw model reply.
	LastOutput string
	Model      string
	APIKey     string
}

// NewSession creates a session using the configured model and key.
func NewSession(cfg *Config) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
		Model:     DefaultModel,
	}
	if cfg != nil {
		if cfg.AI.Model != "" {
			s.Model = cfg.AI.Model
		}
		s.APIKey = cfg.AI.APIKey
	}
	return s
}

// Persister saves the session's credential and model to the config file.
type Persister struct {
	dir string
	cfg *Config
}

// NewPersister returns a Persister writing cfg into configDir.
func NewPersister(configDir string, cfg *Config) *Persister {
	return &Persister{dir: configDir, cfg: cfg}
}

// Persist copies key and model from s into the config and writes it.
func (p *Persister) Persist(s *Session) error {
	p.cfg.AI.APIKey = s.APIKey
	p.cfg.AI.Model = s.Model
	return SaveConfig(p.dir, p.cfg)
}

// Path returns the config file the persister writes.
func (p *Persister) Path() string {
	return ConfigPath(p.dir)
}
