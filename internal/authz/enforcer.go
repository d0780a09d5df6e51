// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package authz enforces role-based access control with casbin. Roles
// (viewer, editor, admin) form a hierarchy; policies match request paths
// with keyMatch and the action derived from the HTTP method. Decisions are
// cached because the same role hits the same endpoints continuously.
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tubefleet/tubefleet/internal/cache"
	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/models"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Enforcer wraps the casbin enforcer with a decision cache. Policies load
// from the embedded model and CSV unless the config points at files.
type Enforcer struct {
	enforcer    *casbin.SyncedEnforcer
	decisions   *cache.Cache
	defaultRole string
	policyPath  string
}

// NewEnforcer builds the enforcer from the casbin configuration.
func NewEnforcer(cfg *config.CasbinConfig) (*Enforcer, error) {
	var m model.Model
	var err error

	if cfg.ModelPath != "" && fileExists(cfg.ModelPath) {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		adapter := fileadapter.NewAdapter(cfg.PolicyPath)
		enforcer, err = casbin.NewSyncedEnforcer(m, adapter)
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicyCSV(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	if cfg.AutoReload && cfg.PolicyPath != "" {
		interval := cfg.ReloadInterval
		if interval <= 0 {
			interval = 30 * time.Second
		}
		enforcer.StartAutoLoadPolicy(interval)
	}

	e := &Enforcer{
		enforcer:    enforcer,
		defaultRole: cfg.DefaultRole,
		policyPath:  cfg.PolicyPath,
	}
	if e.defaultRole == "" {
		e.defaultRole = models.RoleViewer
	}

	if cfg.CacheEnabled {
		ttl := cfg.CacheTTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		e.decisions = cache.New(ttl)
	}

	return e, nil
}

// loadPolicyCSV parses the embedded policy CSV into the enforcer.
func loadPolicyCSV(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch parts[0] {
		case "p":
			if len(parts) >= 4 {
				if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
					return fmt.Errorf("add policy %v: %w", parts[1:], err)
				}
			}
		case "g":
			if len(parts) >= 3 {
				if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
					return fmt.Errorf("add grouping policy %v: %w", parts[1:], err)
				}
			}
		}
	}
	return nil
}

// Enforce reports whether the role may perform the action on the object.
// An empty role falls back to the default role.
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	if role == "" {
		role = e.defaultRole
	}

	key := role + "|" + object + "|" + action
	if e.decisions != nil {
		if cached, ok := e.decisions.Get(key); ok {
			if allowed, ok := cached.(bool); ok {
				return allowed, nil
			}
		}
	}

	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}

	if e.decisions != nil {
		e.decisions.Set(key, allowed)
	}
	return allowed, nil
}

// GetPolicy returns all policy rules for the admin policy endpoint.
func (e *Enforcer) GetPolicy() [][]string {
	//nolint:errcheck // only fails on a nil enforcer
	policies, _ := e.enforcer.GetPolicy()
	return policies
}

// GetRolesForRole returns the roles a role inherits.
func (e *Enforcer) GetRolesForRole(role string) ([]string, error) {
	return e.enforcer.GetRolesForUser(role)
}

// ReloadPolicy reloads policy from the configured file and drops cached
// decisions. No-op without a policy file.
func (e *Enforcer) ReloadPolicy() error {
	if e.policyPath == "" {
		return nil
	}
	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("reload policy: %w", err)
	}
	if e.decisions != nil {
		e.decisions.Clear()
	}
	return nil
}

// Close stops policy auto-reload.
func (e *Enforcer) Close() {
	e.enforcer.StopAutoLoadPolicy()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
