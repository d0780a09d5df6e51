// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// parseEnv reads key from the environment and runs it through parse. Unset,
// empty, and unparseable values all fall back to the default: a typo in
// YOUTUBE_TIMEOUT should degrade to the shipped default, not take the server
// down before validation can report anything.
func parseEnv[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	return parseEnv(key, fallback, strconv.Atoi)
}

func getInt64Env(key string, fallback int64) int64 {
	return parseEnv(key, fallback, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

func getFloatEnv(key string, fallback float64) float64 {
	return parseEnv(key, fallback, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

func getBoolEnv(key string, fallback bool) bool {
	return parseEnv(key, fallback, strconv.ParseBool)
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	return parseEnv(key, fallback, time.ParseDuration)
}

// getSliceEnv splits a comma-separated variable into trimmed entries.
// A value of only commas and whitespace counts as unset.
func getSliceEnv(key string, fallback []string) []string {
	return parseEnv(key, fallback, func(s string) ([]string, error) {
		var out []string
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		if len(out) == 0 {
			return fallback, nil
		}
		return out, nil
	})
}

// getMapEnv parses "k1=v1,k2=v2" into a map, splitting each entry on the
// first "=" so header values like "Authorization=Bearer a=b" stay intact.
// Example: ADMIN_WEBHOOK_HEADERS="Authorization=Bearer xyz,X-Custom=value".
func getMapEnv(key string, fallback map[string]string) map[string]string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	out := make(map[string]string)
	for _, item := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			continue
		}
		if k = strings.TrimSpace(k); k != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}
