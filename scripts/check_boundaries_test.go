package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, root string, rel string, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCollectViolationsFlagsLayerLeaks(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeSource(t, dir, "contexts/strategy-journey/ranking-engine/domain/ranking/engine.go", `package ranking

import (
	"strings"

	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
)

var _ = strings.TrimSpace
var _ = domainerrors.ErrActionNotFound
`)
	writeSource(t, dir, "contexts/strategy-journey/ranking-engine/application/commands/ranking.go", `package commands

import (
	"jornada/contexts/strategy-journey/ranking-engine/adapters/memory"
	"jornada/contexts/strategy-journey/session-service/ports"
)
`)

	violations := collectViolations("contexts")
	if len(violations) != 4 {
		t.Fatalf("expected 4 violations, got %d: %+v", len(violations), violations)
	}
	rules := map[string]int{}
	for _, v := range violations {
		rules[v.Rule]++
	}
	if rules["application must not import adapters"] != 1 || rules["cross-module imports are forbidden"] != 1 ||
		rules["application import is outside explicit allowlist"] != 2 {
		t.Fatalf("unexpected rules %+v", rules)
	}
}

func TestCollectViolationsGuardsDomainPortsAndTransport(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeSource(t, dir, "contexts/strategy-journey/ranking-engine/domain/ranking/engine.go", `package ranking

import (
	"net/http"

	"github.com/google/uuid"
)
`)
	writeSource(t, dir, "contexts/strategy-journey/ranking-engine/ports/ports.go", `package ports

import (
	"gorm.io/gorm"
	contractsv1 "jornada/contracts/gen/events/v1"
	"jornada/contexts/strategy-journey/ranking-engine/application"
	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
)
`)
	writeSource(t, dir, "contexts/strategy-journey/ranking-engine/transport/http/http_dto.go", `package http

import (
	"time"

	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
)
`)
	writeSource(t, dir, "contexts/strategy-journey/ranking-engine/application/queries/dashboard.go", `package queries

import "database/sql"
`)

	rules := map[string]int{}
	for _, v := range collectViolations("contexts") {
		rules[v.Rule]++
	}
	want := map[string]int{
		"domain must stay on the standard library":                  1,
		"domain must not import storage or transport packages":      1,
		"ports must not leak driver types":                          1,
		"ports import is outside explicit allowlist":                1,
		"transport DTOs must only use the standard library":         1,
		"application must not import storage or transport packages": 1,
	}
	if len(rules) != len(want) {
		t.Fatalf("expected rules %+v, got %+v", want, rules)
	}
	for rule, count := range want {
		if rules[rule] != count {
			t.Fatalf("expected %d %q violations, got %+v", count, rule, rules)
		}
	}
}

func TestCollectViolationsAcceptsCurrentLayout(t *testing.T) {
	t.Chdir("..")
	if violations := collectViolations("contexts"); len(violations) != 0 {
		t.Fatalf("expected clean tree, got %+v", violations)
	}
}
