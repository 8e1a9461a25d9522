package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStringRuntime(t *testing.T) {
	dir := t.TempDir()
	manifest := "name: acme-infra\nruntime: nodejs\ndescription: CI deployment project\n"
	if err := os.WriteFile(filepath.Join(dir, "Pulumi.yaml"), []byte(manifest), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	p, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Name != "acme-infra" || p.Runtime.Name != "nodejs" {
		t.Fatalf("unexpected project: %+v", p)
	}
}

func TestLoadMappingRuntime(t *testing.T) {
	dir := t.TempDir()
	manifest := "name: acme-infra\nruntime:\n  name: python\n  options:\n    virtualenv: venv\n"
	if err := os.WriteFile(filepath.Join(dir, "Pulumi.yml"), []byte(manifest), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	p, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Runtime.Name != "python" {
		t.Fatalf("runtime = %q, want python", p.Runtime.Name)
	}
}

func TestLoadAbsentManifest(t *testing.T) {
	p, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil project, got %+v", p)
	}
}
