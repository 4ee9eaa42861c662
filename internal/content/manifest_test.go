package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifestFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenes.yaml")
	doc := `
asset_root: /srv/assets
verify_assets: false
scenes:
  - name: lobby
    asset: scenes/lobby.bundle
    description: Main menu environment
    load_time_ms: 50
  - name: hangar
    asset: scenes/hangar.bundle
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m.Scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(m.Scenes))
	}
	if m.AssetRoot != "/srv/assets" {
		t.Errorf("asset_root: %q", m.AssetRoot)
	}

	lobby, ok := m.Find("lobby")
	if !ok || lobby.LoadTimeMS != 50 {
		t.Fatalf("lobby descriptor wrong: %+v (ok=%v)", lobby, ok)
	}
	if _, ok := m.Find("void"); ok {
		t.Error("found a scene not in the manifest")
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestValidateManifest(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
		wantErr  bool
	}{
		{
			name:     "valid",
			manifest: Manifest{Scenes: []Descriptor{{Name: "a"}, {Name: "b"}}},
		},
		{
			name:     "empty name",
			manifest: Manifest{Scenes: []Descriptor{{Name: ""}}},
			wantErr:  true,
		},
		{
			name:     "duplicate name",
			manifest: Manifest{Scenes: []Descriptor{{Name: "a"}, {Name: "a"}}},
			wantErr:  true,
		},
		{
			name:     "negative load time",
			manifest: Manifest{Scenes: []Descriptor{{Name: "a", LoadTimeMS: -1}}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.manifest.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidManifest) {
				t.Fatalf("expected ErrInvalidManifest, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
