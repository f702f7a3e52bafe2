package backup

import (
	"os"
	"path/filepath"
	"testing"

	"msgr/internal/i18n"
)

func TestLabel(t *testing.T) {
	cat := i18n.NewCatalog()
	tests := []struct {
		name    string
		p       Progress
		want    string
		wantGot bool
	}{
		{"parsing", Parsing{}, "Parsing archive", true},
		{"running interpolates", Running{Count: 3, Max: 10}, "Processing message 3 of 10", true},
		{"running at start", Running{Count: 1, Max: 1}, "Processing message 1 of 1", true},
		{"saving", Saving{}, "Saving archive", true},
		{"syncing", Syncing{}, "Syncing messages", true},
		{"finished", Finished{}, "Finished", true},
		{"idle has no label", Idle{}, "", false},
		{"nil has no label", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Label(tt.p, cat)
			if got != tt.want || ok != tt.wantGot {
				t.Errorf("Label() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantGot)
			}
		})
	}
}

func TestLabelUsesCatalogOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strings.toml")
	if err := os.WriteFile(path, []byte(`backup_progress_running = "msg %d/%d"`), 0600); err != nil {
		t.Fatal(err)
	}
	cat, err := i18n.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	got, ok := Label(Running{Count: 2, Max: 5}, cat)
	if !ok || got != "msg 2/5" {
		t.Errorf("Label() = (%q, %v), want (msg 2/5, true)", got, ok)
	}
}
