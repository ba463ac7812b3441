package report

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/starford/jera/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// seedChecker writes a replacements file and mod database into a fresh repo
// and returns a Checker over them.
func seedChecker(t *testing.T, replacements, database string) *Checker {
	t.Helper()
	root, store := testutil.TestRepo(t)
	testutil.WriteFile(t, root, "db/replacements.json", replacements)
	testutil.WriteFile(t, root, "db/db.json", database)
	return New(store, testLogger(), "db/replacements.json", "db/db.json")
}

func TestCheckReportsObsoleteEntry(t *testing.T) {
	c := seedChecker(t,
		`{"mods":{"100":{"ModName":"Old Mod","ReplacementSteamId":"200","ReplacementName":"New Mod"}}}`,
		`{"mods":{
			"author.old":{"100":{"versions":["1.4","1.5.2"]}},
			"author.new":{"200":{"versions":["1.4","1.5"]}}
		}}`)

	obsolete, err := c.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(obsolete) != 1 {
		t.Fatalf("obsolete = %v, want one entry", obsolete)
	}
	got := obsolete[0]
	if got.SteamID != "100" || got.Name != "Old Mod" {
		t.Errorf("entry = %+v", got)
	}
	if got.OriginalVersion != "1.5.2" || got.ReplacementVersion != "1.5" {
		t.Errorf("versions = %s vs %s, want 1.5.2 vs 1.5", got.OriginalVersion, got.ReplacementVersion)
	}
}

func TestCheckCurrentReplacementIsKept(t *testing.T) {
	c := seedChecker(t,
		`{"mods":{"100":{"ModName":"Old Mod","ReplacementSteamId":"200","ReplacementName":"New Mod"}}}`,
		`{"mods":{
			"author.old":{"100":{"versions":["1.4"]}},
			"author.new":{"200":{"versions":["1.4","1.5"]}}
		}}`)

	obsolete, err := c.Check(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(obsolete) != 0 {
		t.Errorf("obsolete = %v, want none", obsolete)
	}
}

func TestCheckEqualVersionsAreKept(t *testing.T) {
	c := seedChecker(t,
		`{"mods":{"100":{"ModName":"Old Mod","ReplacementSteamId":"200"}}}`,
		`{"mods":{
			"a":{"100":{"versions":["1.5"]}},
			"b":{"200":{"versions":["1.5"]}}
		}}`)

	obsolete, err := c.Check(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(obsolete) != 0 {
		t.Errorf("obsolete = %v, want none when versions are equal", obsolete)
	}
}

func TestCheckSkipsIncomparableEntries(t *testing.T) {
	// No replacement ID, original missing from the database, and replacement
	// missing from the database: all kept rather than flagged.
	c := seedChecker(t,
		`{"mods":{
			"100":{"ModName":"No Target"},
			"300":{"ModName":"Unknown Original","ReplacementSteamId":"200"},
			"400":{"ModName":"Unknown Replacement","ReplacementSteamId":"999"}
		}}`,
		`{"mods":{
			"a":{"200":{"versions":["1.5"]}},
			"b":{"400":{"versions":["1.6"]}}
		}}`)

	obsolete, err := c.Check(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(obsolete) != 0 {
		t.Errorf("obsolete = %v, want none", obsolete)
	}
}

func TestCheckMissingFileFails(t *testing.T) {
	root, store := testutil.TestRepo(t)
	testutil.WriteFile(t, root, "db/replacements.json", `{"mods":{}}`)
	c := New(store, testLogger(), "db/replacements.json", "db/db.json")

	if _, err := c.Check(context.Background()); err == nil {
		t.Fatal("expected error when the database file is missing")
	}
}

func TestVersionKey(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"1.5.2", []int{1, 5, 2}},
		{"v1.5", []int{1, 5}},
		{"1.5 (beta)", []int{1, 5}},
		{"", []int{0}},
		{"beta", []int{0}},
		{"1..2", []int{0}},
	}
	for _, tt := range tests {
		got := versionKey(tt.in)
		if compareKeys(got, tt.want) != 0 || len(got) != len(tt.want) {
			t.Errorf("versionKey(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCompareKeysPrefixIsLower(t *testing.T) {
	if compareKeys([]int{1, 5}, []int{1, 5, 1}) != -1 {
		t.Error("1.5 should order below 1.5.1")
	}
	if compareKeys([]int{1, 6}, []int{1, 5, 9}) != 1 {
		t.Error("1.6 should order above 1.5.9")
	}
}
