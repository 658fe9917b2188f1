package texts

import (
	"strings"
	"testing"
)

func TestT_LanguageMatching(t *testing.T) {
	tk := T("tk", KeyBanned)
	ru := T("ru", KeyBanned)
	if tk == "" || ru == "" || tk == ru {
		t.Fatalf("expected distinct tk/ru texts, got %q and %q", tk, ru)
	}

	// Regional variants resolve to the base table.
	if got := T("ru-RU", KeyBanned); got != ru {
		t.Fatalf("ru-RU resolved to %q, want %q", got, ru)
	}

	// Unknown or empty tags fall back to Turkmen.
	if got := T("fr", KeyBanned); got != tk {
		t.Fatalf("fr resolved to %q, want fallback %q", got, tk)
	}
	if got := T("", KeyBanned); got != tk {
		t.Fatalf("empty tag resolved to %q, want fallback %q", got, tk)
	}
	if got := T("not-a-tag!!", KeyBanned); got != tk {
		t.Fatalf("junk tag resolved to %q, want fallback %q", got, tk)
	}
}

func TestT_AllKeysPresentInAllTables(t *testing.T) {
	keys := []Key{
		KeyAutoPaused, KeyTrialExpired, KeyPostDeleted,
		KeyBanned, KeyUnbanned, KeyStarsReceived,
	}
	for i, table := range tables {
		for _, k := range keys {
			if _, ok := table[k]; !ok {
				t.Fatalf("table %d missing key %q", i, k)
			}
		}
	}
}

func TestTf_FormatsArguments(t *testing.T) {
	got := Tf("ru", KeyStarsReceived, 2.5)
	if !strings.Contains(got, "2.5") {
		t.Fatalf("amount not interpolated: %q", got)
	}
}
