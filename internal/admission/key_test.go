package admission

import "testing"

func TestBucketKey(t *testing.T) {
	key := BucketKey("wallet.transfer", ScopeGuild, "guild-1")
	if key != "wallet.transfer:guild:guild-1" {
		t.Fatalf("unexpected key: %q", key)
	}
}

func TestResolveIdentifier(t *testing.T) {
	if id := ResolveIdentifier(ScopeUser, "actor-1", "chan-1", "guild-1"); id != "actor-1" {
		t.Fatalf("expected actor id for user scope, got %q", id)
	}
	if id := ResolveIdentifier(ScopeChannel, "actor-1", "chan-1", "guild-1"); id != "chan-1" {
		t.Fatalf("expected channel id for channel scope, got %q", id)
	}
	if id := ResolveIdentifier(ScopeGuild, "actor-1", "chan-1", "guild-1"); id != "guild-1" {
		t.Fatalf("expected guild id for guild scope, got %q", id)
	}
	// Container scopes fall back to the actor id.
	if id := ResolveIdentifier(ScopeGuild, "actor-1", "", ""); id != "actor-1" {
		t.Fatalf("expected fallback to actor id, got %q", id)
	}
}

func TestParseScopeRoundTrip(t *testing.T) {
	for _, scope := range []Scope{ScopeUser, ScopeChannel, ScopeGuild} {
		parsed, errParse := ParseScope(scope.String())
		if errParse != nil || parsed != scope {
			t.Fatalf("round trip failed for %v: %v %v", scope, parsed, errParse)
		}
	}
	if _, errParse := ParseScope("galaxy"); errParse == nil {
		t.Fatalf("expected error for unknown scope")
	}
}

func TestParseTierRoundTrip(t *testing.T) {
	for _, tier := range []Tier{TierStandard, TierSensitive, TierUltraSensitive} {
		parsed, errParse := ParseTier(tier.String())
		if errParse != nil || parsed != tier {
			t.Fatalf("round trip failed for %v: %v %v", tier, parsed, errParse)
		}
	}
	if _, errParse := ParseTier("mild"); errParse == nil {
		t.Fatalf("expected error for unknown tier")
	}
}
