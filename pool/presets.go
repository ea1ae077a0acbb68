package pool

// Capacity presets trade retained history for memory. Lite keeps a short
// sliding window for constrained hosts; Archive retains enough checkpoints
// to answer queries far into the past.

// LiteRules returns the constrained-host profile.
func LiteRules() Rules {
	r := DefaultRules()
	r.Name = LiteName
	r.HistoryCardinality = 256
	r.BufferCardinality = 32
	return r
}

// ArchiveRules returns the deep-history profile.
func ArchiveRules() Rules {
	r := DefaultRules()
	r.Name = ArchiveName
	r.HistoryCardinality = 65536
	r.BufferCardinality = 4096
	return r
}

// RulesByName resolves a profile name from configuration. ok is false for
// unknown names.
func RulesByName(name string) (Rules, bool) {
	switch name {
	case DefaultName, "":
		return DefaultRules(), true
	case LiteName:
		return LiteRules(), true
	case ArchiveName:
		return ArchiveRules(), true
	case FakeName:
		return FakeRules(), true
	}
	return Rules{}, false
}
