package bookscmd

// FeatureGates exposes runtime feature toggles required by book command
// handlers. Callers supply closures that read from the module Features config
// so handlers stay decoupled from configuration while honouring the flags.
type FeatureGates struct {
	StorageEnabled   func() bool
	IngestEnabled    func() bool
	CollationEnabled func() bool
}

func (g FeatureGates) storageEnabled() bool {
	if g.StorageEnabled == nil {
		return true
	}
	return g.StorageEnabled()
}

func (g FeatureGates) ingestEnabled() bool {
	if g.IngestEnabled == nil {
		return true
	}
	return g.IngestEnabled()
}

func (g FeatureGates) collationEnabled() bool {
	if g.CollationEnabled == nil {
		return true
	}
	return g.CollationEnabled()
}
