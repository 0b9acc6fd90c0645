package config

// SandboxConfig contains configuration for the sandboxed file loader. Each
// root maps one fixed base category; callers of the loader never supply a
// path, only a bare filename-like key.
type SandboxConfig struct {
	// RepoSnapshotsDir is the root for the repo_snapshots category.
	RepoSnapshotsDir string `env:"REPO_SNAPSHOTS_DIR" envDefault:"./ai_sandbox/repo_snapshots"`

	// PilotDataExportsDir is the root for the pilot_data_exports category.
	PilotDataExportsDir string `env:"PILOT_DATA_EXPORTS_DIR" envDefault:"./ai_sandbox/pilot_data_exports"`

	// OutputsDir is the root for the outputs category.
	OutputsDir string `env:"OUTPUTS_DIR" envDefault:"./ai_sandbox/outputs"`

	// MaxFileBytes caps the size of any loaded file.
	MaxFileBytes int64 `env:"MAX_FILE_BYTES" envDefault:"2097152"`
}

const defaultMaxFileBytes = 2 << 20 // 2 MB

// Sanitize applies guardrails to sandbox configuration values.
func (s *SandboxConfig) Sanitize() {
	if s.MaxFileBytes <= 0 {
		s.MaxFileBytes = defaultMaxFileBytes
	}
}
