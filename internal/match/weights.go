package match

// Weights are the score contributions of each matching signal.
// Penalties are stored as positive numbers and subtracted.
type Weights struct {
	Regex          float64 `koanf:"regex" yaml:"regex"`
	AliasExact     float64 `koanf:"alias_exact" yaml:"alias_exact"`
	AliasPartial   float64 `koanf:"alias_partial" yaml:"alias_partial"`
	ValuePattern   float64 `koanf:"value_pattern" yaml:"value_pattern"`
	EnumValue      float64 `koanf:"enum_value" yaml:"enum_value"`
	Unit           float64 `koanf:"unit" yaml:"unit"`
	ExcludeToken   float64 `koanf:"exclude_token" yaml:"exclude_token"`
	ExcludePattern float64 `koanf:"exclude_pattern" yaml:"exclude_pattern"`
	ExcludeSample  float64 `koanf:"exclude_sample" yaml:"exclude_sample"`
	NumericStrong  float64 `koanf:"numeric_strong" yaml:"numeric_strong"`
	NumericWeak    float64 `koanf:"numeric_weak" yaml:"numeric_weak"`
	NumericPenalty float64 `koanf:"numeric_penalty" yaml:"numeric_penalty"`
	Priority       float64 `koanf:"priority" yaml:"priority"`
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Regex:          0.6,
		AliasExact:     0.8,
		AliasPartial:   0.5,
		ValuePattern:   0.4,
		EnumValue:      0.5,
		Unit:           0.3,
		ExcludeToken:   0.2,
		ExcludePattern: 0.5,
		ExcludeSample:  0.7,
		NumericStrong:  0.3,
		NumericWeak:    0.1,
		NumericPenalty: 0.2,
		Priority:       0.1,
	}
}

// Share of numeric samples that earns the strong and weak numeric bonus.
const (
	numericStrongRatio = 0.8
	numericWeakRatio   = 0.5
)

// DefaultSampleSize is the number of non-blank values inspected per column.
const DefaultSampleSize = 10

// Config controls column analysis.
type Config struct {
	// SampleSize caps the sample values inspected per column.
	SampleSize int `koanf:"sample_size" yaml:"sample_size"`
	// MinCandidate is the confidence a candidate must exceed to be kept.
	MinCandidate float64 `koanf:"min_candidate" yaml:"min_candidate"`
	// AcceptThreshold is the confidence at which the best candidate is committed.
	AcceptThreshold float64 `koanf:"accept_threshold" yaml:"accept_threshold"`
	Weights         Weights `koanf:"weights" yaml:"weights"`
}

// DefaultConfig returns the default analysis configuration.
func DefaultConfig() Config {
	return Config{
		SampleSize:      DefaultSampleSize,
		MinCandidate:    DefaultMinCandidate,
		AcceptThreshold: DefaultMinScore,
		Weights:         DefaultWeights(),
	}
}
