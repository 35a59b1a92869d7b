package pkg

const (
	// speed observation smoothing (exponential moving average)
	EMA_ALPHA_FIRST_OBSERVATION = 1.0
	EMA_ALPHA                   = 0.2

	DEFAULT_NOMINAL_SPEED = 13.89 // 50 km/h in m/s

	DEFAULT_MAX_LINE_BYTES     = 1024
	DEFAULT_MAX_RESPONSE_BYTES = 1 << 20
)
