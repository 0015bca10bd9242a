package sgmcmc

// Config configures a chain run.
type Config struct {
	BurnIn      int // steps discarded before averaging starts
	NSteps      int // production steps folded into the running average
	ReportEvery int // steps between diagnostic evaluations
}

// DefaultConf runs n production steps with a tenth of that as burn-in
// and a diagnostic report every 100 steps.
func DefaultConf(n int) Config {
	return Config{
		BurnIn:      n / 10,
		NSteps:      n,
		ReportEvery: 100,
	}
}

func (conf Config) IsValid() bool {
	return conf.BurnIn >= 0 &&
		conf.NSteps >= 1 &&
		conf.ReportEvery >= 1
}
