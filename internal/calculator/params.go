package calculator

const (
	DefaultWindow        = 21
	DefaultAnnualization = 252.0
	DefaultRiskFreeRate  = 0.10
)

// Params carries the explicit knobs of the metric chain.
type Params struct {
	Window        int
	Annualization float64
	RiskFreeRate  float64
	// Workers bounds per-ticker parallelism in FuseTable; <= 0 means NumCPU.
	Workers int
}

// DefaultParams returns window 21, annualization 252 and a 10% risk-free rate.
func DefaultParams() Params {
	return Params{
		Window:        DefaultWindow,
		Annualization: DefaultAnnualization,
		RiskFreeRate:  DefaultRiskFreeRate,
	}
}
