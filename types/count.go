package types

type CountOptimizationType int

const (
	CountOptimizationTypePgClass CountOptimizationType = iota + 1 // planner estimate from pg_class
	CountOptimizationTypeCount                                    // plain COUNT(*)
)

// FastCountStrategy describes how a table can be counted without a full scan.
type FastCountStrategy interface {
	TableName() string
	GetOptimizationType() CountOptimizationType
	SupportsFastCount() bool
}

func (CollectedNft) GetOptimizationType() CountOptimizationType {
	return CountOptimizationTypePgClass
}
func (CollectedNft) SupportsFastCount() bool { return true }

// vouchers are filtered by status almost everywhere, estimates would mislead
func (CollectedMintVoucher) GetOptimizationType() CountOptimizationType {
	return CountOptimizationTypeCount
}
func (CollectedMintVoucher) SupportsFastCount() bool { return false }
