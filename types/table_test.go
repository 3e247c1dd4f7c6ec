package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFastCountStrategyImplementation(t *testing.T) {
	tests := []struct {
		name            string
		strategy        FastCountStrategy
		expectedTable   string
		expectedOptType CountOptimizationType
		supportsFast    bool
	}{
		{
			name:            "CollectedNft",
			strategy:        CollectedNft{},
			expectedTable:   "nft",
			expectedOptType: CountOptimizationTypePgClass,
			supportsFast:    true,
		},
		{
			name:            "CollectedMintVoucher",
			strategy:        CollectedMintVoucher{},
			expectedTable:   "mint_voucher",
			expectedOptType: CountOptimizationTypeCount,
			supportsFast:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedTable, tt.strategy.TableName())
			assert.Equal(t, tt.expectedOptType, tt.strategy.GetOptimizationType())
			assert.Equal(t, tt.supportsFast, tt.strategy.SupportsFastCount())
		})
	}
}

func TestAllTablesMatchTableNames(t *testing.T) {
	names := map[string]bool{}
	for _, table := range AllTables() {
		named, ok := table.Model.(interface{ TableName() string })
		if !ok {
			t.Fatalf("%s model has no TableName", table.Name)
		}
		assert.Equal(t, table.Name, named.TableName())
		names[table.Name] = true
	}
	assert.Equal(t, map[string]bool{"indexer_state": true, "nft_collection": true, "nft": true, "mint_voucher": true}, names)
}
