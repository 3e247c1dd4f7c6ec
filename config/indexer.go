package config

import "time"

type IndexerConfig struct {
	StartBlock      uint64
	Confirmations   uint64
	BlockRange      uint64
	PollingInterval time.Duration
	FetchWorkers    int // parallel tokenURI/metadata fetches per batch
}

func (c IndexerConfig) GetPollingInterval() time.Duration {
	return c.PollingInterval
}

func (c IndexerConfig) GetBlockRange() uint64 {
	if c.BlockRange == 0 {
		return 1
	}
	return c.BlockRange
}

func (c IndexerConfig) GetFetchWorkers() int {
	if c.FetchWorkers <= 0 {
		return 1
	}
	return c.FetchWorkers
}
