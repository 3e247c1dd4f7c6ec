package nft

const (
	ErrFailedToFetchCollection = "Failed to Fetch Collection"
	ErrFailedToFetchNft        = "Failed to Fetch Nft"
	ErrFailedToCountNft        = "Failed to Count Nft"
	ErrNftNotFound             = "Nft not found"
)
