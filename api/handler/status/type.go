package status

type StatusResponse struct {
	Version       string `json:"version" extensions:"x-order:0"`
	CommitHash    string `json:"commit_hash" extensions:"x-order:1"`
	ChainId       int64  `json:"chain_id" extensions:"x-order:2"`
	Collection    string `json:"collection" extensions:"x-order:3"`
	ContractType  string `json:"contract_type" extensions:"x-order:4"`
	Signer        string `json:"signer,omitempty" extensions:"x-order:5"`
	IndexedHeight int64  `json:"indexed_height" extensions:"x-order:6"`
}
