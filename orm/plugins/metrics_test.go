package plugins

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractTableFromSQL(t *testing.T) {
	cases := map[string]string{
		`SELECT * FROM "nft" WHERE owner = $1`:                 "nft",
		`INSERT INTO "mint_voucher" ("uid") VALUES ($1)`:       "mint_voucher",
		`UPDATE "mint_voucher" SET "status"=$1 WHERE uid = $2`: "mint_voucher",
		`DELETE FROM "nft" WHERE collection_addr = $1`:         "nft",
		`select count(*) from nft_collection`:                  "nft_collection",
		`SHOW server_version`:                                  "",
	}
	for sql, want := range cases {
		require.Equal(t, want, extractTableFromSQL(sql), sql)
	}
}

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		`SELECT reltuples FROM pg_class`:       "SELECT",
		`  insert into nft (token_id) values`:  "INSERT",
		`DELETE FROM nft`:                      "DELETE",
		`WITH x AS (SELECT 1) SELECT * FROM x`: "OTHER",
		``:                                     "UNKNOWN",
	}
	for sql, want := range cases {
		require.Equal(t, want, operationFromSQL(sql), sql)
	}
}
