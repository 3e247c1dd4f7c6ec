package common

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	DefaultLimit  = 100
	MaxLimit      = 1000
	DefaultOffset = 0
	OrderDesc     = "DESC"
	OrderAsc      = "ASC"
)

// Cursor is the keyset position carried in a JSON pagination.key: the
// (height, token_id) of the last row of the previous page. A cursor with
// only a height pages by height alone.
type Cursor struct {
	Height  *int64  `json:"height,omitempty"`
	TokenId *string `json:"token_id,omitempty"`
}

// CursorRecord is implemented by rows that can produce the next page key.
type CursorRecord interface {
	Cursor() Cursor
}

// Pagination is parsed from the pagination.* query parameters. Offset
// paging is used unless pagination.key decodes to a Cursor.
type Pagination struct {
	Limit  int
	Offset int
	Order  string
	Cursor *Cursor
}

func (p *Pagination) UseCursor() bool {
	return p.Cursor != nil
}

type PaginationResponse struct {
	PreviousKey *string `json:"previous_key" extensions:"x-order:0"`
	NextKey     *string `json:"next_key" extensions:"x-order:1"`
	Total       string  `json:"total" extensions:"x-order:2"`
}

func ParsePagination(c *fiber.Ctx) (*Pagination, error) {
	limit := c.QueryInt("pagination.limit", DefaultLimit)
	if limit < 1 || limit > MaxLimit {
		return nil, fmt.Errorf("pagination.limit must be between 1 and %d", MaxLimit)
	}
	offset := c.QueryInt("pagination.offset", DefaultOffset)
	if offset < 0 {
		return nil, errors.New("pagination.offset cannot be negative")
	}

	p := &Pagination{Limit: limit, Offset: offset, Order: OrderDesc}
	if !c.QueryBool("pagination.reverse", true) {
		p.Order = OrderAsc
	}
	if key := c.Query("pagination.key"); key != "" {
		if err := p.applyKey(key); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// applyKey accepts a base64 JSON cursor or a base64 decimal offset.
func (p *Pagination) applyKey(key string) error {
	decoded, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return errors.New("pagination.key must be a valid base64 encoded string")
	}

	if bytes.HasPrefix(bytes.TrimSpace(decoded), []byte("{")) {
		var cursor Cursor
		if err := json.Unmarshal(decoded, &cursor); err != nil {
			return errors.New("invalid pagination.key format")
		}
		if cursor.Height == nil {
			return errors.New("pagination.key cursor must carry a height")
		}
		if cursor.TokenId != nil {
			if id, ok := new(big.Int).SetString(*cursor.TokenId, 10); !ok || id.Sign() < 0 {
				return errors.New("pagination.key token_id must be a nonnegative integer")
			}
		}
		p.Cursor = &cursor
		return nil
	}

	offset, err := strconv.Atoi(string(decoded))
	if err != nil || offset < 0 {
		return errors.New("pagination.key must decode to a nonnegative integer")
	}
	p.Offset = offset
	return nil
}

func (p *Pagination) OrderBy(keys ...string) string {
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = key + " " + p.Order
	}
	return strings.Join(parts, ", ")
}

func encodeKey(raw []byte) *string {
	key := base64.StdEncoding.EncodeToString(raw)
	return &key
}

func (p *Pagination) ToResponse(total int64) PaginationResponse {
	res := PaginationResponse{Total: strconv.FormatInt(total, 10)}
	if next := p.Offset + p.Limit; total > int64(next) {
		res.NextKey = encodeKey([]byte(strconv.Itoa(next)))
	}
	if p.Offset > 0 && p.Offset >= p.Limit {
		res.PreviousKey = encodeKey([]byte(strconv.Itoa(p.Offset - p.Limit)))
	}
	return res
}

// ToResponseWithLastRecord continues a cursor walk from lastRecord. A short
// page ends the walk. Offset requests fall through to ToResponse.
func (p *Pagination) ToResponseWithLastRecord(total int64, returned int, lastRecord CursorRecord) PaginationResponse {
	if !p.UseCursor() || lastRecord == nil {
		return p.ToResponse(total)
	}
	res := PaginationResponse{Total: strconv.FormatInt(total, 10)}
	if returned < p.Limit {
		return res
	}
	raw, err := json.Marshal(lastRecord.Cursor())
	if err != nil {
		return res
	}
	res.NextKey = encodeKey(raw)
	return res
}

// ApplyToNft orders NFTs by (height, token_id) and seeks past the cursor,
// or skips Offset rows when there is none. token_id is text, so it is
// compared as a number.
func (p *Pagination) ApplyToNft(query *gorm.DB) *gorm.DB {
	query = query.Order(p.OrderBy("height", "token_id::numeric")).Limit(p.Limit)
	if !p.UseCursor() {
		return query.Offset(p.Offset)
	}

	cmp := ">"
	if p.Order == OrderDesc {
		cmp = "<"
	}
	if p.Cursor.TokenId != nil {
		return query.Where("(height, token_id::numeric) "+cmp+" (?, ?::numeric)", *p.Cursor.Height, *p.Cursor.TokenId)
	}
	return query.Where("height "+cmp+" ?", *p.Cursor.Height)
}
