package httputils

import (
	"net/http"
	"strconv"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/errors"
	"boscoin.io/benor/lib/storage"
)

const DefaultMaxLimit uint64 = 100

// PageQuery reads `cursor`, `limit` and `reverse` from the query string.
// The cursor is opaque here; the handler knows how it maps to a storage
// key.
type PageQuery struct {
	request *http.Request
	cursor  string
	reverse bool
	limit   uint64
}

func NewPageQuery(r *http.Request) (*PageQuery, error) {
	p := &PageQuery{
		request: r,
		limit:   DefaultMaxLimit,
	}
	if err := p.parseRequest(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *PageQuery) Cursor() string {
	return p.cursor
}

func (p *PageQuery) Limit() uint64 {
	return p.limit
}

func (p *PageQuery) Reverse() bool {
	return p.reverse
}

func (p *PageQuery) SelfLink() string {
	return p.request.URL.String()
}

// NextLink is the self link moved to cursor.
func (p *PageQuery) NextLink(cursor string) string {
	u := *p.request.URL
	q := u.Query()
	q.Set("cursor", cursor)
	u.RawQuery = q.Encode()

	return u.String()
}

func (p *PageQuery) WalkOption() *storage.WalkOption {
	return storage.NewWalkOption(p.limit, p.reverse)
}

func (p *PageQuery) parseRequest() error {
	q := p.request.URL.Query()
	p.cursor = q.Get("cursor")

	if r := q.Get("reverse"); r != "" {
		reverse, err := common.ParseBoolQueryString(r)
		if err != nil {
			return errors.BadRequestParameter.Clone().SetData("reverse", r)
		}
		p.reverse = reverse
	}

	if l := q.Get("limit"); l != "" {
		limit, err := strconv.ParseUint(l, 10, 64)
		if err != nil {
			return errors.BadRequestParameter.Clone().SetData("limit", l)
		}
		if limit > 0 && limit < DefaultMaxLimit {
			p.limit = limit
		}
	}

	return nil
}
