// Package bybit клиент страниц выдачи P2P-объявлений.
package bybit

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"p2p_market/internal/domain"
	"p2p_market/internal/domain/entity"
	"p2p_market/internal/infrastructure/egress"
	"p2p_market/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// ErrMalformedPage ответ получен, но не похож на страницу выдачи.
var ErrMalformedPage = domain.NewError(errcodes.MalformedUpstream, "malformed marketplace page")

// ErrUnreachable все попытки исполнителя исчерпаны.
var ErrUnreachable = domain.NewError(errcodes.MarketplaceUnreachable, "marketplace unreachable")

type RawItem = jsoniter.RawMessage

type executor interface {
	Execute(ctx context.Context, method, rawURL string, body []byte, header http.Header) (*egress.Response, error)
}

type Config struct {
	URL        string
	TokenID    string
	CurrencyID string
	PageSize   int
}

type Client struct {
	executor executor
	config   Config
	headers  HeaderStrategy
}

func NewClient(executor executor, config Config, headers HeaderStrategy) *Client {
	if headers == nil {
		headers = NewRandomHeaders()
	}

	return &Client{
		executor: executor,
		config:   config,
		headers:  headers,
	}
}

func (c *Client) PageSize() int {
	return c.config.PageSize
}

type pageRequest struct {
	UserID     string   `json:"userId"`
	TokenID    string   `json:"tokenId"`
	CurrencyID string   `json:"currencyId"`
	Payment    []string `json:"payment"`
	Side       string   `json:"side"`
	Size       string   `json:"size"`
	Page       string   `json:"page"`
	Amount     string   `json:"amount"`
	AuthMaker  bool     `json:"authMaker"`
	CanTrade   bool     `json:"canTrade"`
}

type pageResponse struct {
	RetCode *int                `json:"ret_code"`
	RetMsg  string              `json:"ret_msg"`
	Result  jsoniter.RawMessage `json:"result"`
}

type pageResult struct {
	Items jsoniter.RawMessage `json:"items"`
}

// FetchPage возвращает сырые записи страницы page (с единицы) в порядке выдачи.
func (c *Client) FetchPage(ctx context.Context, side entity.Side, page int) ([]RawItem, error) {
	body, err := json.Marshal(pageRequest{
		TokenID:    c.config.TokenID,
		CurrencyID: c.config.CurrencyID,
		Payment:    []string{},
		Side:       side.VendorCode(),
		Size:       strconv.Itoa(c.config.PageSize),
		Page:       strconv.Itoa(page),
	})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	resp, err := c.executor.Execute(ctx, http.MethodPost, c.config.URL, body, c.headers.Headers())
	if err != nil {
		return nil, domain.WrapError(err, errcodes.MarketplaceUnreachable, fmt.Sprintf("fetch page %d", page))
	}

	items, err := decodePage(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decodePage(%d): %w", page, err)
	}

	return items, nil
}

func decodePage(data []byte) ([]RawItem, error) {
	var resp pageResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, domain.WrapError(err, ErrMalformedPage.Code, ErrMalformedPage.Message)
	}

	if resp.RetCode == nil || *resp.RetCode != 0 {
		return nil, domain.NewError(ErrMalformedPage.Code, "unexpected ret_code, ret_msg: "+resp.RetMsg)
	}

	if !isJSON(resp.Result, '{') {
		return nil, domain.NewError(ErrMalformedPage.Code, "result is not an object")
	}

	var result pageResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, domain.WrapError(err, ErrMalformedPage.Code, "result is not decodable")
	}

	if !isJSON(result.Items, '[') {
		return nil, domain.NewError(ErrMalformedPage.Code, "result.items is not a list")
	}

	var items []RawItem
	if err := json.Unmarshal(result.Items, &items); err != nil {
		return nil, domain.WrapError(err, ErrMalformedPage.Code, "result.items is not decodable")
	}

	return items, nil
}

func isJSON(raw []byte, open byte) bool {
	raw = bytes.TrimSpace(raw)

	return len(raw) > 0 && raw[0] == open
}
