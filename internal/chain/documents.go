package chain

import (
	"context"
	"fmt"
)

// MainState is the mutable state of the dragon contract, reduced to the
// fields the snapshot builder consumes.
type MainState struct {
	TokenGenBattle   map[string]string            `json:"token_gen_battle"`
	TokenGenImage    map[string]string            `json:"token_gen_image"`
	TokenOwners      map[string]string            `json:"token_owners"`
	TokenStage       map[string]string            `json:"token_stage"`
	TokenURIs        map[string]string            `json:"token_uris"`
	TokensOwnerStage map[string]map[string]string `json:"tokens_owner_stage"`
}

// BreedListing is one entry of the breed waiting list.
type BreedListing struct {
	Price string
	Owner string
}

// MarketOrder is one orderbook entry of the marketplace contract.
type MarketOrder struct {
	Owner   string
	Price   string
	TokenID string
	OrderID string
}

// scillaADT mirrors a Scilla constructor value; only the positional
// arguments carry data.
type scillaADT struct {
	Arguments []string `json:"arguments"`
}

type battleStateDoc struct {
	WaitingList map[string]string `json:"waiting_list"`
}

type breedStateDoc struct {
	WaitingList map[string]scillaADT `json:"waiting_list"`
}

type orderStateDoc struct {
	Orderbook map[string]scillaADT `json:"orderbook"`
}

type nameStateDoc struct {
	DragonsName map[string]string `json:"dragons_name"`
}

func (c *Client) MainState(ctx context.Context) (*MainState, error) {
	var doc MainState
	if err := c.call(ctx, c.reqMain, "main state", &doc); err != nil {
		return nil, err
	}
	if doc.TokenStage == nil || doc.TokenOwners == nil {
		return nil, fmt.Errorf("%w: main state: missing token maps", ErrMalformedDocument)
	}
	return &doc, nil
}

// BattleWaitingList returns token id to listing price for every token
// waiting for a battle.
func (c *Client) BattleWaitingList(ctx context.Context) (map[string]string, error) {
	var doc battleStateDoc
	if err := c.call(ctx, c.reqBattle, "battle state", &doc); err != nil {
		return nil, err
	}
	if doc.WaitingList == nil {
		return nil, fmt.Errorf("%w: battle state: missing waiting_list", ErrMalformedDocument)
	}
	return doc.WaitingList, nil
}

// BreedWaitingList returns token id to listing for every token waiting
// to breed. The pair order (price, owner) is contract ABI.
func (c *Client) BreedWaitingList(ctx context.Context) (map[string]BreedListing, error) {
	var doc breedStateDoc
	if err := c.call(ctx, c.reqBreed, "breed state", &doc); err != nil {
		return nil, err
	}
	if doc.WaitingList == nil {
		return nil, fmt.Errorf("%w: breed state: missing waiting_list", ErrMalformedDocument)
	}
	out := make(map[string]BreedListing, len(doc.WaitingList))
	for id, adt := range doc.WaitingList {
		if len(adt.Arguments) < 2 {
			return nil, fmt.Errorf("%w: breed state: entry %s has %d arguments", ErrMalformedDocument, id, len(adt.Arguments))
		}
		out[id] = BreedListing{Price: adt.Arguments[0], Owner: adt.Arguments[1]}
	}
	return out, nil
}

// MarketOrders returns the open marketplace orders. The argument order
// (owner, price, token id, order id) is contract ABI.
func (c *Client) MarketOrders(ctx context.Context) ([]MarketOrder, error) {
	var doc orderStateDoc
	if err := c.call(ctx, c.reqMarket, "market state", &doc); err != nil {
		return nil, err
	}
	if doc.Orderbook == nil {
		return nil, fmt.Errorf("%w: market state: missing orderbook", ErrMalformedDocument)
	}
	out := make([]MarketOrder, 0, len(doc.Orderbook))
	for key, adt := range doc.Orderbook {
		if len(adt.Arguments) < 4 {
			return nil, fmt.Errorf("%w: market state: order %s has %d arguments", ErrMalformedDocument, key, len(adt.Arguments))
		}
		out = append(out, MarketOrder{
			Owner:   adt.Arguments[0],
			Price:   adt.Arguments[1],
			TokenID: adt.Arguments[2],
			OrderID: adt.Arguments[3],
		})
	}
	return out, nil
}

// Names returns the token id to display name registry. Names are
// optional per token.
func (c *Client) Names(ctx context.Context) (map[string]string, error) {
	var doc nameStateDoc
	if err := c.call(ctx, c.reqNames, "name state", &doc); err != nil {
		return nil, err
	}
	if doc.DragonsName == nil {
		return nil, fmt.Errorf("%w: name state: missing dragons_name", ErrMalformedDocument)
	}
	return doc.DragonsName, nil
}
