package dragons

import "math"

// Scope selects which id universe a query runs against.
type Scope uint8

const (
	ScopeAll Scope = iota
	ScopeBattle
	ScopeBreed
	ScopeMarket
)

// Sort orders a result set. Rarity and strength are descending (best
// first), id and price ascending. Price sort only applies to priced
// scopes and is ignored on ScopeAll.
type Sort uint8

const (
	SortID       Sort = 0
	SortRarity   Sort = 1
	SortStrength Sort = 2
	SortPrice    Sort = 3
)

const (
	DefaultLimit = 6
	// NoEndPrice keeps the price range open upward.
	NoEndPrice = math.MaxUint64
)

// Params carries one request's filter, sort and page selection.
type Params struct {
	Owner      string
	Stage      *uint8
	StartPrice uint64
	EndPrice   uint64
	Sort       Sort
	Limit      int
	Offset     int
}

func (p Params) priceFiltered() bool {
	return p.StartPrice > 0 || p.EndPrice < NoEndPrice
}

// Action is one context-specific numeric entry on a token: battle
// listing price (1), breed listing price (2), market price (3) or
// market order id (4).
type Action struct {
	Kind  uint8  `json:"kind"`
	Value string `json:"value"`
}

type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Owner    string   `json:"owner"`
	URL      string   `json:"url"`
	GenImage string   `json:"gen_image"`
	GenFight string   `json:"gen_fight"`
	Stage    uint8    `json:"stage"`
	Rarity   uint8    `json:"rarity"`
	Strength uint16   `json:"strength"`
	Actions  []Action `json:"actions"`
}

type Pagination struct {
	Records     int `json:"records"`
	Pages       int `json:"pages"`
	CurrentPage int `json:"current_page"`
	Limit       int `json:"limit"`
}

type ListResponse struct {
	Items      []Item
	Pagination Pagination
}
