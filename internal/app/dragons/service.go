// Package dragons is the query engine: it selects, orders and paginates
// token ids from the published snapshot and projects them into response
// items. It never mutates a snapshot.
package dragons

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"dragon-backend/internal/snapshot"
)

type Service struct {
	holder *snapshot.Holder
}

func NewService(holder *snapshot.Holder) *Service {
	return &Service{holder: holder}
}

// List runs one filter/sort/paginate pass over the given scope.
func (s *Service) List(scope Scope, p Params) (*ListResponse, error) {
	snap := s.holder.Current()
	if snap == nil {
		return nil, ErrSnapshotNotReady
	}
	if p.Limit <= 0 {
		return nil, ErrBadLimit
	}

	ids, owned, prices, priced := scopeView(snap, scope)
	if p.Owner != "" {
		ownerIDs, ok := owned[p.Owner]
		if !ok {
			return nil, ErrOwnerNotFound
		}
		ids = ownerIDs
	}

	candidates, err := filterIDs(snap, ids, prices, priced, p)
	if err != nil {
		return nil, err
	}
	candidates = sortIDs(snap, candidates, prices, priced, p.Sort)

	total := len(candidates)
	if total == 0 {
		return &ListResponse{Items: []Item{}, Pagination: paginate(0, p)}, nil
	}
	// Checked by division: offset*limit could overflow for a huge
	// offset and slip past a start >= total comparison.
	if p.Offset > (total-1)/p.Limit {
		return nil, ErrOffsetTooBig
	}
	start := p.Offset * p.Limit
	end := start + p.Limit
	if end > total {
		end = total
	}

	items := make([]Item, 0, end-start)
	for _, id := range candidates[start:end] {
		item, err := buildItem(snap, id)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &ListResponse{Items: items, Pagination: paginate(total, p)}, nil
}

// GetByID projects a single token as a one-item page.
func (s *Service) GetByID(id string) (*ListResponse, error) {
	snap := s.holder.Current()
	if snap == nil {
		return nil, ErrSnapshotNotReady
	}
	if _, ok := snap.Stage[id]; !ok {
		return nil, ErrTokenNotFound
	}
	item, err := buildItem(snap, id)
	if err != nil {
		return nil, err
	}
	return &ListResponse{
		Items:      []Item{item},
		Pagination: Pagination{Records: 1, Pages: 1, CurrentPage: 1, Limit: 1},
	}, nil
}

func scopeView(snap *snapshot.Snapshot, scope Scope) (ids []string, owned map[string][]string, prices map[string]string, priced bool) {
	switch scope {
	case ScopeBattle:
		return snap.Battle.IDs, snap.Battle.OwnedIDs, snap.Battle.Price, true
	case ScopeBreed:
		return snap.Breed.IDs, snap.Breed.OwnedIDs, snap.Breed.Price, true
	case ScopeMarket:
		return snap.Market.IDs, snap.Market.OwnedIDs, snap.Market.Price, true
	default:
		return snap.AllIDs, snap.OwnedIDs, nil, false
	}
}

// filterIDs applies every active predicate in a single scan. Without
// active filters the input list is returned as is (still owned by the
// snapshot; sortIDs copies before reordering).
func filterIDs(snap *snapshot.Snapshot, ids []string, prices map[string]string, priced bool, p Params) ([]string, error) {
	priceActive := priced && p.priceFiltered()
	if p.Stage == nil && !priceActive {
		return ids, nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if p.Stage != nil {
			stage, ok := snap.Stage[id]
			if !ok {
				return nil, fmt.Errorf("%w: id %s has no stage", ErrIndexCorrupt, id)
			}
			if stage != *p.Stage {
				continue
			}
		}
		if priceActive {
			raw, ok := prices[id]
			if !ok {
				return nil, fmt.Errorf("%w: id %s has no price", ErrIndexCorrupt, id)
			}
			price := priceValue(raw)
			if price < p.StartPrice || price > p.EndPrice {
				continue
			}
		}
		out = append(out, id)
	}
	return out, nil
}

func sortIDs(snap *snapshot.Snapshot, ids []string, prices map[string]string, priced bool, by Sort) []string {
	switch by {
	case SortRarity:
		ids = cloneIDs(ids)
		sort.SliceStable(ids, func(i, j int) bool {
			return snap.Rarity[ids[i]] > snap.Rarity[ids[j]]
		})
	case SortStrength:
		ids = cloneIDs(ids)
		sort.SliceStable(ids, func(i, j int) bool {
			return snap.Strength[ids[i]] > snap.Strength[ids[j]]
		})
	case SortPrice:
		if priced {
			ids = cloneIDs(ids)
			sort.SliceStable(ids, func(i, j int) bool {
				return priceValue(prices[ids[i]]) < priceValue(prices[ids[j]])
			})
		}
	default:
		// Scope lists are already in ascending numeric id order.
	}
	return ids
}

func cloneIDs(ids []string) []string {
	return append([]string(nil), ids...)
}

// priceValue saturates instead of failing: an unparseable price sorts
// and filters as zero, one beyond the uint64 range as maximal.
func priceValue(raw string) uint64 {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && ne.Err == strconv.ErrRange {
			return NoEndPrice
		}
		return 0
	}
	return v
}

func buildItem(snap *snapshot.Snapshot, id string) (Item, error) {
	owner, ok := snap.Owner[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: id %s has no owner", ErrIndexCorrupt, id)
	}
	uri, ok := snap.URI[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: id %s has no uri", ErrIndexCorrupt, id)
	}
	genImage, ok := snap.GenImage[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: id %s has no image gene", ErrIndexCorrupt, id)
	}
	genBattle, ok := snap.GenBattle[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: id %s has no battle gene", ErrIndexCorrupt, id)
	}
	return Item{
		ID:       id,
		Name:     snap.Name[id],
		Owner:    owner,
		URL:      uri,
		GenImage: genImage,
		GenFight: genBattle,
		Stage:    snap.Stage[id],
		Rarity:   snap.Rarity[id],
		Strength: snap.Strength[id],
		Actions:  collectActions(snap, id),
	}, nil
}

func collectActions(snap *snapshot.Snapshot, id string) []Action {
	actions := make([]Action, 0, 3)
	if price, ok := snap.Battle.Price[id]; ok {
		actions = append(actions, Action{Kind: uint8(snapshot.ActionBattlePrice), Value: price})
	}
	if price, ok := snap.Breed.Price[id]; ok {
		actions = append(actions, Action{Kind: uint8(snapshot.ActionBreedPrice), Value: price})
	}
	if price, ok := snap.Market.Price[id]; ok {
		actions = append(actions, Action{Kind: uint8(snapshot.ActionMarketPrice), Value: price})
	}
	if orderID, ok := snap.MarketOrderID[id]; ok {
		actions = append(actions, Action{Kind: uint8(snapshot.ActionMarketOrder), Value: orderID})
	}
	return actions
}

func paginate(records int, p Params) Pagination {
	pages := 0
	if records > 0 {
		pages = (records-1)/p.Limit + 1
	}
	return Pagination{
		Records:     records,
		Pages:       pages,
		CurrentPage: p.Offset + 1,
		Limit:       p.Limit,
	}
}
