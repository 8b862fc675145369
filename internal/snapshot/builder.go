package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"dragon-backend/internal/chain"
	"dragon-backend/internal/genes"
)

// ErrInconsistentState marks upstream documents that individually parse
// but disagree with each other (a waiting-list token unknown to the
// main contract). Like a malformed document it fails the whole build.
var ErrInconsistentState = errors.New("inconsistent_state")

// Fetcher is the part of the chain client the builder consumes.
type Fetcher interface {
	MainState(ctx context.Context) (*chain.MainState, error)
	BattleWaitingList(ctx context.Context) (map[string]string, error)
	BreedWaitingList(ctx context.Context) (map[string]chain.BreedListing, error)
	MarketOrders(ctx context.Context) ([]chain.MarketOrder, error)
	Names(ctx context.Context) (map[string]string, error)
}

type Builder struct {
	fetcher Fetcher
}

func NewBuilder(f Fetcher) *Builder {
	return &Builder{fetcher: f}
}

// Build fetches the five contract documents and folds them into one
// snapshot. It either returns a complete snapshot or an error; a
// partially populated snapshot is never returned.
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	names, err := b.fetcher.Names(ctx)
	if err != nil {
		return nil, err
	}
	breedList, err := b.fetcher.BreedWaitingList(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := b.fetcher.MarketOrders(ctx)
	if err != nil {
		return nil, err
	}
	main, err := b.fetcher.MainState(ctx)
	if err != nil {
		return nil, err
	}
	battleList, err := b.fetcher.BattleWaitingList(ctx)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		BuildID:   newBuildID(),
		BuiltAt:   time.Now().UTC(),
		GenImage:  main.TokenGenImage,
		GenBattle: main.TokenGenBattle,
		URI:       main.TokenURIs,
		Name:      names,
	}

	// Market first: for an actively listed token the listing owner is
	// the apparent owner, the main contract only fills the gaps.
	s.Owner = make(map[string]string, len(main.TokenOwners))
	s.Market = Context{
		IDs:      make([]string, 0, len(orders)),
		Price:    make(map[string]string, len(orders)),
		OwnedIDs: make(map[string][]string),
	}
	s.MarketOrderID = make(map[string]string, len(orders))
	for _, o := range orders {
		if _, ok := main.TokenStage[o.TokenID]; !ok {
			return nil, fmt.Errorf("%w: market order %s references unknown token %s", ErrInconsistentState, o.OrderID, o.TokenID)
		}
		s.Owner[o.TokenID] = o.Owner
		s.Market.IDs = append(s.Market.IDs, o.TokenID)
		s.Market.Price[o.TokenID] = o.Price
		s.MarketOrderID[o.TokenID] = o.OrderID
		s.Market.OwnedIDs[o.Owner] = append(s.Market.OwnedIDs[o.Owner], o.TokenID)
	}
	for id, owner := range main.TokenOwners {
		if _, ok := s.Owner[id]; !ok {
			s.Owner[id] = owner
		}
	}

	s.Breed = Context{
		IDs:      make([]string, 0, len(breedList)),
		Price:    make(map[string]string, len(breedList)),
		OwnedIDs: make(map[string][]string),
	}
	for id, listing := range breedList {
		if _, ok := main.TokenStage[id]; !ok {
			return nil, fmt.Errorf("%w: breed waiting list references unknown token %s", ErrInconsistentState, id)
		}
		s.Breed.IDs = append(s.Breed.IDs, id)
		s.Breed.Price[id] = listing.Price
		s.Breed.OwnedIDs[listing.Owner] = append(s.Breed.OwnedIDs[listing.Owner], id)
	}

	// The battle contract reports ids only; owners come from the main
	// ownership map.
	s.Battle = Context{
		IDs:      make([]string, 0, len(battleList)),
		Price:    battleList,
		OwnedIDs: make(map[string][]string),
	}
	for id := range battleList {
		if _, ok := main.TokenStage[id]; !ok {
			return nil, fmt.Errorf("%w: battle waiting list references unknown token %s", ErrInconsistentState, id)
		}
		owner, ok := main.TokenOwners[id]
		if !ok {
			return nil, fmt.Errorf("%w: battle token %s has no owner", ErrInconsistentState, id)
		}
		s.Battle.IDs = append(s.Battle.IDs, id)
		s.Battle.OwnedIDs[owner] = append(s.Battle.OwnedIDs[owner], id)
	}

	// Combined ownership: primary holdings plus market listings. An
	// owner whose every token is listed has no main-state entry and is
	// carried by the second loop.
	s.OwnedIDs = make(map[string][]string, len(main.TokensOwnerStage))
	for owner, tokens := range main.TokensOwnerStage {
		ids := make([]string, 0, len(tokens)+len(s.Market.OwnedIDs[owner]))
		for id := range tokens {
			ids = append(ids, id)
		}
		for _, id := range s.Market.OwnedIDs[owner] {
			if _, held := tokens[id]; !held {
				ids = append(ids, id)
			}
		}
		s.OwnedIDs[owner] = ids
	}
	for owner, listed := range s.Market.OwnedIDs {
		if _, ok := s.OwnedIDs[owner]; !ok {
			s.OwnedIDs[owner] = append([]string(nil), listed...)
		}
	}

	total := len(main.TokenStage)
	s.AllIDs = make([]string, 0, total)
	s.Rarity = make(map[string]uint8, total)
	s.Strength = make(map[string]uint16, total)
	s.Stage = make(map[string]uint8, total)
	for id, rawStage := range main.TokenStage {
		s.AllIDs = append(s.AllIDs, id)
		s.Rarity[id] = genes.Rarity(main.TokenGenImage[id])
		s.Strength[id] = genes.Strength(main.TokenGenBattle[id])
		s.Stage[id] = parseStage(rawStage)
	}

	SortIDs(s.AllIDs)
	SortIDs(s.Battle.IDs)
	SortIDs(s.Breed.IDs)
	SortIDs(s.Market.IDs)
	for _, owned := range []map[string][]string{s.OwnedIDs, s.Battle.OwnedIDs, s.Breed.OwnedIDs, s.Market.OwnedIDs} {
		for _, ids := range owned {
			SortIDs(ids)
		}
	}
	return s, nil
}

// parseStage degrades a garbled per-token stage to 0 rather than
// failing the build, same policy as the gene decoders.
func parseStage(raw string) uint8 {
	v, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}
