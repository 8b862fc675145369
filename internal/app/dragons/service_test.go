package dragons

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"dragon-backend/internal/snapshot"
)

func testSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		BuildID: "01TESTBUILD",
		AllIDs:  []string{"1", "2", "3", "4", "10"},
		OwnedIDs: map[string][]string{
			"0xaa": {"1", "2", "3"},
			"0xbb": {"10"},
			"0xcc": {"4"},
		},
		Owner: map[string]string{
			"1": "0xaa", "2": "0xaa", "3": "0xaa", "4": "0xcc", "10": "0xbb",
		},
		Rarity: map[string]uint8{
			"1": 5, "2": 1, "3": 3, "4": 2, "10": 3,
		},
		Strength: map[string]uint16{
			"1": 100, "2": 300, "3": 200, "4": 400, "10": 50,
		},
		Stage: map[string]uint8{
			"1": 1, "2": 2, "3": 1, "4": 1, "10": 3,
		},
		GenImage: map[string]string{
			"1": "g1", "2": "g2", "3": "g3", "4": "g4", "10": "g10",
		},
		GenBattle: map[string]string{
			"1": "b1", "2": "b2", "3": "b3", "4": "b4", "10": "b10",
		},
		URI: map[string]string{
			"1": "u1", "2": "u2", "3": "u3", "4": "u4", "10": "u10",
		},
		Name: map[string]string{"1": "Spike"},
		Battle: snapshot.Context{
			IDs:      []string{"2"},
			Price:    map[string]string{"2": "100"},
			OwnedIDs: map[string][]string{"0xaa": {"2"}},
		},
		Breed: snapshot.Context{
			IDs:      []string{"10"},
			Price:    map[string]string{"10": "200"},
			OwnedIDs: map[string][]string{"0xbb": {"10"}},
		},
		Market: snapshot.Context{
			IDs:      []string{"3", "4"},
			Price:    map[string]string{"3": "5000", "4": "6000"},
			OwnedIDs: map[string][]string{"0xaa": {"3"}, "0xcc": {"4"}},
		},
		MarketOrderID: map[string]string{"3": "77", "4": "78"},
	}
}

func testService(snap *snapshot.Snapshot) *Service {
	var holder snapshot.Holder
	if snap != nil {
		holder.Publish(snap)
	}
	return NewService(&holder)
}

func defaultParams() Params {
	return Params{Limit: DefaultLimit, EndPrice: NoEndPrice}
}

func itemIDs(resp *ListResponse) []string {
	ids := make([]string, 0, len(resp.Items))
	for _, it := range resp.Items {
		ids = append(ids, it.ID)
	}
	return ids
}

func TestListAllDefaultOrder(t *testing.T) {
	svc := testService(testSnapshot())
	resp, err := svc.List(ScopeAll, defaultParams())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"1", "2", "3", "4", "10"}; !reflect.DeepEqual(itemIDs(resp), want) {
		t.Fatalf("ids = %v, want %v", itemIDs(resp), want)
	}
	if resp.Pagination.Records != 5 || resp.Pagination.Pages != 1 || resp.Pagination.CurrentPage != 1 {
		t.Fatalf("pagination = %+v", resp.Pagination)
	}
}

func TestListAllIsDeterministic(t *testing.T) {
	svc := testService(testSnapshot())
	first, err := svc.List(ScopeAll, defaultParams())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	second, err := svc.List(ScopeAll, defaultParams())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical queries returned different results")
	}
}

func TestPaginationReproducesFullList(t *testing.T) {
	snap := testSnapshot()
	svc := testService(snap)

	p := defaultParams()
	p.Limit = 2
	var got []string
	first, err := svc.List(ScopeAll, p)
	if err != nil {
		t.Fatalf("page 0: %v", err)
	}
	records := first.Pagination.Records
	got = append(got, itemIDs(first)...)
	for offset := 1; offset*p.Limit < records; offset++ {
		p.Offset = offset
		page, err := svc.List(ScopeAll, p)
		if err != nil {
			t.Fatalf("page %d: %v", offset, err)
		}
		got = append(got, itemIDs(page)...)
	}
	if !reflect.DeepEqual(got, snap.AllIDs) {
		t.Fatalf("concatenated pages = %v, want %v", got, snap.AllIDs)
	}
}

func TestListZeroLimit(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	p.Limit = 0
	if _, err := svc.List(ScopeAll, p); !errors.Is(err, ErrBadLimit) {
		t.Fatalf("error = %v, want ErrBadLimit", err)
	}
}

func TestListOffsetTooBig(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	p.Offset = 1 // start = 6 >= 5 records
	if _, err := svc.List(ScopeAll, p); !errors.Is(err, ErrOffsetTooBig) {
		t.Fatalf("error = %v, want ErrOffsetTooBig", err)
	}
}

func TestListHugeOffsetDoesNotOverflow(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	p.Offset = math.MaxInt
	resp, err := svc.List(ScopeAll, p)
	if !errors.Is(err, ErrOffsetTooBig) {
		t.Fatalf("List() = %v, %v, want ErrOffsetTooBig", resp, err)
	}
	p.Offset = math.MaxInt / p.Limit
	if _, err := svc.List(ScopeAll, p); !errors.Is(err, ErrOffsetTooBig) {
		t.Fatalf("error = %v, want ErrOffsetTooBig", err)
	}
}

func TestListHugeLimitSinglePage(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	p.Limit = math.MaxInt
	resp, err := svc.List(ScopeAll, p)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(resp.Items) != 5 || resp.Pagination.Pages != 1 {
		t.Fatalf("items = %d, pagination = %+v", len(resp.Items), resp.Pagination)
	}
}

func TestListEmptyResultAnyOffsetIsSuccess(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	stage := uint8(9) // matches nothing
	p.Stage = &stage
	p.Offset = 50
	resp, err := svc.List(ScopeAll, p)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(resp.Items) != 0 || resp.Pagination.Records != 0 || resp.Pagination.Pages != 0 {
		t.Fatalf("expected empty page, got %+v", resp)
	}
}

func TestListByOwner(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	p.Owner = "0xaa"
	resp, err := svc.List(ScopeAll, p)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	// Held tokens and the market-listed one, each exactly once.
	if want := []string{"1", "2", "3"}; !reflect.DeepEqual(itemIDs(resp), want) {
		t.Fatalf("ids = %v, want %v", itemIDs(resp), want)
	}
}

func TestListUnknownOwner(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	p.Owner = "0xnobody"
	if _, err := svc.List(ScopeAll, p); !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("error = %v, want ErrOwnerNotFound", err)
	}
}

func TestListStageFilter(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	stage := uint8(1)
	p.Stage = &stage
	resp, err := svc.List(ScopeAll, p)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"1", "3", "4"}; !reflect.DeepEqual(itemIDs(resp), want) {
		t.Fatalf("ids = %v, want %v", itemIDs(resp), want)
	}
}

func TestListPriceFilterOnMarket(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	p.StartPrice = 5500
	resp, err := svc.List(ScopeMarket, p)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"4"}; !reflect.DeepEqual(itemIDs(resp), want) {
		t.Fatalf("ids = %v, want %v", itemIDs(resp), want)
	}
}

func TestListPriceFilterIgnoredOnAll(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	p.StartPrice = 999999 // would exclude everything if applied
	resp, err := svc.List(ScopeAll, p)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if resp.Pagination.Records != 5 {
		t.Fatalf("records = %d, want 5", resp.Pagination.Records)
	}
}

func TestListSortRarityDescending(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	p.Sort = SortRarity
	resp, err := svc.List(ScopeAll, p)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	// Stable: 3 and 10 tie on rarity 3 and keep id order.
	if want := []string{"1", "3", "10", "4", "2"}; !reflect.DeepEqual(itemIDs(resp), want) {
		t.Fatalf("ids = %v, want %v", itemIDs(resp), want)
	}
}

func TestListSortStrengthDescending(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	p.Sort = SortStrength
	resp, err := svc.List(ScopeAll, p)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"4", "2", "3", "1", "10"}; !reflect.DeepEqual(itemIDs(resp), want) {
		t.Fatalf("ids = %v, want %v", itemIDs(resp), want)
	}
}

func TestListSortPriceAscending(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	p.Sort = SortPrice
	resp, err := svc.List(ScopeMarket, p)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"3", "4"}; !reflect.DeepEqual(itemIDs(resp), want) {
		t.Fatalf("ids = %v, want %v", itemIDs(resp), want)
	}
}

func TestListSortPriceIgnoredOnAll(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	p.Sort = SortPrice
	resp, err := svc.List(ScopeAll, p)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"1", "2", "3", "4", "10"}; !reflect.DeepEqual(itemIDs(resp), want) {
		t.Fatalf("ids = %v, want %v", itemIDs(resp), want)
	}
}

func TestListSortDoesNotMutateSnapshot(t *testing.T) {
	snap := testSnapshot()
	svc := testService(snap)
	p := defaultParams()
	p.Sort = SortStrength
	if _, err := svc.List(ScopeAll, p); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"1", "2", "3", "4", "10"}; !reflect.DeepEqual(snap.AllIDs, want) {
		t.Fatalf("snapshot AllIDs mutated: %v", snap.AllIDs)
	}
}

func TestListMarketScopeExcludesUnlistedTokens(t *testing.T) {
	svc := testService(testSnapshot())
	p := defaultParams()
	p.Owner = "0xbb" // owns token 10, which is not on the market
	if _, err := svc.List(ScopeMarket, p); !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("error = %v, want ErrOwnerNotFound", err)
	}
}

func TestListCorruptPriceIndex(t *testing.T) {
	snap := testSnapshot()
	delete(snap.Market.Price, "4")
	svc := testService(snap)
	p := defaultParams()
	p.StartPrice = 1
	if _, err := svc.List(ScopeMarket, p); !errors.Is(err, ErrIndexCorrupt) {
		t.Fatalf("error = %v, want ErrIndexCorrupt", err)
	}
}

func TestListSnapshotNotReady(t *testing.T) {
	svc := testService(nil)
	if _, err := svc.List(ScopeAll, defaultParams()); !errors.Is(err, ErrSnapshotNotReady) {
		t.Fatalf("error = %v, want ErrSnapshotNotReady", err)
	}
}

func TestGetByID(t *testing.T) {
	svc := testService(testSnapshot())
	resp, err := svc.GetByID("3")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(resp.Items))
	}
	item := resp.Items[0]
	if item.Owner != "0xaa" || item.Rarity != 3 || item.Strength != 200 {
		t.Fatalf("item = %+v", item)
	}
	// Market-listed token carries price and order id actions.
	want := []Action{{Kind: 3, Value: "5000"}, {Kind: 4, Value: "77"}}
	if !reflect.DeepEqual(item.Actions, want) {
		t.Fatalf("actions = %v, want %v", item.Actions, want)
	}
	if resp.Pagination.Records != 1 || resp.Pagination.Pages != 1 {
		t.Fatalf("pagination = %+v", resp.Pagination)
	}
}

func TestGetByIDActionsBattle(t *testing.T) {
	svc := testService(testSnapshot())
	resp, err := svc.GetByID("2")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	want := []Action{{Kind: 1, Value: "100"}}
	if !reflect.DeepEqual(resp.Items[0].Actions, want) {
		t.Fatalf("actions = %v, want %v", resp.Items[0].Actions, want)
	}
}

func TestGetByIDUnknown(t *testing.T) {
	svc := testService(testSnapshot())
	if _, err := svc.GetByID("999"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("error = %v, want ErrTokenNotFound", err)
	}
}

func TestGetByIDName(t *testing.T) {
	svc := testService(testSnapshot())
	resp, err := svc.GetByID("1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if resp.Items[0].Name != "Spike" {
		t.Fatalf("name = %q, want Spike", resp.Items[0].Name)
	}
	resp, err = svc.GetByID("2")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if resp.Items[0].Name != "" {
		t.Fatalf("name = %q, want empty", resp.Items[0].Name)
	}
}
