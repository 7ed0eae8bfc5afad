package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/internal/core/models"
)

type fakeSender struct {
	sent []string
}

func (s *fakeSender) Send(body string) error {
	s.sent = append(s.sent, body)
	return nil
}

type fakeHost struct {
	clock  int64
	sender *fakeSender
}

func (h *fakeHost) Clock() int64 { return h.clock }

func (h *fakeHost) Player(models.UID) (*models.Entity, bool) { return nil, false }

func (h *fakeHost) Commands() (CommandSender, bool) {
	if h.sender == nil {
		return nil, false
	}
	return h.sender, true
}

func marketEvent(t *testing.T, params map[string]any) events.Event {
	t.Helper()
	ev, err := events.New(0, events.KindMarketUpdate, params)
	require.NoError(t, err)
	return ev
}

func TestAuctionSequencing(t *testing.T) {
	a := NewAuction()
	host := &fakeHost{}
	a.Init(host)

	var seen []AuctionState
	a.OnChange(func(s AuctionState) { seen = append(seen, s) })

	require.NoError(t, a.ProcessEvent(host, marketEvent(t, map[string]any{"toSell": []any{"speed", true, 2}, "minBid": 10})))
	st := a.State()
	assert.Equal(t, "speed +2", st.Selling)
	assert.Equal(t, 10, st.MinBid)
	assert.Nil(t, st.LastBidder)

	require.NoError(t, a.ProcessEvent(host, marketEvent(t, map[string]any{"bidder": 7, "price": 12})))
	st = a.State()
	require.NotNil(t, st.LastBidder)
	assert.Equal(t, models.UID(7), *st.LastBidder)
	assert.Equal(t, 12, st.MinBid)
	assert.Equal(t, "speed +2", st.Selling)

	require.NoError(t, a.ProcessEvent(host, marketEvent(t, map[string]any{"buyer": 7, "price": 15})))
	st = a.State()
	assert.Empty(t, st.Selling)
	require.NotNil(t, st.LastBidder)
	assert.Equal(t, models.UID(7), *st.LastBidder)
	assert.Equal(t, 15, st.MinBid)

	assert.Len(t, seen, 3)
}

func TestAuctionUpgradeDescriptions(t *testing.T) {
	cases := []struct {
		toSell []any
		want   string
	}{
		{[]any{"speed", true, 2}, "speed +2"},
		{[]any{"speed", 1, 2}, "speed +2"},
		{[]any{"hp", true, -3}, "hp -3"},
		{[]any{"vision", false, 6}, "vision =6"},
		{[]any{"vision", 0, 1.5}, "vision =1.5"},
	}
	for _, c := range cases {
		a := NewAuction()
		require.NoError(t, a.ProcessEvent(nil, marketEvent(t, map[string]any{"toSell": c.toSell, "minBid": 1})))
		assert.Equal(t, c.want, a.State().Selling)
	}
}

func TestAuctionOpenRequiresMinBid(t *testing.T) {
	a := NewAuction()
	err := a.ProcessEvent(nil, marketEvent(t, map[string]any{"toSell": []any{"speed", true, 2}}))
	var missing *events.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "minBid", missing.Field)
	assert.Empty(t, a.State().Selling)
}

func TestAuctionDeadlines(t *testing.T) {
	a := NewAuction()
	require.NoError(t, a.ProcessEvent(nil, marketEvent(t, map[string]any{"toSell": []any{"speed", true, 1}, "minBid": 1, "endT": 5000})))
	st := a.State()
	require.True(t, st.HasDeadline)
	assert.Equal(t, int64(5), st.SecondsLeft(0))
	assert.Equal(t, int64(1), st.SecondsLeft(4001))
	assert.Equal(t, int64(0), st.SecondsLeft(6000))

	require.NoError(t, a.ProcessEvent(nil, marketEvent(t, map[string]any{"buyer": 2, "price": 3})))
	assert.False(t, a.State().HasDeadline)

	require.NoError(t, a.ProcessEvent(nil, marketEvent(t, map[string]any{"price": 3, "nextT": 9000})))
	st = a.State()
	assert.Nil(t, st.LastBidder)
	assert.True(t, st.HasDeadline)
	assert.Equal(t, int64(9000), st.Deadline)
}

func TestAuctionPendingBid(t *testing.T) {
	a := NewAuction()
	require.NoError(t, a.ProcessEvent(nil, marketEvent(t, map[string]any{"toSell": []any{"speed", true, 1}, "minBid": 10})))
	assert.Equal(t, 10, a.MyBid(), "pending bid is lifted to the floor")

	assert.True(t, a.RaiseBid(11))
	assert.False(t, a.RaiseBid(11))
	assert.Equal(t, 11, a.MyBid())

	assert.True(t, a.LowerBid(10))
	assert.False(t, a.LowerBid(10))
	assert.Equal(t, 10, a.MyBid())
}

func TestSubmitBid(t *testing.T) {
	a := NewAuction()
	assert.ErrorIs(t, a.SubmitBid(3), ErrNotRealTime)

	a.Init(&fakeHost{})
	assert.ErrorIs(t, a.SubmitBid(3), ErrNotRealTime)

	sender := &fakeSender{}
	a.Init(&fakeHost{sender: sender})
	require.NoError(t, a.SubmitBid(42))
	assert.Equal(t, []string{"market.bid 42"}, sender.sent)
}

func TestLookup(t *testing.T) {
	r, err := Lookup("auction")
	require.NoError(t, err)
	assert.Equal(t, "Auction", r.Name())

	r2, err := Lookup("Auction")
	require.NoError(t, err)
	assert.NotSame(t, r, r2, "each lookup returns a fresh rule")

	r, err = Lookup("none")
	require.NoError(t, err)
	assert.Equal(t, "None", r.Name())
	assert.NoError(t, r.ProcessEvent(nil, events.Event{}))

	_, err = Lookup("dutch")
	assert.ErrorIs(t, err, ErrUnknownRule)
}
