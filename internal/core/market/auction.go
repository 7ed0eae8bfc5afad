package market

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/internal/core/models"
)

// AuctionState is what the auction panel shows.
type AuctionState struct {
	// Selling describes the item on sale; empty when no auction is open.
	Selling    string
	MinBid     int
	LastBidder *models.UID
	// Deadline is the local-clock time the open auction closes, or the
	// next auction opens when Selling is empty. HasDeadline is false when
	// the server gave no time.
	Deadline    int64
	HasDeadline bool
}

// SecondsLeft is the whole seconds remaining until Deadline, rounded up and
// never negative.
func (s AuctionState) SecondsLeft(now int64) int64 {
	if !s.HasDeadline || s.Deadline <= now {
		return 0
	}
	return (s.Deadline - now + 999) / 1000
}

// Auction sells random upgrades to the highest bidder. Each MarketUpdate
// is one of three shapes: a toSell field opens an auction, a bidder field
// records a bid, anything else closes the auction.
type Auction struct {
	state    AuctionState
	myBid    int
	host     Host
	onChange func(AuctionState)
}

var _ Rule = (*Auction)(nil)

func NewAuction() *Auction {
	return &Auction{}
}

func (a *Auction) Name() string { return "Auction" }

func (a *Auction) Init(host Host) {
	a.host = host
}

// OnChange registers the subscriber notified after every state change.
func (a *Auction) OnChange(fn func(AuctionState)) {
	a.onChange = fn
}

func (a *Auction) State() AuctionState {
	return a.state
}

type auctionUpdate struct {
	ToSell []json.RawMessage `json:"toSell"`
	MinBid *float64          `json:"minBid"`
	Bidder *models.UID       `json:"bidder"`
	Buyer  *models.UID       `json:"buyer"`
	Price  *float64          `json:"price"`
	EndT   *float64          `json:"endT"`
	NextT  *float64          `json:"nextT"`
}

func (a *Auction) ProcessEvent(_ Host, ev events.Event) error {
	var u auctionUpdate
	if err := ev.Bind(&u); err != nil {
		return fmt.Errorf("decode auction update: %w", err)
	}

	switch {
	case u.ToSell != nil:
		selling, err := describeUpgrade(u.ToSell)
		if err != nil {
			return err
		}
		if u.MinBid == nil {
			return &events.MissingFieldError{Kind: ev.Kind, Field: "minBid"}
		}
		a.state.Selling = selling
		a.setMinBid(int(*u.MinBid))
		a.state.LastBidder = nil
		a.setDeadline(u.EndT)
	case u.Bidder != nil:
		bidder := *u.Bidder
		a.state.LastBidder = &bidder
		if u.Price != nil {
			a.setMinBid(int(*u.Price))
		}
	default:
		a.state.Selling = ""
		a.state.LastBidder = u.Buyer
		if u.Price != nil {
			a.setMinBid(int(*u.Price))
		}
		a.setDeadline(u.NextT)
	}

	a.notify()
	return nil
}

func (a *Auction) setMinBid(v int) {
	a.state.MinBid = v
	if a.myBid < v {
		a.myBid = v
	}
}

func (a *Auction) setDeadline(t *float64) {
	if t == nil {
		a.state.Deadline, a.state.HasDeadline = 0, false
		return
	}
	a.state.Deadline, a.state.HasDeadline = int64(*t), true
}

func (a *Auction) notify() {
	if a.onChange != nil {
		a.onChange(a.state)
	}
}

// describeUpgrade renders [name, isDelta, amount] as "name +2" for a delta
// or "name =2" for an absolute value.
func describeUpgrade(raw []json.RawMessage) (string, error) {
	if len(raw) < 3 {
		return "", fmt.Errorf("toSell needs 3 elements, got %d", len(raw))
	}
	var name string
	if err := json.Unmarshal(raw[0], &name); err != nil {
		return "", fmt.Errorf("toSell name: %w", err)
	}
	var amount float64
	if err := json.Unmarshal(raw[2], &amount); err != nil {
		return "", fmt.Errorf("toSell amount: %w", err)
	}
	amountStr := strconv.FormatFloat(amount, 'f', -1, 64)

	if isTruthy(raw[1]) {
		sign := ""
		if amount > 0 {
			sign = "+"
		}
		return name + " " + sign + amountStr, nil
	}
	return name + " =" + amountStr, nil
}

func isTruthy(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n == 1
	}
	return false
}

// MyBid is the pending bid the local player is composing.
func (a *Auction) MyBid() int {
	return a.myBid
}

// RaiseBid increases the pending bid by one while it stays within money.
func (a *Auction) RaiseBid(money float64) bool {
	if float64(a.myBid) < money {
		a.myBid++
		return true
	}
	return false
}

// LowerBid decreases the pending bid by one while it stays above floor.
func (a *Auction) LowerBid(floor int) bool {
	if a.myBid > floor {
		a.myBid--
		return true
	}
	return false
}

// BidCommand is the outbound command for amount.
func BidCommand(amount int) string {
	return "market.bid " + strconv.Itoa(amount)
}

// SubmitBid sends market.bid through the host's outbound path. It fails
// with ErrNotRealTime when the session cannot send commands.
func (a *Auction) SubmitBid(amount int) error {
	if a.host == nil {
		return ErrNotRealTime
	}
	sender, ok := a.host.Commands()
	if !ok {
		return ErrNotRealTime
	}
	return sender.Send(BidCommand(amount))
}
