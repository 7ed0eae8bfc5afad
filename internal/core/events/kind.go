package events

// Kind is the closed set of state-change events the client understands.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindMapCreate
	KindEntityCreate
	KindEntityRemove
	KindEntityUpdate
	KindPlayerUpdate
	KindMarketUpdate
	KindGameEnd
)

// KindInit is the wire name of the bootstrap record. It is not a Kind: the
// record is consumed before the engine exists and never reaches a timeline.
const KindInit = "Init"

var kindNames = [...]string{
	KindUnknown:      "Unknown",
	KindMapCreate:    "MapCreate",
	KindEntityCreate: "EntityCreate",
	KindEntityRemove: "EntityRemove",
	KindEntityUpdate: "EntityUpdate",
	KindPlayerUpdate: "PlayerUpdate",
	KindMarketUpdate: "MarketUpdate",
	KindGameEnd:      "GameEnd",
}

// wireNames maps every accepted wire spelling, including the short names
// older servers emit, to its Kind.
var wireNames = map[string]Kind{
	"MapCreate":    KindMapCreate,
	"MapCrt":       KindMapCreate,
	"EntityCreate": KindEntityCreate,
	"EleCrt":       KindEntityCreate,
	"EntityRemove": KindEntityRemove,
	"EleRmv":       KindEntityRemove,
	"EntityUpdate": KindEntityUpdate,
	"EleUpd":       KindEntityUpdate,
	"PlayerUpdate": KindPlayerUpdate,
	"PlrUpd":       KindPlayerUpdate,
	"MarketUpdate": KindMarketUpdate,
	"MktUpd":       KindMarketUpdate,
	"GameEnd":      KindGameEnd,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// ParseKind resolves a wire type string. Unknown strings yield KindUnknown
// and false.
func ParseKind(s string) (Kind, bool) {
	k, ok := wireNames[s]
	return k, ok
}
