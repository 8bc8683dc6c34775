package handicraft

// Role identifies the three kinds of agent taking part in a run
type Role string

const (
	RoleEntrepreneur Role = "entrepreneur"
	RoleCustomer     Role = "customer"
	RoleCraftsman    Role = "craftsman"
)

// EntrepreneurState is the life-cycle state of the shop owner
type EntrepreneurState int

const (
	EntrepreneurOpening EntrepreneurState = iota
	EntrepreneurWaitingForTask
	EntrepreneurAttendingCustomer
	EntrepreneurClosing
	EntrepreneurCollectingBatch
	EntrepreneurDeliveringMaterials
)

// Tag returns the 4-character code used in state log lines
func (s EntrepreneurState) Tag() string {
	switch s {
	case EntrepreneurOpening:
		return "OPTS"
	case EntrepreneurWaitingForTask:
		return "WFNT"
	case EntrepreneurAttendingCustomer:
		return "ATAC"
	case EntrepreneurClosing:
		return "CLTS"
	case EntrepreneurCollectingBatch:
		return "CBOP"
	case EntrepreneurDeliveringMaterials:
		return "DLPM"
	default:
		return "****"
	}
}

// CustomerState is the life-cycle state of a customer
type CustomerState int

const (
	CustomerIdle CustomerState = iota
	CustomerCheckingDoor
	CustomerBrowsing
	CustomerBuying
)

func (s CustomerState) Tag() string {
	switch s {
	case CustomerIdle:
		return "CODC"
	case CustomerCheckingDoor:
		return "CSDO"
	case CustomerBrowsing:
		return "AOID"
	case CustomerBuying:
		return "BYSG"
	default:
		return "****"
	}
}

// CraftsmanState is the life-cycle state of a craftsman
type CraftsmanState int

const (
	CraftsmanFetching CraftsmanState = iota
	CraftsmanProducing
	CraftsmanStoring
	CraftsmanContacting
)

func (s CraftsmanState) Tag() string {
	switch s {
	case CraftsmanFetching:
		return "FTPM"
	case CraftsmanProducing:
		return "PANP"
	case CraftsmanStoring:
		return "SIFT"
	case CraftsmanContacting:
		return "CTTE"
	default:
		return "****"
	}
}

// ShopStatus tells customers whether they may come in
type ShopStatus int

const (
	ShopOpen ShopStatus = iota
	ShopDoorClosed
	ShopClosed
)

func (s ShopStatus) Tag() string {
	switch s {
	case ShopOpen:
		return "SPOP"
	case ShopDoorClosed:
		return "SDCL"
	case ShopClosed:
		return "SPCL"
	default:
		return "****"
	}
}

// Event is what the entrepreneur decided to do next after waking up
type Event int

const (
	EventServe Event = iota
	EventGoShopping
	EventCollectBatch
	EventStop
)

func (e Event) String() string {
	switch e {
	case EventServe:
		return "serve"
	case EventGoShopping:
		return "go_shopping"
	case EventCollectBatch:
		return "collect_batch"
	case EventStop:
		return "stop"
	default:
		return "unknown"
	}
}
