package persistence

import (
	"time"
)

// RunModel represents the runs table
type RunModel struct {
	ID                string     `gorm:"column:id;primaryKey"`
	Seed              int64      `gorm:"column:seed;not null"` // uint64 bit pattern
	Customers         int        `gorm:"column:customers;not null"`
	Craftsmen         int        `gorm:"column:craftsmen;not null"`
	StoreroomCapacity int        `gorm:"column:storeroom_capacity;not null"`
	LowWaterMark      int        `gorm:"column:low_water_mark;not null"`
	PieceSize         int        `gorm:"column:piece_size;not null"`
	Schedule          string     `gorm:"column:schedule;type:text;not null"` // JSON array as text
	Status            string     `gorm:"column:status;not null;default:'RUNNING'"`
	StartedAt         time.Time  `gorm:"column:started_at;not null"`
	FinishedAt        *time.Time `gorm:"column:finished_at"`
	Error             string     `gorm:"column:error;type:text"`
}

func (RunModel) TableName() string {
	return "runs"
}

// SnapshotModel represents the snapshots table. The headline counters are
// columns so runs can be queried; the full state is kept as JSON.
type SnapshotModel struct {
	ID                  int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID               string    `gorm:"column:run_id;not null;index:idx_snapshots_run_seq,priority:1"`
	Run                 *RunModel `gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Seq                 uint64    `gorm:"column:seq;not null;index:idx_snapshots_run_seq,priority:2"`
	Entrepreneur        string    `gorm:"column:entrepreneur;not null"`
	ShopStatus          string    `gorm:"column:shop_status;not null"`
	CustomersInside     int       `gorm:"column:customers_inside;not null"`
	ProductsOnDisplay   int       `gorm:"column:products_on_display;not null"`
	ProductsInStoreroom int       `gorm:"column:products_in_storeroom;not null"`
	MaterialsOnHand     int       `gorm:"column:materials_on_hand;not null"`
	DeliveriesMade      int       `gorm:"column:deliveries_made;not null"`
	PiecesProducedTotal int       `gorm:"column:pieces_produced_total;not null"`
	PiecesSold          int       `gorm:"column:pieces_sold;not null"`
	QueueLength         int       `gorm:"column:queue_length;not null"`
	State               string    `gorm:"column:state;type:text;not null"`
}

func (SnapshotModel) TableName() string {
	return "snapshots"
}

// AgentRunModel represents the agent_runs table
type AgentRunModel struct {
	RunID      string     `gorm:"column:run_id;primaryKey"`
	Role       string     `gorm:"column:role;primaryKey"`
	AgentIndex int        `gorm:"column:agent_index;primaryKey"`
	Run        *RunModel  `gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Status     string     `gorm:"column:status;not null"`
	ExitCode   int        `gorm:"column:exit_code;not null"`
	StartedAt  *time.Time `gorm:"column:started_at"`
	StoppedAt  *time.Time `gorm:"column:stopped_at"`
	Error      string     `gorm:"column:error;type:text"`
}

func (AgentRunModel) TableName() string {
	return "agent_runs"
}

// AgentLogModel represents the agent_logs table
type AgentLogModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string    `gorm:"column:run_id;not null;index"`
	Agent     string    `gorm:"column:agent;not null"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"`
}

func (AgentLogModel) TableName() string {
	return "agent_logs"
}
