package simledger

// GasSchedule prices the work an emulated call performs.
// Defaults follow the post-Berlin EVM schedule for the operations involved.
type GasSchedule struct {
	TxBase          uint64 // every transaction
	CreateBase      uint64 // contract creation surcharge
	CalldataZero    uint64 // per zero calldata byte
	CalldataNonZero uint64 // per non-zero calldata byte
	StorageRead     uint64 // cold SLOAD
	StorageSet      uint64 // zero -> non-zero SSTORE, cold
	StorageUpdate   uint64 // non-zero -> non-zero SSTORE, cold
	LogBase         uint64
	LogTopic        uint64
	CodeDepositByte uint64
	CodeSize        uint64 // deployed bytecode size of the emulated collection
}

// DefaultGasSchedule returns the schedule used when Config.Gas is zero.
func DefaultGasSchedule() GasSchedule {
	return GasSchedule{
		TxBase:          21000,
		CreateBase:      32000,
		CalldataZero:    4,
		CalldataNonZero: 16,
		StorageRead:     2100,
		StorageSet:      22100,
		StorageUpdate:   5000,
		LogBase:         375,
		LogTopic:        375,
		CodeDepositByte: 200,
		CodeSize:        5120,
	}
}

// meter accumulates gas for one call.
type meter struct {
	gas   GasSchedule
	spent uint64
}

func newMeter(gas GasSchedule) *meter {
	return &meter{gas: gas}
}

func (m *meter) intrinsic(calldata []byte) {
	m.spent += m.gas.TxBase
	for _, b := range calldata {
		if b == 0 {
			m.spent += m.gas.CalldataZero
		} else {
			m.spent += m.gas.CalldataNonZero
		}
	}
}

func (m *meter) create() {
	m.spent += m.gas.CreateBase + m.gas.CodeDepositByte*m.gas.CodeSize
}

func (m *meter) read(n int) {
	m.spent += m.gas.StorageRead * uint64(n)
}

// write prices one SSTORE; fresh is true when the slot was zero.
func (m *meter) write(fresh bool) {
	if fresh {
		m.spent += m.gas.StorageSet
	} else {
		m.spent += m.gas.StorageUpdate
	}
}

func (m *meter) log(topics int) {
	m.spent += m.gas.LogBase + m.gas.LogTopic*uint64(topics)
}

func (m *meter) add(extra uint64) {
	m.spent += extra
}

func (m *meter) used() uint64 {
	return m.spent
}
