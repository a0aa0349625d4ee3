package simledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeter_Intrinsic(t *testing.T) {
	m := newMeter(DefaultGasSchedule())
	m.intrinsic([]byte{0x00, 0x01, 0x00, 0xff})
	assert.Equal(t, uint64(21000+4+16+4+16), m.used())
}

func TestMeter_Storage(t *testing.T) {
	gas := DefaultGasSchedule()
	m := newMeter(gas)

	m.read(2)
	m.write(true)
	m.write(false)
	m.log(4)

	want := 2*gas.StorageRead + gas.StorageSet + gas.StorageUpdate + gas.LogBase + 4*gas.LogTopic
	assert.Equal(t, want, m.used())
}

func TestMeter_Create(t *testing.T) {
	gas := DefaultGasSchedule()
	m := newMeter(gas)
	m.create()
	assert.Equal(t, gas.CreateBase+gas.CodeDepositByte*gas.CodeSize, m.used())
}

func TestNew_ZeroGasMeansDefault(t *testing.T) {
	rt, err := New(Config{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer rt.Close()
	assert.Equal(t, DefaultGasSchedule(), rt.gas)
}
