package motor_test

import (
	"os"
	"testing"

	"github.com/ZXIS-dev/ZXIS-Run/internal/logger"
	"github.com/ZXIS-dev/ZXIS-Run/internal/motor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(false, false, true)
	os.Exit(m.Run())
}

func newActuator(t *testing.T) (*motor.Actuator, *motor.SimDriver) {
	t.Helper()

	driver := motor.NewSimDriver()
	a, err := motor.NewActuator(driver, motor.Limits{Min: 70, Max: 255})
	require.NoError(t, err)

	return a, driver
}

func TestActuatorRejectsInvalidSetup(t *testing.T) {
	_, err := motor.NewActuator(nil, motor.Limits{Min: 70, Max: 255})
	require.Error(t, err)

	_, err = motor.NewActuator(motor.NewSimDriver(), motor.Limits{Min: 255, Max: 70})
	require.Error(t, err)

	_, err = motor.NewActuator(motor.NewSimDriver(), motor.Limits{Min: -1, Max: 255})
	require.Error(t, err)
}

func TestActuatorClampsEveryCommand(t *testing.T) {
	a, driver := newActuator(t)

	tests := []struct {
		in   int
		want int
	}{
		{0, 70},
		{-500, 70},
		{70, 70},
		{150, 150},
		{255, 255},
		{10000, 255},
	}

	for _, tt := range tests {
		applied, err := a.Apply(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, applied)
		assert.Equal(t, tt.want, driver.Duty())
	}
}

func TestActuatorAssertsForwardBeforeWrite(t *testing.T) {
	a, driver := newActuator(t)

	_, err := a.Apply(120)
	require.NoError(t, err)
	assert.True(t, driver.Forward(), "direction must be asserted before the magnitude write")
}

func TestEmergencyStopIsIdempotent(t *testing.T) {
	a, driver := newActuator(t)

	_, err := a.Apply(200)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, a.EmergencyStop())
		assert.Zero(t, a.Current(), "stop always yields zero command")
		assert.True(t, a.Stopped())
		assert.Zero(t, driver.Duty())
	}
}

func TestApplyRefusedWhileStopped(t *testing.T) {
	a, driver := newActuator(t)

	require.NoError(t, a.EmergencyStop())

	applied, err := a.Apply(150)
	require.Error(t, err)
	assert.Zero(t, applied)
	assert.Zero(t, a.Current())
	assert.Zero(t, driver.Duty())
}

func TestStopForcesInternalStateOnWriteFailure(t *testing.T) {
	a, driver := newActuator(t)

	_, err := a.Apply(200)
	require.NoError(t, err)

	driver.FailStop = true
	err = a.EmergencyStop()
	require.Error(t, err, "a failed physical stop is surfaced")
	assert.Zero(t, a.Current(), "internal state is stopped regardless")
	assert.True(t, a.Stopped())
	assert.True(t, a.StopPending())

	// The hardware recovers; the next attempt clears the debt
	driver.FailStop = false
	_, err = a.Apply(150)
	require.Error(t, err, "still latched stopped")
	assert.False(t, a.StopPending(), "pending stop is retried on the next command")
	assert.Zero(t, driver.Duty())
}

func TestResumeClearsLatch(t *testing.T) {
	a, driver := newActuator(t)

	require.NoError(t, a.EmergencyStop())
	require.NoError(t, a.Resume())
	assert.False(t, a.Stopped())
	assert.Zero(t, a.Current(), "duty stays at zero until the next command")

	applied, err := a.Apply(120)
	require.NoError(t, err)
	assert.Equal(t, 120, applied)
	assert.Equal(t, 120, driver.Duty())
}
