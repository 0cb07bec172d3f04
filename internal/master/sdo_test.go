// internal/master/sdo_test.go
package master

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRequest(t *testing.T) (*SDORequest, *fakeSDOHandle, *fakeSlave) {
	t.Helper()

	slave := newFakeSlave(1)
	cfg := &fakeSlaveConfig{}
	r, err := newSDORequest(cfg, slave, 0x8010, 1, 2)
	require.NoError(t, err)

	return r, r.handle.(*fakeSDOHandle), slave
}

func TestSDORequestStartsUnused(t *testing.T) {
	r, _, _ := newTestRequest(t)

	require.True(t, r.IsUnused())
	require.False(t, r.IsComplete())
	require.Equal(t, SDOUnused, r.State())
}

func TestSDORequestBusyOnlyViaInitiateRead(t *testing.T) {
	r, h, slave := newTestRequest(t)

	// Queries never transition.
	r.IsComplete()
	r.IsUnused()
	r.ProcessData()
	require.Equal(t, SDOUnused, r.State())
	require.Empty(t, slave.sdoValues)

	r.InitiateRead()
	require.Equal(t, SDOBusy, r.State())
	require.Equal(t, 1, h.reads)
}

func TestSDORequestDeliversExactlyOnce(t *testing.T) {
	r, h, slave := newTestRequest(t)

	r.InitiateRead()

	// No delivery while the transfer is in flight.
	r.ProcessData()
	require.Empty(t, slave.sdoValues)

	h.complete([]byte{0x88, 0x13}) // 5000, little-endian
	require.True(t, r.IsComplete())

	r.ProcessData()
	require.Equal(t, uint16(5000), slave.sdoValues[0x8010])

	// Same completion must not be delivered twice.
	slave.sdoValues = map[uint16]uint16{}
	r.ProcessData()
	require.Empty(t, slave.sdoValues)
}

func TestSDORequestRedeliversAfterReissue(t *testing.T) {
	r, h, slave := newTestRequest(t)

	r.InitiateRead()
	h.complete([]byte{0x01, 0x00})
	r.ProcessData()
	require.Equal(t, uint16(1), slave.sdoValues[0x8010])

	r.InitiateRead()
	require.Equal(t, SDOBusy, r.State())

	h.complete([]byte{0x02, 0x00})
	r.ProcessData()
	require.Equal(t, uint16(2), slave.sdoValues[0x8010])
}

func TestSDORequestNoDeliveryOnError(t *testing.T) {
	r, h, slave := newTestRequest(t)

	r.InitiateRead()
	h.state = SDOError

	r.ProcessData()
	require.Empty(t, slave.sdoValues)
	require.False(t, r.IsComplete())
}

func TestAddSDORequestJoinsCollection(t *testing.T) {
	m, _, _ := connectedMaster(t)

	r, err := m.AddSDORequest(1, 0x8010, 1, 2)
	require.NoError(t, err)
	require.Len(t, m.requests, 1)
	require.Equal(t, uint16(0x8010), r.Index())
	require.Equal(t, uint8(1), r.Subindex())
}

func TestAddSDORequestUnknownSlave(t *testing.T) {
	m, _, _ := connectedMaster(t)

	_, err := m.AddSDORequest(9, 0x8010, 1, 2)
	var abort *SDOAbortError
	require.ErrorAs(t, err, &abort)
	require.Equal(t, AbortUnknownSlave, abort.AbortCode())
}
