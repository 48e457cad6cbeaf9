package actix

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func Test_SystemExitStopsMainAndChildArbiters(t *testing.T) {
	defer goleak.VerifyNone(t)

	sys := NewSystem("test")
	child := sys.NewArbiter("worker")

	mainAddr := Spawn[pingActor](sys.Arbiter(), DefaultMailboxCapacity, newPingActor)
	childAddr := Spawn[pingActor](child, DefaultMailboxCapacity, newPingActor)

	awaitRequest(t, Send[Local, pingActor](mainAddr, pingMsg{}))
	awaitRequest(t, Send[Local, pingActor](childAddr, pingMsg{}))

	sys.SystemExit(7)

	select {
	case <-sys.Done():
	case <-time.After(time.Second):
		t.Fatal("Done never closed after SystemExit")
	}

	require.Equal(t, 7, sys.ExitCode())
	require.False(t, mainAddr.Connected(), "main Address stayed Connected after SystemExit")
	require.False(t, childAddr.Connected(), "child Address stayed Connected after SystemExit")
}

func Test_SystemExitOnlyActsOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	sys := NewSystem("test")
	sys.SystemExit(1)
	sys.SystemExit(2)

	if sys.ExitCode() != 1 {
		t.Errorf("ExitCode: got %d, want 1 (first call wins)", sys.ExitCode())
	}
}
