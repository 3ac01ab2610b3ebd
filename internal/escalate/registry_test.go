package escalate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_TargetedDelivery(t *testing.T) {
	r := NewRegistry()
	ch := r.Register("specialist-1")
	other := r.Register("specialist-2")

	require.NoError(t, r.Escalate(context.Background(), Escalation{Kind: KindInterrupt, Target: "specialist-1", Reason: "ward"}))

	select {
	case e := <-ch:
		assert.Equal(t, KindInterrupt, e.Kind)
	case <-time.After(time.Second):
		t.Fatal("targeted worker did not receive escalation")
	}

	select {
	case <-other:
		t.Fatal("non-targeted worker must not receive escalation")
	default:
	}
}

func TestRegistry_BroadcastDeliversToAll(t *testing.T) {
	r := NewRegistry()
	a := r.Register("a")
	b := r.Register("b")

	require.NoError(t, r.Escalate(context.Background(), Escalation{Kind: KindEvacuate}))

	for _, ch := range []<-chan Escalation{a, b} {
		select {
		case e := <-ch:
			assert.Equal(t, KindEvacuate, e.Kind)
		case <-time.After(time.Second):
			t.Fatal("broadcast did not reach every registered worker")
		}
	}
}

func TestRegistry_UnknownTargetErrors(t *testing.T) {
	r := NewRegistry()
	err := r.Escalate(context.Background(), Escalation{Kind: KindTerminate, Target: "ghost"})
	require.Error(t, err)
}

func TestRegistry_PendingSignalCoalesces(t *testing.T) {
	r := NewRegistry()
	ch := r.Register("specialist-1")

	require.NoError(t, r.Escalate(context.Background(), Escalation{Kind: KindInterrupt, Target: "specialist-1", Reason: "first"}))
	require.NoError(t, r.Escalate(context.Background(), Escalation{Kind: KindInterrupt, Target: "specialist-1", Reason: "second"}))

	select {
	case e := <-ch:
		assert.Equal(t, "second", e.Reason, "a coalesced pending signal keeps only the latest reason")
	case <-time.After(time.Second):
		t.Fatal("expected a coalesced escalation")
	}

	select {
	case <-ch:
		t.Fatal("only one escalation should be pending after coalescing")
	default:
	}
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	r.Register("a")
	r.Unregister("a")

	err := r.Escalate(context.Background(), Escalation{Kind: KindTerminate, Target: "a"})
	assert.Error(t, err)
}
