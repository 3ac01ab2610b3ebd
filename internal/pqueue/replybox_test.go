package pqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyBox_ExactlyOneReply(t *testing.T) {
	rb := NewReplyBox[string]()
	ch := rb.Register("patient-1")

	ok := rb.Send("patient-1", "triaged")
	require.True(t, ok)

	select {
	case v := <-ch:
		assert.Equal(t, "triaged", v)
	default:
		t.Fatal("reply was not delivered")
	}

	// A second Send for the same id, after the mailbox was consumed and
	// removed, must not be delivered anywhere (invariant I6).
	ok = rb.Send("patient-1", "duplicate")
	assert.False(t, ok)
}

func TestReplyBox_SendWithoutRegisterIsNoop(t *testing.T) {
	rb := NewReplyBox[int]()
	ok := rb.Send("unknown", 1)
	assert.False(t, ok)
}

func TestReplyBox_Cancel(t *testing.T) {
	rb := NewReplyBox[int]()
	rb.Register("patient-1")
	rb.Cancel("patient-1")

	ok := rb.Send("patient-1", 1)
	assert.False(t, ok)
}
