package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMirror struct {
	displayIDs []string
	payloads   [][]byte
	err        error
}

func (m *fakeMirror) PublishRefresh(_ context.Context, displayID string, payload []byte) error {
	m.displayIDs = append(m.displayIDs, displayID)
	m.payloads = append(m.payloads, payload)
	return m.err
}

func TestNotifyRefresh_AbsentDisplayIsNoop(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	assert.False(t, d.NotifyRefresh(context.Background(), "nobody"))
}

func TestNotifyRefresh_DeliversToRegisteredChannel(t *testing.T) {
	reg := NewRegistry()
	target, other := &fakeChannel{}, &fakeChannel{}
	reg.Register("d1", target)
	reg.Register("d2", other)

	d := NewDispatcher(reg)
	assert.True(t, d.NotifyRefresh(context.Background(), "d1"))

	require.Len(t, target.Sent(), 1)
	assert.Equal(t, Message{Type: TypeRefresh, DisplayID: "d1"}, target.Sent()[0])
	assert.Empty(t, other.Sent())
}

func TestNotifyRefresh_ClosedChannelNotDelivered(t *testing.T) {
	reg := NewRegistry()
	ch := &fakeChannel{}
	ch.Close()
	reg.Register("d1", ch)

	assert.False(t, NewDispatcher(reg).NotifyRefresh(context.Background(), "d1"))
}

func TestNotifyRefresh_MirrorsPublishWithoutLiveChannel(t *testing.T) {
	reg := NewRegistry()
	mirror := &fakeMirror{}
	failing := &fakeMirror{err: errors.New("broker down")}
	d := NewDispatcher(reg, failing, mirror)

	assert.False(t, d.NotifyRefresh(context.Background(), "d1"))
	assert.Zero(t, reg.Len())

	require.Equal(t, []string{"d1"}, mirror.displayIDs)
	var msg Message
	require.NoError(t, json.Unmarshal(mirror.payloads[0], &msg))
	assert.Equal(t, TypeRefresh, msg.Type)
	assert.Equal(t, "d1", msg.DisplayID)
	assert.Equal(t, []string{"d1"}, failing.displayIDs)
}

func TestNotifyRefresh_MirrorsPublishAlongsideLiveChannel(t *testing.T) {
	reg := NewRegistry()
	ch := &fakeChannel{}
	reg.Register("d1", ch)
	mirror := &fakeMirror{}

	assert.True(t, NewDispatcher(reg, mirror).NotifyRefresh(context.Background(), "d1"))
	assert.Len(t, ch.Sent(), 1)
	assert.Equal(t, []string{"d1"}, mirror.displayIDs)
}
