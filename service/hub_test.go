package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trace struct{ calls []string }

func (tr *trace) svc(name string, deps []string, startErr, stopErr error) *Func {
	return &Func{
		ID:       name,
		Requires: deps,
		OnStart: func(context.Context) error {
			tr.calls = append(tr.calls, "start "+name)
			return startErr
		},
		OnStop: func() error {
			tr.calls = append(tr.calls, "stop "+name)
			return stopErr
		},
	}
}

func TestHub_DependencyOrder(t *testing.T) {
	tr := &trace{}
	h := NewHub()
	require.NoError(t, h.Register(tr.svc("api", []string{"store"}, nil, nil)))
	require.NoError(t, h.Register(tr.svc("audio", nil, nil, nil)))
	require.NoError(t, h.Register(tr.svc("store", nil, nil, nil)))

	require.NoError(t, h.StartAll(context.Background()))
	assert.Equal(t, []string{"audio", "store", "api"}, h.Started())

	require.NoError(t, h.StopAll())
	assert.Equal(t, []string{
		"start audio", "start store", "start api",
		"stop api", "stop store", "stop audio",
	}, tr.calls)
	assert.Empty(t, h.Started())
}

func TestHub_RollbackOnStartFailure(t *testing.T) {
	tr := &trace{}
	boom := errors.New("port in use")
	h := NewHub()
	require.NoError(t, h.Register(tr.svc("store", nil, nil, nil)))
	require.NoError(t, h.Register(tr.svc("api", []string{"store"}, boom, nil)))

	err := h.StartAll(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start store", "start api", "stop store"}, tr.calls)
	assert.Empty(t, h.Started())
}

func TestHub_RollbackErrorJoined(t *testing.T) {
	tr := &trace{}
	startErr, stopErr := errors.New("bind failed"), errors.New("close failed")
	h := NewHub()
	require.NoError(t, h.Register(tr.svc("store", nil, nil, stopErr)))
	require.NoError(t, h.Register(tr.svc("api", []string{"store"}, startErr, nil)))

	err := h.StartAll(context.Background())
	assert.ErrorIs(t, err, startErr)
	assert.ErrorIs(t, err, stopErr)
	assert.Equal(t, []string{"start store", "start api", "stop store"}, tr.calls)
}

func TestHub_StopAllJoinsErrors(t *testing.T) {
	tr := &trace{}
	e1, e2 := errors.New("e1"), errors.New("e2")
	h := NewHub()
	require.NoError(t, h.Register(tr.svc("a", nil, nil, e1)))
	require.NoError(t, h.Register(tr.svc("b", nil, nil, e2)))
	require.NoError(t, h.StartAll(context.Background()))

	err := h.StopAll()
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
}

func TestHub_RegistrationErrors(t *testing.T) {
	h := NewHub()
	require.NoError(t, h.Register(&Func{ID: "a"}))
	assert.ErrorIs(t, h.Register(&Func{ID: "a"}), ErrDuplicate)

	missing := NewHub()
	require.NoError(t, missing.Register(&Func{ID: "api", Requires: []string{"store"}}))
	assert.ErrorIs(t, missing.StartAll(context.Background()), ErrDependency)

	cycle := NewHub()
	require.NoError(t, cycle.Register(&Func{ID: "a", Requires: []string{"b"}}))
	require.NoError(t, cycle.Register(&Func{ID: "b", Requires: []string{"a"}}))
	assert.ErrorIs(t, cycle.StartAll(context.Background()), ErrDependency)

	_, ok := h.Get("a")
	assert.True(t, ok)
}
