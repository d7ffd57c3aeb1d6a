package printdoc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/carteira"
)

func TestMachineAutoPrint(t *testing.T) {
	m := Machine(carteira.ModePrint, false)
	assert.Equal(t, EventPrint, m.Auto)

	states, err := m.Run(EventLoad, EventResourcesReady, EventDone)
	require.NoError(t, err)
	assert.Equal(t, []State{StateIdle, StateWaiting, StateReady, StatePrinting, StateClosed}, states)
}

func TestMachineDownloadFallsBackToPrint(t *testing.T) {
	m := Machine(carteira.ModeDownload, false)
	assert.Equal(t, EventDownload, m.Auto)

	states, err := m.Run(EventLoad, EventResourcesReady, EventExportUnavailable, EventDone)
	require.NoError(t, err)
	assert.Equal(t, []State{
		StateIdle, StateWaiting, StateReady, StateDownloading, StatePrinting, StateClosed,
	}, states)

	states, err = m.Run(EventLoad, EventResourcesReady, EventExportFailed, EventDone)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, states[len(states)-1])
	assert.Contains(t, states, StatePrinting)
}

func TestMachineDownloadSucceeds(t *testing.T) {
	m := Machine(carteira.ModeDownload, false)
	states, err := m.Run(EventLoad, EventResourcesReady, EventDone)
	require.NoError(t, err)
	assert.NotContains(t, states, StatePrinting)
	assert.Equal(t, StateClosed, states[len(states)-1])
}

func TestMachineToolbarReturnsToReady(t *testing.T) {
	m := Machine(carteira.ModeDownload, true)
	assert.Empty(t, m.Auto, "toolbar suppresses the automatic trigger")

	states, err := m.Run(EventLoad, EventResourcesReady)
	require.NoError(t, err)
	assert.Equal(t, StateReady, states[len(states)-1])

	states, err = m.Run(EventLoad, EventResourcesReady, EventPrint, EventDone, EventDownload, EventDone, EventClose)
	require.NoError(t, err)
	assert.Equal(t, []State{
		StateIdle, StateWaiting, StateReady,
		StatePrinting, StateReady,
		StateDownloading, StateReady,
		StateClosed,
	}, states)
}

func TestMachineRejectsUnknownEvents(t *testing.T) {
	m := Machine(carteira.ModePrint, false)

	next, err := m.Next(StateIdle, EventPrint)
	require.Error(t, err)
	assert.Equal(t, StateIdle, next)

	_, err = m.Next(StateClosed, EventLoad)
	require.Error(t, err)

	_, err = m.Next(StateWaiting, EventClose)
	assert.Error(t, err, "close while waiting needs the toolbar")

	tb := Machine(carteira.ModePrint, true)
	next, err = tb.Next(StateWaiting, EventClose)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, next)
}

func TestMachineDeterministic(t *testing.T) {
	for _, mode := range []carteira.Mode{carteira.ModePrint, carteira.ModeDownload} {
		for _, toolbar := range []bool{false, true} {
			m := Machine(mode, toolbar)
			edges := map[[2]string]State{}
			for _, tr := range m.Transitions {
				key := [2]string{string(tr.From), string(tr.Event)}
				_, dup := edges[key]
				assert.False(t, dup, "duplicate edge %v for mode=%s toolbar=%v", key, mode, toolbar)
				edges[key] = tr.To
			}
			for _, tr := range m.Transitions {
				assert.NotEqual(t, StateClosed, tr.From, "closed is terminal")
			}
		}
	}
}

func TestMachineJSON(t *testing.T) {
	data, err := json.Marshal(Machine(carteira.ModeDownload, false))
	require.NoError(t, err)

	var decoded struct {
		Initial     string `json:"initial"`
		Auto        string `json:"auto"`
		Transitions []struct {
			From, Event, To string
		} `json:"transitions"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "idle", decoded.Initial)
	assert.Equal(t, "download", decoded.Auto)
	assert.Contains(t, decoded.Transitions, struct{ From, Event, To string }{"downloading", "exportUnavailable", "printing"})
}
