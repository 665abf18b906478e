package ludconfigs

import (
	"github.com/reusee/lud/cmds"
	"github.com/reusee/lud/configs"
	"github.com/reusee/lud/vars"
)

// WindowSize is the number of recent turns kept verbatim in the
// short-term window.
type WindowSize int

var windowSizeFlag = cmds.Var[int]("-window-size")

func (Module) WindowSize(
	loader configs.Loader,
) WindowSize {
	n := vars.FirstNonZero(
		*windowSizeFlag,
		configs.First[int](loader, "window_size"),
	)
	if n <= 0 {
		n = 8
	}
	return WindowSize(n)
}

// PersistThreshold is the window length that triggers eviction of the
// oldest turns into the long-term store.
type PersistThreshold int

var persistThresholdFlag = cmds.Var[int]("-persist-threshold")

func (Module) PersistThreshold(
	loader configs.Loader,
) PersistThreshold {
	n := vars.FirstNonZero(
		*persistThresholdFlag,
		configs.First[int](loader, "persist_threshold"),
	)
	if n <= 0 {
		n = 8
	}
	return PersistThreshold(n)
}

// MaxContextBytes bounds the total content size of the window handed to
// the model.
type MaxContextBytes int

var maxContextBytesFlag = cmds.Var[int]("-max-context-bytes")

func (Module) MaxContextBytes(
	loader configs.Loader,
) MaxContextBytes {
	n := vars.FirstNonZero(
		*maxContextBytesFlag,
		configs.First[int](loader, "max_context_bytes"),
	)
	if n <= 0 {
		n = 32 * 1024
	}
	return MaxContextBytes(n)
}
