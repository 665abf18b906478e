package ludconfigs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/reusee/lud/cmds"
	"github.com/reusee/lud/configs"
	"github.com/reusee/lud/vars"
)

// StateDir holds mutable local state, notably the short-term window
// database.
type StateDir string

var stateDirFlag = cmds.Var[string]("-state-dir")

func (Module) StateDir(
	loader configs.Loader,
) StateDir {
	dir := vars.FirstNonZero(
		*stateDirFlag,
		configs.First[string](loader, "state_dir"),
	)
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			panic(fmt.Errorf("no user config dir: %w", err))
		}
		dir = filepath.Join(base, "lud")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		panic(fmt.Errorf("state dir: %w", err))
	}
	return StateDir(dir)
}
