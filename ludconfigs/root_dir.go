package ludconfigs

import (
	"os"
	"path/filepath"

	"github.com/reusee/lud/cmds"
	"github.com/reusee/lud/configs"
	"github.com/reusee/lud/vars"
)

// RootDir is the directory all local tool operations are confined to.
type RootDir string

var rootDirFlag = cmds.Var[string]("-root")

func (Module) RootDir(
	loader configs.Loader,
) RootDir {
	dir := vars.FirstNonZero(
		*rootDirFlag,
		configs.First[string](loader, "root_dir"),
		os.Getenv("LUD_ROOT"),
	)
	if dir == "" {
		return ""
	}
	if expanded, err := filepath.Abs(dir); err == nil {
		dir = expanded
	}
	return RootDir(dir)
}
