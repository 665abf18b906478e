package memories

import (
	"path/filepath"

	"github.com/reusee/dscope"
	"github.com/reusee/lud/logs"
	"github.com/reusee/lud/ludconfigs"
)

type Module struct {
	dscope.Module
	Configs ludconfigs.Module
	Logs    logs.Module
}

func (Module) Archive(
	rootDir ludconfigs.RootDir,
	stateDir ludconfigs.StateDir,
) *Archive {
	// prefer the sandbox tree so the conversation log stays reachable
	// by the file tools, fall back to local state when running against
	// a remote root
	if rootDir != "" {
		return NewArchive(filepath.Join(string(rootDir), ".lud", "conversations"))
	}
	return NewArchive(filepath.Join(string(stateDir), "conversations"))
}

func (Module) Store(
	stateDir ludconfigs.StateDir,
	archive *Archive,
	windowSize ludconfigs.WindowSize,
	persistThreshold ludconfigs.PersistThreshold,
	maxContextBytes ludconfigs.MaxContextBytes,
	logger logs.Logger,
) *Store {
	dbPath := filepath.Join(string(stateDir), "memory.db")
	store, err := OpenStore(
		dbPath,
		archive,
		int(windowSize),
		int(persistThreshold),
		int(maxContextBytes),
	)
	if err != nil {
		panic(err)
	}
	logger.Info("memory store",
		"db", dbPath,
		"archive", archive.Dir(),
	)
	return store
}
