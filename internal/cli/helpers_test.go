package cli

import (
	"testing"

	"github.com/MrEthical07/dojoauth/authclient/directory"
	"github.com/MrEthical07/dojoauth/password"
)

func newTestDirectory(t *testing.T) *directory.Directory {
	t.Helper()
	cfg := password.DefaultConfig()
	cfg.Memory = 8 * 1024
	cfg.Time = 1
	cfg.Parallelism = 1
	hasher, err := password.NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	dir, err := directory.New(directory.WithHasher(hasher))
	if err != nil {
		t.Fatalf("directory.New: %v", err)
	}
	return dir
}
