package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/rzbill/siphon/internal/config"
	"github.com/rzbill/siphon/internal/model"
)

func TestOpenHealth(t *testing.T) {
	rt, err := Open(Options{Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if rt.Uptime() < 0 {
		t.Fatalf("uptime went backwards")
	}
}

func TestStoreWiredToConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.BufferSize = 2
	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 3; i++ {
		rt.Store().Append(model.Incoming{Message: "m"})
	}
	st := rt.Store().Stats()
	if st.Size != 2 || st.Count != 2 || st.Dropped != 1 {
		t.Fatalf("buffer size not wired from config: %+v", st)
	}
}
